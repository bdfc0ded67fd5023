package result

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTupleList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]any
	}{
		{
			name: "single quoted strings",
			in:   "[(1, 'x'), (2, 'y')]",
			want: [][]any{{json.Number("1"), "x"}, {json.Number("2"), "y"}},
		},
		{
			name: "None True False",
			in:   "[(None, True, False)]",
			want: [][]any{{nil, true, false}},
		},
		{
			name: "double quotes carry an apostrophe",
			in:   `[(1, "O'Brien")]`,
			want: [][]any{{json.Number("1"), "O'Brien"}},
		},
		{
			name: "escaped quote inside single quotes",
			in:   `[('it\'s',)]`,
			want: [][]any{{"it's"}},
		},
		{
			name: "decimal and dates",
			in:   "[(Decimal('10.50'), datetime.date(2024, 1, 2), datetime.datetime(2024, 1, 2, 3, 4, 5))]",
			want: [][]any{{json.Number("10.50"), "2024-01-02", "2024-01-02 03:04:05"}},
		},
		{
			name: "datetime with microseconds",
			in:   "[(datetime.datetime(2024, 1, 2, 3, 4, 5, 120),)]",
			want: [][]any{{"2024-01-02 03:04:05.000120"}},
		},
		{
			name: "unknown call keeps its source",
			in:   "[(Money(5, 'USD'),)]",
			want: [][]any{{"Money(5, 'USD')"}},
		},
		{
			name: "keyword arguments keep their source",
			in:   "[(datetime.datetime(2024, 1, 2, tzinfo=None),)]",
			want: [][]any{{"datetime.datetime(2024, 1, 2, tzinfo=None)"}},
		},
		{
			name: "negative and float numbers",
			in:   "[(-3, 2.5, 1e3, .5)]",
			want: [][]any{{json.Number("-3"), json.Number("2.5"), json.Number("1e3"), json.Number("0.5")}},
		},
		{
			name: "non-finite floats",
			in:   "[(1, nan), (2, inf), (3, -inf), (4, +inf)]",
			want: [][]any{
				{json.Number("1"), "nan"},
				{json.Number("2"), "inf"},
				{json.Number("3"), "-inf"},
				{json.Number("4"), "inf"},
			},
		},
		{
			name: "nested tuples and lists",
			in:   "[(1, (2, 3), ['a'])]",
			want: [][]any{{json.Number("1"), []any{json.Number("2"), json.Number("3")}, []any{"a"}}},
		},
		{
			name: "unicode text",
			in:   "[('مرحبا', 'naïve')]",
			want: [][]any{{"مرحبا", "naïve"}},
		},
		{
			name: "prefixed strings",
			in:   `[(u'a', b'b', r'c\d')]`,
			want: [][]any{{"a", "b", `c\d`}},
		},
		{
			name: "rows as lists and trailing comma",
			in:   "[[1, 2], [3, 4],]",
			want: [][]any{{json.Number("1"), json.Number("2")}, {json.Number("3"), json.Number("4")}},
		},
		{
			name: "whitespace and newlines",
			in:   "\n[\n  (1, 'a'),\n  (2, 'b')\n]\n",
			want: [][]any{{json.Number("1"), "a"}, {json.Number("2"), "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTupleList(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTupleList_Failures(t *testing.T) {
	inputs := []string{
		"",
		"(1, 2)",
		"[]",
		"[1, 2]",
		"[(1, 2)",
		"[(1, 2)] trailing",
		"[(1 2)]",
		"[('open)]",
		"[(undefined,)]",
		"[(1, 'x'), 'y']",
		"[(-,)]",
		"[(-info,)]",
		"[(f'x',)]",
		strings.Repeat("[", 100) + strings.Repeat("]", 100),
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			rows, err := ParseTupleList(in)
			require.Error(t, err)
			assert.Nil(t, rows)

			var syn *SyntaxError
			assert.True(t, errors.As(err, &syn))
		})
	}
}

func TestLooksLikeTupleList(t *testing.T) {
	assert.True(t, looksLikeTupleList("[(1,)]"))
	assert.False(t, looksLikeTupleList("[1, 2]"))
	assert.False(t, looksLikeTupleList("(1, 2)"))
	assert.False(t, looksLikeTupleList("Operation completed."))
}
