package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSection(t *testing.T) {
	for _, sec := range Sections() {
		got, err := ParseSection(" " + string(sec) + " ")
		require.NoError(t, err)
		assert.Equal(t, sec, got)
	}

	got, err := ParseSection("SQL")
	require.NoError(t, err)
	assert.Equal(t, SectionSQL, got)

	_, err = ParseSection("admin")
	assert.Error(t, err)
}

func TestState_Transitions(t *testing.T) {
	s := NewState()
	assert.Equal(t, SectionAsk, s.Section)
	assert.False(t, s.Loading)

	t.Run("begin twice is busy", func(t *testing.T) {
		busy, err := s.Begin()
		require.NoError(t, err)
		assert.True(t, busy.Loading)
		assert.False(t, s.Loading, "receiver must not change")

		again, err := busy.Begin()
		assert.ErrorIs(t, err, ErrBusy)
		assert.Equal(t, busy, again)
	})

	t.Run("finish stores output", func(t *testing.T) {
		busy, _ := s.Begin()
		done := busy.Finish(Output{Section: SectionAsk, Input: "q"})
		assert.False(t, done.Loading)
		require.NotNil(t, done.Output)
		assert.Equal(t, "q", done.Output.Input)

		cleared := done.Clear()
		assert.Nil(t, cleared.Output)
		assert.Equal(t, SectionAsk, cleared.Section)
	})

	t.Run("navigate drops output", func(t *testing.T) {
		done := s.Finish(Output{Section: SectionAsk})
		moved := done.Navigate(SectionTables)
		assert.Equal(t, SectionTables, moved.Section)
		assert.Nil(t, moved.Output)
	})

	t.Run("late output for another section is discarded", func(t *testing.T) {
		busy, _ := s.Begin()
		moved := busy.Navigate(SectionHealth)
		done := moved.Finish(Output{Section: SectionAsk})
		assert.False(t, done.Loading)
		assert.Nil(t, done.Output)
	})
}

func TestSection_TakesInput(t *testing.T) {
	assert.True(t, SectionAsk.TakesInput())
	assert.True(t, SectionSQL.TakesInput())
	assert.True(t, SectionDescribe.TakesInput())
	assert.False(t, SectionTables.TakesInput())
	assert.False(t, SectionHealth.TakesInput())
	assert.Equal(t, "Describe", SectionDescribe.Title())
}
