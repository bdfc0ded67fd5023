package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("localhost")
	assert.Error(t, err)

	_, err = New("http://")
	assert.Error(t, err)
}

func TestAsk(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/query/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "list users", body["command"])
		assert.Equal(t, true, body["include_sql"])

		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"command":        "list users",
			"sql_query":      "SELECT * FROM users",
			"result":         "SELECT * FROM users",
			"execution_time": 0.42,
		})
	})

	resp, err := c.Ask(context.Background(), "list users", true)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "SELECT * FROM users", resp.SQLQuery)
	assert.JSONEq(t, `"SELECT * FROM users"`, string(resp.Result))
	require.NotNil(t, resp.ExecutionTime)
	assert.InDelta(t, 0.42, *resp.ExecutionTime, 1e-9)
}

func TestExecuteSQL_KeepsRawResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query/sql", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SELECT 1", body["sql_query"])

		_, _ = w.Write([]byte(`{"success":true,"result":[{"b":1,"a":2}],"execution_time":null}`))
	})

	resp, err := c.ExecuteSQL(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, `[{"b":1,"a":2}]`, string(resp.Result))
	assert.Nil(t, resp.ExecutionTime)
}

func TestExecuteSQL_FailurePayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Invalid column name 'x'"})
	})

	resp, err := c.ExecuteSQL(context.Background(), "SELECT x")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid column name 'x'", resp.Error)
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"string detail", 400, `{"detail":"SQL query cannot be empty"}`, "SQL query cannot be empty"},
		{"validation list", 422, `{"detail":[{"loc":["body","command"],"msg":"field required"}]}`, "body.command: field required"},
		{"plain body", 502, "bad gateway", "bad gateway"},
		{"empty body", 500, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.ExecuteSQL(context.Background(), "SELECT 1")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.detail, apiErr.Detail)
		})
	}
}

func TestBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "database_connected": true})
	}, WithToken("s3cret"))

	h, err := c.QuickHealth(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Healthy())
	assert.Nil(t, h.TablesCount)
}

func TestNoTokenNoHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"status": "unhealthy", "database_connected": false, "tables_count": 0, "error": "timeout"})
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, h.Healthy())
	require.NotNil(t, h.TablesCount)
	assert.Equal(t, 0, *h.TablesCount)
	assert.Equal(t, "timeout", h.Error)
}

func TestDatabaseEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/database/tables":
			writeJSON(w, http.StatusOK, map[string]any{"table_names": []string{"users", "orders"}, "schema_info": "Table: users"})
		case "/database/tables/names":
			writeJSON(w, http.StatusOK, map[string]any{"table_names": []string{"users"}, "count": 1})
		case "/database/tables/order items":
			writeJSON(w, http.StatusOK, map[string]any{"table_name": "order items", "schema": []map[string]string{{"COLUMN_NAME": "id"}}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	info, err := c.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "orders"}, info.TableNames)

	names, err := c.TableNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, names.Count)

	schema, err := c.DescribeTable(ctx, "order items")
	require.NoError(t, err)
	assert.Equal(t, "order items", schema.TableName)
	assert.JSONEq(t, `[{"COLUMN_NAME":"id"}]`, string(schema.Schema))

	_, err = c.DescribeTable(ctx, "  ")
	assert.Error(t, err)
}

func TestValidateEscapesPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query/validate/SELECT * FROM a/b", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"valid": true, "message": "ok", "suggestions": []string{"Execute the query"}})
	})

	v, err := c.Validate(context.Background(), "SELECT * FROM a/b")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, []string{"Execute the query"}, v.Suggestions)
}

func TestVariationsAndExamples(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/query/generate-variations":
			_, _ = w.Write([]byte(`{"original_query":"q","total_variations":2,"variations":[
				{"variation":1,"sql_query":"SELECT 1","prompt_hint":"Basic query"},
				{"variation":2,"sql_query":{"text":"SELECT 2"}}]}`))
		case "/query/examples":
			_, _ = w.Write([]byte(`{"examples":[{"category":"Employees","queries":["a","b"]}],"tips":["t"],"note":"n"}`))
		}
	})
	ctx := context.Background()

	vars, err := c.Variations(ctx, "q")
	require.NoError(t, err)
	require.Len(t, vars.Variations, 2)
	assert.Equal(t, "SELECT 1", vars.Variations[0].SQL())
	assert.Equal(t, `{"text":"SELECT 2"}`, vars.Variations[1].SQL())

	ex, err := c.Examples(ctx)
	require.NoError(t, err)
	require.Len(t, ex.Examples, 1)
	assert.Equal(t, []string{"a", "b"}, ex.Examples[0].Queries)
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, WithTimeout(5*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Health(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestTimeoutOption(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		c, err := New("http://svc.local")
		require.NoError(t, err)
		assert.Equal(t, defaultTimeout, c.http.Timeout)
	})

	for _, tc := range []struct {
		name string
		opts func(hc *http.Client) []Option
	}{
		{"timeout first", func(hc *http.Client) []Option { return []Option{WithTimeout(3 * time.Second), WithHTTPClient(hc)} }},
		{"http client first", func(hc *http.Client) []Option { return []Option{WithHTTPClient(hc), WithTimeout(3 * time.Second)} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			hc := &http.Client{Timeout: time.Minute}
			c, err := New("http://svc.local", tc.opts(hc)...)
			require.NoError(t, err)

			assert.Equal(t, 3*time.Second, c.http.Timeout)
			assert.Equal(t, time.Minute, hc.Timeout, "caller's client must not change")
		})
	}

	t.Run("http client without timeout keeps its own", func(t *testing.T) {
		hc := &http.Client{Timeout: 7 * time.Second}
		c, err := New("http://svc.local", WithHTTPClient(hc))
		require.NoError(t, err)
		assert.Same(t, hc, c.http)
	})
}
