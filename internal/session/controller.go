package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yolodolo42/sqldesk/internal/client"
	"github.com/yolodolo42/sqldesk/internal/history"
	"github.com/yolodolo42/sqldesk/internal/logging"
	"github.com/yolodolo42/sqldesk/internal/result"
)

// API is the subset of the service client the controller needs.
type API interface {
	Ask(ctx context.Context, command string, includeSQL bool) (*client.QueryResponse, error)
	ExecuteSQL(ctx context.Context, sql string) (*client.QueryResponse, error)
	Tables(ctx context.Context) (*client.TableInfo, error)
	TableNames(ctx context.Context) (*client.TableNames, error)
	DescribeTable(ctx context.Context, name string) (*client.TableSchema, error)
	Health(ctx context.Context) (*client.HealthStatus, error)
	QuickHealth(ctx context.Context) (*client.HealthStatus, error)
}

// Recorder stores ask and sql submissions. Password literals are masked
// before they reach it.
type Recorder interface {
	Add(e history.Entry) (history.Entry, error)
}

// Request is one user action.
type Request struct {
	Section  Section
	Input    string
	Detailed bool
	// Schema asks the tables section for the service's schema overview
	// instead of the plain name list.
	Schema bool
}

// Output is what a finished request hands back to the presentation layer.
// Exactly one of Err or Block is meaningful.
type Output struct {
	Section       Section
	Title         string
	Input         string
	SQL           string
	Block         result.Block
	Kind          result.Kind
	Err           error
	ExecutionTime *float64
	Elapsed       time.Duration
}

// Failed reports whether the request produced an error instead of a result.
func (o Output) Failed() bool {
	return o.Err != nil
}

// Controller runs requests against the service and pushes their payloads
// through classify and render.
type Controller struct {
	api      API
	recorder Recorder
	now      func() time.Time
}

// NewController builds a controller. recorder may be nil.
func NewController(api API, recorder Recorder) *Controller {
	return &Controller{api: api, recorder: recorder, now: time.Now}
}

// Run performs one request. It never returns an error: failures end up in
// Output.Err.
func (c *Controller) Run(ctx context.Context, req Request) Output {
	start := c.now()
	input := strings.TrimSpace(req.Input)
	out := Output{Section: req.Section, Title: req.Section.Title(), Input: input}

	switch {
	case req.Section.TakesInput() && input == "":
		out.Err = ErrEmptyInput
		return out
	case c.api == nil:
		out.Err = errors.New("service client not configured")
		return out
	}

	switch req.Section {
	case SectionAsk:
		c.runQuery(&out, func() (*client.QueryResponse, error) {
			return c.api.Ask(ctx, input, true)
		})
	case SectionSQL:
		out.SQL = input
		c.runQuery(&out, func() (*client.QueryResponse, error) {
			return c.api.ExecuteSQL(ctx, input)
		})
	case SectionTables:
		if req.Schema {
			c.runSchema(ctx, &out)
		} else {
			c.runTables(ctx, &out)
		}
	case SectionDescribe:
		c.runDescribe(ctx, &out, input)
	case SectionHealth:
		c.runHealth(ctx, &out, req.Detailed)
	default:
		out.Err = fmt.Errorf("unknown section %q", req.Section)
	}

	out.Elapsed = c.now().Sub(start)
	c.record(out)

	ev := log.Info()
	if out.Err != nil {
		ev = log.Warn().Err(out.Err)
	}
	ev.Str("section", string(out.Section)).
		Str("kind", string(out.Kind)).
		Dur("elapsed", out.Elapsed).
		Msg("request finished")

	return out
}

func (c *Controller) runQuery(out *Output, call func() (*client.QueryResponse, error)) {
	resp, err := call()
	if err != nil {
		out.Err = err
		return
	}
	if resp.SQLQuery != "" {
		out.SQL = resp.SQLQuery
	}
	out.ExecutionTime = resp.ExecutionTime
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "query failed"
		}
		out.Err = errors.New(msg)
		return
	}
	present(out, resp.Result)
}

type tableRow struct {
	N     int    `json:"#"`
	Table string `json:"table"`
}

func (c *Controller) runTables(ctx context.Context, out *Output) {
	names, err := c.api.TableNames(ctx)
	if err != nil {
		out.Err = err
		return
	}
	rows := make([]tableRow, len(names.TableNames))
	for i, name := range names.TableNames {
		rows[i] = tableRow{N: i + 1, Table: name}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		out.Err = fmt.Errorf("failed to encode table list: %w", err)
		return
	}
	present(out, raw)
}

func (c *Controller) runSchema(ctx context.Context, out *Output) {
	info, err := c.api.Tables(ctx)
	if err != nil {
		out.Err = err
		return
	}
	out.Title = fmt.Sprintf("Schema (%d tables)", len(info.TableNames))
	raw, err := json.Marshal(info.SchemaInfo)
	if err != nil {
		out.Err = fmt.Errorf("failed to encode schema overview: %w", err)
		return
	}
	present(out, raw)
}

func (c *Controller) runDescribe(ctx context.Context, out *Output, table string) {
	schema, err := c.api.DescribeTable(ctx, table)
	if err != nil {
		out.Err = err
		return
	}
	name := schema.TableName
	if name == "" {
		name = table
	}
	out.Title = "Table: " + name
	present(out, schema.Schema)
}

func (c *Controller) runHealth(ctx context.Context, out *Output, detailed bool) {
	check := c.api.QuickHealth
	if detailed {
		check = c.api.Health
	}
	h, err := check(ctx)
	if err != nil {
		out.Err = err
		return
	}
	raw, err := json.Marshal([]*client.HealthStatus{h})
	if err != nil {
		out.Err = fmt.Errorf("failed to encode health status: %w", err)
		return
	}
	present(out, raw)
}

func present(out *Output, raw json.RawMessage) {
	c := result.Classify(raw)
	out.Kind = c.Kind
	out.Block = result.Render(c)
}

func (c *Controller) record(out Output) {
	if c.recorder == nil {
		return
	}
	if out.Section != SectionAsk && out.Section != SectionSQL {
		return
	}

	e := history.Entry{
		Section:       string(out.Section),
		Input:         logging.RedactSQL(out.Input),
		SQLQuery:      logging.RedactSQL(out.SQL),
		Success:       out.Err == nil,
		ExecutionTime: out.ExecutionTime,
		ResultKind:    string(out.Kind),
		CreatedAt:     c.now(),
	}
	if out.Err != nil {
		e.Error = out.Err.Error()
	}
	if _, err := c.recorder.Add(e); err != nil {
		log.Error().Err(err).Str("section", e.Section).Msg("failed to record history")
	}
}
