package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/yolodolo42/sqldesk/internal/client"
	"github.com/yolodolo42/sqldesk/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Runner executes one session request.
type Runner interface {
	Run(ctx context.Context, req session.Request) session.Output
}

// Options tweak the router.
type Options struct {
	// Server is shown in the page footer.
	Server string
	// RequestTimeout bounds each UI request, upstream call included.
	RequestTimeout time.Duration
}

type navItem struct {
	Name   session.Section
	Title  string
	Active bool
}

type outputView struct {
	Title         string
	SQL           string
	Error         string
	Block         template.HTML
	Rows          string
	ExecutionTime string
	Elapsed       string
}

type pageData struct {
	Nav     []navItem
	Section session.Section
	Title   string
	Input   string
	Server  string
	Output  *outputView
}

type handler struct {
	runner Runner
	opts   Options
}

// NewRouter builds the browser UI. Every request renders a fresh page; no
// result is kept between requests.
func NewRouter(runner Runner, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	h := &handler{runner: runner, opts: opts}

	r := chi.NewRouter()
	r.Use(zerologMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ask", http.StatusFound)
	})
	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/ask", h.form(session.SectionAsk))
	r.Post("/ask", h.submit(session.SectionAsk))
	r.Get("/sql", h.form(session.SectionSQL))
	r.Post("/sql", h.submit(session.SectionSQL))
	r.Get("/describe", h.describe)
	r.Get("/tables", h.tables)
	r.Get("/tables/{name}", h.describeTable)
	r.Get("/health", h.health)

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *handler) form(sec session.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, http.StatusOK, h.page(sec, "", nil))
	}
}

func (h *handler) submit(sec session.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.render(w, http.StatusBadRequest, h.page(sec, "", &outputView{Error: "could not read form"}))
			return
		}
		h.run(w, r, session.Request{Section: sec, Input: r.PostFormValue("input")})
	}
}

func (h *handler) describe(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("table"))
	if name == "" {
		h.render(w, http.StatusOK, h.page(session.SectionDescribe, "", nil))
		return
	}
	h.run(w, r, session.Request{Section: session.SectionDescribe, Input: name})
}

func (h *handler) describeTable(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, session.Request{Section: session.SectionDescribe, Input: chi.URLParam(r, "name")})
}

func (h *handler) tables(w http.ResponseWriter, r *http.Request) {
	schema := r.URL.Query().Get("schema") != ""
	h.run(w, r, session.Request{Section: session.SectionTables, Schema: schema})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	detailed := r.URL.Query().Get("detailed") != ""
	h.run(w, r, session.Request{Section: session.SectionHealth, Detailed: detailed})
}

func (h *handler) run(w http.ResponseWriter, r *http.Request, req session.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()
	out := h.runner.Run(ctx, req)

	status := http.StatusOK
	if out.Err != nil {
		status = errorStatus(out.Err)
		upstreamErrorsTotal.WithLabelValues(string(req.Section)).Inc()
		log.Warn().Err(out.Err).Str("section", string(req.Section)).Msg("request failed")
	} else {
		resultsTotal.WithLabelValues(string(req.Section), string(out.Kind)).Inc()
	}

	h.render(w, status, h.page(req.Section, out.Input, newOutputView(out)))
}

func errorStatus(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func newOutputView(out session.Output) *outputView {
	v := &outputView{Title: out.Title, SQL: out.SQL, Elapsed: out.Elapsed.Round(time.Millisecond).String()}
	if out.ExecutionTime != nil {
		v.ExecutionTime = humanize.Ftoa(*out.ExecutionTime) + "s"
	}
	if out.Err != nil {
		v.Error = out.Err.Error()
		return v
	}
	v.Block = out.Block.HTML()
	if n := out.Block.RowCount(); n > 0 {
		v.Rows = humanize.Comma(int64(n))
	}
	return v
}

func (h *handler) page(sec session.Section, input string, out *outputView) pageData {
	nav := make([]navItem, 0, len(session.Sections()))
	for _, s := range session.Sections() {
		nav = append(nav, navItem{Name: s, Title: s.Title(), Active: s == sec})
	}
	return pageData{
		Nav:     nav,
		Section: sec,
		Title:   sec.Title(),
		Input:   input,
		Server:  h.opts.Server,
		Output:  out,
	}
}

func (h *handler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "page.html", data); err != nil {
		log.Error().Err(err).Msg("template render failed")
	}
}

// Serve runs the router on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, onReady func(url string)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	url := ListenURL(listener.Addr())
	log.Info().Str("addr", listener.Addr().String()).Str("url", url).Msg("sqldesk web UI started")
	if onReady != nil {
		onReady(url)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("stopped")
	return nil
}

// ListenURL is the address a browser should use for a bound listener.
// Wildcard hosts are replaced by localhost.
func ListenURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
