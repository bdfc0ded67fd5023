package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/yolodolo42/sqldesk/internal/client"
	"github.com/yolodolo42/sqldesk/internal/config"
	"github.com/yolodolo42/sqldesk/internal/history"
	"github.com/yolodolo42/sqldesk/internal/logging"
	"github.com/yolodolo42/sqldesk/internal/session"
)

// app holds what a command needs: config, the service client, the history
// store and a controller wired to both.
type app struct {
	cfg     *config.Config
	client  *client.Client
	history *history.Store
	ctrl    *session.Controller
	closers []io.Closer
}

type appOptions struct {
	// consoleLog sends logs to stderr instead of the log file.
	consoleLog bool
	// noHistory skips opening the history database.
	noHistory bool
}

func newApp(opts appOptions) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if opts.consoleLog {
		logging.SetupConsole(cfg.LogLevel)
	} else {
		closer, err := logging.SetupFile(cfg.DataDir, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer)
	}
	log.Debug().Str("config", configPath()).Str("server", cfg.Server).Msg("configuration loaded")

	a.client, err = client.New(cfg.Server, client.WithToken(cfg.Token), client.WithTimeout(cfg.Timeout))
	if err != nil {
		a.Close()
		return nil, err
	}

	var recorder session.Recorder
	if !opts.noHistory {
		store, err := history.Open(cfg.DataDir)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		a.history = store
		a.closers = append(a.closers, store)
		recorder = store
	}

	a.ctrl = session.NewController(a.client, recorder)
	return a, nil
}

// Close releases the history store and log file, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}

func (a *app) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout(a.cfg))
}
