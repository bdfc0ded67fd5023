package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/sqldesk/internal/config"
	"github.com/yolodolo42/sqldesk/internal/web"
)

var serveOpen bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser UI",
	Long: `Serve the browser UI.

The UI offers the same sections as the terminal client. Prometheus metrics
are exposed at /metrics and a liveness probe at /healthz.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{consoleLog: true})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		router := web.NewRouter(a.ctrl, web.Options{
			Server:         a.cfg.Server,
			RequestTimeout: a.cfg.Timeout,
		})

		log.Info().
			Str("server", a.cfg.Server).
			Str("data_dir", a.cfg.DataDir).
			Msg("connecting to query service")
		return web.Serve(ctx, a.cfg.Listen, router, func(url string) {
			if !serveOpen {
				return
			}
			if err := browser.OpenURL(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("could not open browser")
			}
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", config.DefaultListen, "listen address")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the UI in the default browser once listening")
	_ = viper.BindPFlag(config.KeyListen, serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
