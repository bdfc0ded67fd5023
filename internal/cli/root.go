package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/yolodolo42/sqldesk/internal/config"
)

var (
	cfgFile      string
	outputFormat string
	rootCmd      = &cobra.Command{
		Use:   "sqldesk",
		Short: "Terminal and browser client for a text-to-SQL service",
		Long: `sqldesk talks to a text-to-SQL query service.

Ask questions in plain language, run SQL, list tables, inspect a table's
schema and check service health. Results of any shape are rendered as
tables or text, in the terminal or in a locally served web UI.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractive() {
				return cmd.Help()
			}
			return RunREPL()
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sqldesk/config.yaml)")
	flags.StringVarP(&outputFormat, "format", "f", formatTable, "output format: table, html or json")
	flags.String("server", config.DefaultServer, "query service base URL")
	flags.String("token", "", "bearer token sent to the query service")
	flags.Duration("timeout", config.DefaultTimeout, "per-request timeout")
	flags.String("data-dir", "", "directory for history and logs (default is $HOME/.sqldesk)")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")

	_ = viper.BindPFlag(config.KeyServer, flags.Lookup("server"))
	_ = viper.BindPFlag(config.KeyToken, flags.Lookup("token"))
	_ = viper.BindPFlag(config.KeyTimeout, flags.Lookup("timeout"))
	_ = viper.BindPFlag(config.KeyDataDir, flags.Lookup("data-dir"))
	_ = viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := config.DefaultDataDir()
		cobra.CheckErr(err)

		if err := os.MkdirAll(configDir, 0700); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config directory: %v\n", err)
		}

		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Silently ignore missing config file - it's optional
	_ = viper.ReadInConfig()
}

// isInteractive returns true if running in a terminal
func isInteractive() bool {
	return isTerminalFile(os.Stdin)
}

func isTerminalFile(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// configPath reports which config file was loaded, for diagnostics.
func configPath() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	dir, err := config.DefaultDataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// requestTimeout bounds a one-shot command.
func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return config.DefaultTimeout
}
