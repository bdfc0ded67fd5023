package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/sqldesk/internal/session"
	"github.com/yolodolo42/sqldesk/internal/ui"
)

var sqlFile string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Turn a natural-language question into SQL",
	Example: `  sqldesk ask "show employees with salary greater than 5000"
  sqldesk ask list unpaid invoices --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSection(cmd, session.Request{Section: session.SectionAsk, Input: strings.Join(args, " ")})
	},
}

var sqlCmd = &cobra.Command{
	Use:   "sql [statement]",
	Short: "Execute SQL on the service's database",
	Long: `Execute SQL on the service's database.

The statement is taken from the arguments, from --file, or from standard
input when neither is given.`,
	Example: `  sqldesk sql "SELECT TOP 5 * FROM users"
  sqldesk sql --file report.sql
  cat report.sql | sqldesk sql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stmt, err := readStatement(cmd.InOrStdin(), args, sqlFile)
		if err != nil {
			return err
		}
		return runSection(cmd, session.Request{Section: session.SectionSQL, Input: stmt})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <statement>",
	Short: "Ask the service for an advisory syntax check of SQL",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{noHistory: true})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.context()
		defer cancel()

		v, err := a.client.Validate(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if v.Valid {
			fmt.Fprintln(w, ui.SuccessStyle.Render(ui.SymbolCheck+" "+nonEmpty(v.Message, "valid")))
		} else {
			fmt.Fprintln(w, ui.ErrorStyle.Render(ui.SymbolCross+" "+nonEmpty(v.Error, "invalid")))
		}
		for _, s := range v.Suggestions {
			fmt.Fprintln(w, ui.MetaStyle.Render("  "+ui.SymbolArrow+" "+s))
		}
		if !v.Valid {
			return fmt.Errorf("query did not pass validation")
		}
		return nil
	},
}

var variationsCmd = &cobra.Command{
	Use:   "variations <question>",
	Short: "Generate alternative SQL for the same question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{noHistory: true})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.context()
		defer cancel()

		vars, err := a.client.Variations(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		_, color := terminalInfo(w)
		for i, v := range vars.Variations {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, ui.SectionStyle.Render(fmt.Sprintf("#%d %s", v.Variation, v.PromptHint)))
			fmt.Fprintln(w, highlightSQL(v.SQL(), color))
		}
		if vars.Note != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, ui.MetaStyle.Render(vars.Note))
		}
		return nil
	},
}

func init() {
	sqlCmd.Flags().StringVar(&sqlFile, "file", "", "read the statement from a file")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(variationsCmd)
}

// runSection runs one request through the controller and prints it.
func runSection(cmd *cobra.Command, req session.Request) error {
	opts, err := newOutputOptions(cmd.OutOrStdout(), outputFormat)
	if err != nil {
		return err
	}

	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.context()
	defer cancel()

	out := a.ctrl.Run(ctx, req)
	return writeOutput(cmd.OutOrStdout(), out, opts)
}

// readStatement picks the SQL from args, a file or stdin, in that order.
func readStatement(stdin io.Reader, args []string, file string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}
	if f, ok := stdin.(*os.File); ok && isTerminalFile(f) {
		return "", fmt.Errorf("no statement given: pass it as an argument, with --file, or on stdin")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
