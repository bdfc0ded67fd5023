package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/sqldesk/internal/session"
	"github.com/yolodolo42/sqldesk/internal/ui"
)

var tablesSchema bool

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables in the service's database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSection(cmd, session.Request{Section: session.SectionTables, Schema: tablesSchema})
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe [table]",
	Short: "Show the schema of a table",
	Long: `Show the schema of a table.

Without an argument, and when running in a terminal, a picker lists the
available tables.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := ""
		if len(args) == 1 {
			table = args[0]
		} else {
			picked, err := pickTable()
			if err != nil {
				return err
			}
			if picked == "" {
				return nil
			}
			table = picked
		}
		return runSection(cmd, session.Request{Section: session.SectionDescribe, Input: table})
	},
}

func init() {
	tablesCmd.Flags().BoolVar(&tablesSchema, "schema", false, "show the service's schema overview for every table")
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(describeCmd)
}

// pickTable fetches table names and lets the user choose one. An empty
// name means the user cancelled.
func pickTable() (string, error) {
	if !isInteractive() {
		return "", fmt.Errorf("table name required (no terminal for interactive selection)")
	}

	a, err := newApp(appOptions{noHistory: true})
	if err != nil {
		return "", err
	}
	defer a.Close()

	ctx, cancel := a.context()
	defer cancel()

	names, err := a.client.TableNames(ctx)
	if err != nil {
		return "", err
	}
	if len(names.TableNames) == 0 {
		return "", fmt.Errorf("the service reports no tables")
	}

	items := make([]ui.SelectorItem, len(names.TableNames))
	for i, n := range names.TableNames {
		items[i] = ui.SelectorItem{ID: n}
	}
	return ui.RunSelector(fmt.Sprintf("Tables (%d)", len(items)), items)
}
