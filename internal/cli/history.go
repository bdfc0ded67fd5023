package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/sqldesk/internal/config"
	"github.com/yolodolo42/sqldesk/internal/history"
	"github.com/yolodolo42/sqldesk/internal/ui"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent questions and SQL statements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		w := cmd.OutOrStdout()
		if historyClear {
			n, err := a.history.Clear()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Removed %d history entries.\n", n)
			return nil
		}

		entries, err := a.history.Recent(a.cfg.HistoryLimit)
		if err != nil {
			return err
		}
		if outputFormat == formatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		writeHistory(w, entries)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", config.DefaultHistoryLimit, "number of entries to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all history entries")
	_ = viper.BindPFlag(config.KeyHistoryLimit, historyCmd.Flags().Lookup("limit"))
	rootCmd.AddCommand(historyCmd)
}

// writeHistory prints entries newest first, one per line.
func writeHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, ui.NoticeStyle.Render("No history yet."))
		return
	}
	for _, e := range entries {
		mark := ui.SuccessStyle.Render(ui.SymbolCheck)
		if !e.Success {
			mark = ui.ErrorStyle.Render(ui.SymbolCross)
		}
		when := humanize.Time(e.CreatedAt)
		fmt.Fprintf(w, "%s %-4s %s %s\n", mark, e.Section, truncate(oneLine(e.Input), 80), ui.MetaStyle.Render(ui.SymbolDot+" "+when))
		if e.Error != "" {
			fmt.Fprintf(w, "       %s\n", ui.ErrorStyle.Render(truncate(oneLine(e.Error), 100)))
		}
	}
}
