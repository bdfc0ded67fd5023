package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/sqldesk/internal/result"
	"github.com/yolodolo42/sqldesk/internal/session"
	"github.com/yolodolo42/sqldesk/internal/ui"
)

var (
	healthDetailed bool
	healthServices bool
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the query service and its database are reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if healthServices {
			return runServices(cmd)
		}
		return runSection(cmd, session.Request{Section: session.SectionHealth, Detailed: healthDetailed})
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthDetailed, "detailed", false, "run the full check, including the table count")
	healthCmd.Flags().BoolVar(&healthServices, "services", false, "show the service's internal component status")
	rootCmd.AddCommand(healthCmd)
}

// runServices prints the component status document. Its shape is not
// fixed, so it goes through the same classify and render pipeline.
func runServices(cmd *cobra.Command) error {
	opts, err := newOutputOptions(cmd.OutOrStdout(), outputFormat)
	if err != nil {
		return err
	}

	a, err := newApp(appOptions{noHistory: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.context()
	defer cancel()

	st, err := a.client.Services(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	status := ui.SuccessStyle.Render(ui.SymbolCheck + " " + st.Status)
	if st.Status != "healthy" {
		status = ui.ErrorStyle.Render(ui.SymbolCross + " " + nonEmpty(st.Status, "unknown"))
	}
	fmt.Fprintln(w, status)
	if st.Error != "" {
		fmt.Fprintln(w, ui.ErrorStyle.Render(st.Error))
	}

	blk := result.Present(st.Services)
	if opts.format == formatHTML {
		fmt.Fprintln(w, string(blk.HTML()))
		return nil
	}
	fmt.Fprintln(w, renderBlock(opts.width, blk))
	return nil
}
