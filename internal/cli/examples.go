package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/yolodolo42/sqldesk/internal/client"
)

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Show example questions the service handles well",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		ex, err := a.client.Examples(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if opts.format == formatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(ex)
		}

		md := examplesMarkdown(ex)
		if !opts.color {
			fmt.Fprint(w, md)
			return nil
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(opts.width),
		)
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		out, err := r.Render(md)
		if err != nil {
			return fmt.Errorf("failed to render examples: %w", err)
		}
		fmt.Fprint(w, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(examplesCmd)
}

// examplesMarkdown lays the catalogue out as markdown.
func examplesMarkdown(ex *client.Examples) string {
	var b strings.Builder
	b.WriteString("# Example questions\n\n")
	for _, cat := range ex.Examples {
		b.WriteString("## " + cat.Category + "\n\n")
		for _, q := range cat.Queries {
			b.WriteString("- " + q + "\n")
		}
		b.WriteString("\n")
	}
	if len(ex.Tips) > 0 {
		b.WriteString("## Tips\n\n")
		for _, t := range ex.Tips {
			b.WriteString("- " + t + "\n")
		}
		b.WriteString("\n")
	}
	if len(ex.Workflow) > 0 {
		b.WriteString("## Workflow\n\n")
		for _, step := range ex.Workflow {
			b.WriteString(step + "\n\n")
		}
	}
	if ex.Note != "" {
		b.WriteString("> " + ex.Note + "\n")
	}
	return b.String()
}
