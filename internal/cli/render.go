package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/sqldesk/internal/result"
	"github.com/yolodolo42/sqldesk/internal/session"
)

var renderField string

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a saved payload without contacting the service",
	Long: `Render a saved payload without contacting the service.

The input is any JSON value, read from a file or from standard input. With
--field, the named member of a top-level object is rendered instead, e.g.
--field result for a saved query response.`,
	Example: `  sqldesk render response.json --field result
  echo '[{"id":1,"name":"Ann"}]' | sqldesk render`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := newOutputOptions(cmd.OutOrStdout(), outputFormat)
		if err != nil {
			return err
		}

		var data []byte
		if len(args) == 1 && args[0] != "-" {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}

		raw, err := selectField(data, renderField)
		if err != nil {
			return err
		}

		c := result.Classify(raw)
		out := session.Output{Kind: c.Kind, Block: result.Render(c)}
		return writeOutput(cmd.OutOrStdout(), out, opts)
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderField, "field", "", "render this member of a top-level JSON object")
	rootCmd.AddCommand(renderCmd)
}

// selectField returns data itself, or one member of it when field is set.
// Data that is not JSON is passed through as a string payload.
func selectField(data []byte, field string) (json.RawMessage, error) {
	if field == "" {
		if json.Valid(data) {
			return data, nil
		}
		quoted, err := json.Marshal(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		return quoted, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("--field needs a JSON object: %w", err)
	}
	raw, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("field %q not found in payload", field)
	}
	return raw, nil
}
