package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	syncapp "github.com/tallysync/backend/internal/application/sync"
	"github.com/tallysync/backend/internal/infrastructure/tally"
)

func newParseCommand(env Env) *cobra.Command {
	var (
		kind   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Decode a saved export file without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := tally.ParseKind(kind)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading export: %w", err)
			}

			_, log, err := env.load(nil)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			preview := syncapp.DecodeExport(syncapp.DefaultDecoderChain(), raw, k, log)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(preview)
			}

			fmt.Fprintf(out, "%s: found=%d decoder=%s\n", preview.Kind, preview.Found, preview.Decoder)
			for _, c := range preview.Customers {
				fmt.Fprintf(out, "  %s\t%s\n", c.NaturalKey(), c.CustomerName)
			}
			for _, i := range preview.Items {
				fmt.Fprintf(out, "  %s\t%s\n", i.NaturalKey(), i.StockItemName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(tally.KindCustomers), "export kind: customers or items")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed records as JSON")
	return cmd
}
