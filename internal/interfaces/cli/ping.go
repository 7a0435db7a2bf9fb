package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/bootstrap"
	"github.com/tallysync/backend/internal/infrastructure/tally"
)

func newPingCommand(env Env) *cobra.Command {
	var flags tallyFlags

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that Tally answers for the company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := env.load(&flags)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			result, err := bootstrap.NewTallyClient(&cfg.Tally, log).Ping(cmd.Context())
			if err != nil {
				te := tally.ClassifyError(err)
				fmt.Fprintf(cmd.OutOrStdout(), "Tally at %s is not reachable: %s (%s)\n", target(cfg.Tally.URL, cfg.Tally.BridgeURL), te.Cause, te.Code())
				if hint := te.Hint(cfg.Tally.Company); hint != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  hint: %s\n", hint)
				}
				log.Debug("Ping failed", zap.Error(err))
				return errors.Join(ErrTransportFailure, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tally connection successful: status=%d dataLength=%d company=%q\n",
				result.Status, result.DataLength, cfg.Tally.Company)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func target(url, bridgeURL string) string {
	if bridgeURL != "" {
		return bridgeURL
	}
	return url
}
