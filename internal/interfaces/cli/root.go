// Package cli holds the cobra commands of the tallysync binary.
package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/infrastructure/config"
	"github.com/tallysync/backend/internal/infrastructure/logger"
)

// ErrTransportFailure is returned when a run could not reach Tally. The
// binary exits non-zero on it.
var ErrTransportFailure = errors.New("tally could not be reached")

// Env supplies what the commands load from the outside world
type Env struct {
	LoadConfig func() (*config.Config, error)
	NewLogger  func(cfg *config.Config) (*zap.Logger, error)
}

// DefaultEnv reads config.toml, .env and TALLYSYNC_ variables and logs to stderr
func DefaultEnv() Env {
	return Env{
		LoadConfig: config.Load,
		NewLogger: func(cfg *config.Config) (*zap.Logger, error) {
			return logger.New(&logger.Config{
				Level:  cfg.Log.Level,
				Format: "console",
				Output: "stderr",
			})
		},
	}
}

// NewRootCommand creates the root command with every subcommand registered
func NewRootCommand(env Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "tallysync",
		Short: "Import customers and stock items from Tally",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	root.AddCommand(newSyncCommand(env), newPingCommand(env), newParseCommand(env))
	return root
}

// tallyFlags override the [tally] and [capture] settings for one invocation
type tallyFlags struct {
	company    string
	tallyURL   string
	bridgeURL  string
	captureDir string
}

func (f *tallyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.company, "company", "", "Tally company name")
	cmd.Flags().StringVar(&f.tallyURL, "tally-url", "", "Tally XML server URL")
	cmd.Flags().StringVar(&f.bridgeURL, "bridge-url", "", "fetch through the bridge at this URL")
	cmd.Flags().StringVar(&f.captureDir, "capture-dir", "", "save raw responses into this directory")
}

func (f *tallyFlags) apply(cfg *config.Config) {
	if f.company != "" {
		cfg.Tally.Company = f.company
	}
	if f.tallyURL != "" {
		cfg.Tally.URL = f.tallyURL
	}
	if f.bridgeURL != "" {
		cfg.Tally.BridgeURL = f.bridgeURL
	}
	if f.captureDir != "" {
		cfg.Capture.Backend = config.CaptureFile
		cfg.Capture.Dir = f.captureDir
	}
}

func (e Env) load(flags *tallyFlags) (*config.Config, *zap.Logger, error) {
	cfg, err := e.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if flags != nil {
		flags.apply(cfg)
	}
	log, err := e.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
