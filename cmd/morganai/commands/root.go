package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/morganstate-cs/morganai/pkg/cli"
)

var (
	verbose     bool
	contextName string
	configPath  string

	globalConfig  *cli.Config
	configLoadErr error
)

var rootCmd = &cobra.Command{
	Use:   "morganai",
	Short: "Morgan State CS department AI assistant",
	Long: `morganai - the Morgan State University Computer Science Department
AI assistant, as a server and a client.

Run the whole stack locally:

  morganai config set local --openai-key sk-... --secret some-secret
  morganai serve

Talk to a running server:

  morganai login -u student
  morganai chat "when does registration open?"

Contexts are stored in ~/.morganai/config.yaml and work like kubectl
contexts: each names a server plus its credentials.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "config context to use")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.morganai/config.yaml)")
}

func initConfig() {
	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// getConfig returns the loaded CLI configuration.
func getConfig() (*cli.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// currentContext resolves the context picked by the --context flag, or
// the configured current one.
func currentContext() (*cli.Context, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	return cfg.ResolveContext(contextName)
}

// newLogger builds the process logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
