// Package main implements the recommit CLI: a commit-msg hook that rewrites
// commit messages through a local completion endpoint.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recommit/internal/config"
	"github.com/fyrsmithlabs/recommit/internal/logging"
)

var (
	// configPath overrides the user-level config file location
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recommit",
	Short: "Rewrite commit messages with a local language model",
	Long: `recommit is a commit-msg hook that rewrites raw commit messages into your
project's message format using a local text-completion endpoint.

When the project carries a message-format checker configuration (commitlint,
gitlint, or commitizen), each candidate is validated and regenerated with the
checker's findings until it conforms or the retry budget runs out.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "user config file (default ~/.config/recommit/config.yaml)")
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(doctorCmd)
}

// loadConfig merges the configuration layers for the repository at repoRoot.
// repoRoot may be empty outside a repository; the repo file layer is simply
// absent then. An empty --config falls back to the default user path inside
// Load.
func loadConfig(repoRoot string) (*config.Config, error) {
	return config.Load(configPath, repoRoot)
}

// newLogger builds the stderr logger from config.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(&cfg.Logging)
}
