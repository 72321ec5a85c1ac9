package commands

import (
	"strings"

	"github.com/MEKXH/toolgate/internal/config"
	"github.com/spf13/cobra"
)

var (
	logLevelOverride string
	configPath       string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toolgate",
		Short: "Toolgate - human approval gate for agent tools",
		Long:  `Toolgate pauses selected tool calls until a human approves them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return configureLogger(config.DefaultConfig(), logLevelOverride)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return configureLogger(cfg, logLevelOverride)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&logLevelOverride, "log-level", "", "Override log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.toolgate/config.json)")

	cmd.AddCommand(
		NewRunCmd(),
		NewPolicyCmd(),
		NewSanitizeCmd(),
		NewVersionCmd(),
	)

	return cmd
}

func loadConfig() (*config.Config, error) {
	if path := strings.TrimSpace(configPath); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
