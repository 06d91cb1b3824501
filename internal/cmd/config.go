package cmd

import (
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration after merging defaults, config
file, environment variables, and flags.

Examples:
  keytree config show
  KEYTREE_SERVER_PORT=9090 keytree config show`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	registerStoreFlags(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadStoreConfig(cmd.Context())
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}

	// Never print credentials.
	cfg.Store.S3.AccessKeyID = redact(cfg.Store.S3.AccessKeyID)
	cfg.Store.S3.SecretAccessKey = redact(cfg.Store.S3.SecretAccessKey)

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to render configuration", err)
	}
	fmt.Fprint(os.Stdout, string(out))
	return nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "REDACTED"
}
