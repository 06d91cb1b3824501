package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arborlabs/keytree/internal/observability"
	"github.com/arborlabs/keytree/pkg/store"
)

var statCmd = &cobra.Command{
	Use:   "stat <key>",
	Short: "Show object metadata",
	Long: `Print the metadata of a single object: size, ETag, and modification
time.

Examples:
  keytree stat data/2024/report.json --base-dir /srv/store
  keytree stat data/2024/report.json --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

var statOutput string

func init() {
	rootCmd.AddCommand(statCmd)
	registerStoreFlags(statCmd)
	statCmd.Flags().StringVarP(&statOutput, "output", "o", "text", "Output format (text|json)")
}

func runStat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := args[0]

	st, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	info, err := st.Stat(ctx, key)
	if err != nil {
		observability.CLILogger.Error("Failed to stat object", zap.String("key", key), zap.Error(err))
		if store.IsNotFound(err) {
			return exitError(foundry.ExitFileNotFound, "Object not found", err)
		}
		return exitError(foundry.ExitFileReadError, "Failed to stat object", err)
	}

	switch statOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to encode metadata", err)
		}
	case "text", "":
		fmt.Printf("Key:           %s\n", info.Key)
		fmt.Printf("Size:          %d\n", info.Size)
		if info.ETag != "" {
			fmt.Printf("ETag:          %s\n", info.ETag)
		}
		fmt.Printf("Last-Modified: %s\n", info.LastModified.Format(time.RFC3339))
	default:
		return exitError(foundry.ExitInvalidArgument, "Invalid --output value",
			fmt.Errorf("expected text or json, got %q", statOutput))
	}
	return nil
}
