package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arborlabs/keytree/internal/observability"
	"github.com/arborlabs/keytree/pkg/store"
)

var rmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Delete an object or subtree",
	Long: `Delete a single object, or with --recursive an entire directory
subtree.

Examples:
  keytree rm data/2024/report.json --base-dir /srv/store
  keytree rm data/2024 --recursive`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

var rmRecursive bool

func init() {
	rootCmd.AddCommand(rmCmd)
	registerStoreFlags(rmCmd)
	rmCmd.Flags().BoolVarP(&rmRecursive, "recursive", "r", false, "Delete the whole subtree under the key")
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := args[0]

	st, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if rmRecursive {
		deleter, ok := st.(store.TreeDeleter)
		if !ok {
			return exitError(foundry.ExitInvalidArgument, "Backend does not support recursive delete",
				fmt.Errorf("backend %s has no tree deleter", backendType(st)))
		}
		if err := deleter.DeleteTree(ctx, key); err != nil {
			observability.CLILogger.Error("Failed to delete subtree", zap.String("key", key), zap.Error(err))
			return exitError(foundry.ExitFileWriteError, "Failed to delete subtree", err)
		}
		observability.CLILogger.Info("Deleted subtree", zap.String("key", key))
		return nil
	}

	deleter, ok := st.(store.ObjectDeleter)
	if !ok {
		return exitError(foundry.ExitInvalidArgument, "Backend does not support deletes",
			fmt.Errorf("backend %s has no object deleter", backendType(st)))
	}
	if err := deleter.DeleteObject(ctx, key); err != nil {
		observability.CLILogger.Error("Failed to delete object", zap.String("key", key), zap.Error(err))
		if store.IsNotFound(err) {
			return exitError(foundry.ExitFileNotFound, "Object not found", err)
		}
		return exitError(foundry.ExitFileWriteError, "Failed to delete object", err)
	}
	observability.CLILogger.Info("Deleted object", zap.String("key", key))
	return nil
}
