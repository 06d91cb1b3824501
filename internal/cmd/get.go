package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arborlabs/keytree/internal/observability"
	"github.com/arborlabs/keytree/pkg/store"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Download an object",
	Long: `Download a single object and write its bytes to stdout or a file.

Examples:
  keytree get data/2024/report.json --base-dir /srv/store
  keytree get data/2024/report.json -o report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var getOutputPath string

func init() {
	rootCmd.AddCommand(getCmd)
	registerStoreFlags(getCmd)
	getCmd.Flags().StringVarP(&getOutputPath, "output", "o", "", "Write the object to this file instead of stdout")
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := args[0]

	st, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	getter, ok := st.(store.ObjectGetter)
	if !ok {
		return exitError(foundry.ExitInvalidArgument, "Backend does not support downloads",
			fmt.Errorf("backend %s has no object getter", backendType(st)))
	}

	info, body, err := getter.GetObject(ctx, key)
	if err != nil {
		observability.CLILogger.Error("Failed to get object", zap.String("key", key), zap.Error(err))
		if store.IsNotFound(err) {
			return exitError(foundry.ExitFileNotFound, "Object not found", err)
		}
		return exitError(foundry.ExitFileReadError, "Failed to get object", err)
	}
	defer func() { _ = body.Close() }()

	var dst io.Writer = os.Stdout
	if getOutputPath != "" {
		f, cerr := os.Create(getOutputPath)
		if cerr != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to create output file", cerr)
		}
		defer func() { _ = f.Close() }()
		dst = f
	}

	n, err := io.Copy(dst, body)
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to write object bytes", err)
	}

	observability.CLILogger.Info("Downloaded object",
		zap.String("key", key),
		zap.Int64("bytes", n),
		zap.String("etag", info.ETag))
	return nil
}
