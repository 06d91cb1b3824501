package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arborlabs/keytree/internal/observability"
	"github.com/arborlabs/keytree/pkg/store"
)

var putCmd = &cobra.Command{
	Use:   "put <key> [file]",
	Short: "Upload an object",
	Long: `Upload a file (or stdin) to an object key, creating missing parent
directories on demand.

Examples:
  keytree put data/2024/report.json report.json --base-dir /srv/store
  cat report.json | keytree put data/2024/report.json
  keytree put data/2024/report.json report.json --last-modified 2024-03-01T12:00:00Z`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

var putLastModified string

func init() {
	rootCmd.AddCommand(putCmd)
	registerStoreFlags(putCmd)
	putCmd.Flags().StringVar(&putLastModified, "last-modified", "", "Force the stored modification time (RFC 3339)")
}

func runPut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := args[0]

	var opts store.PutOptions
	if putLastModified != "" {
		ts, err := time.Parse(time.RFC3339, putLastModified)
		if err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid --last-modified value",
				fmt.Errorf("parse %q: %w", putLastModified, err))
		}
		opts.LastModified = ts
	}

	var body io.Reader = os.Stdin
	if len(args) == 2 {
		f, err := os.Open(args[1])
		if err != nil {
			return exitError(foundry.ExitFileReadError, "Failed to open input file", err)
		}
		defer func() { _ = f.Close() }()
		body = f
	}

	st, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	putter, ok := st.(store.ObjectPutter)
	if !ok {
		return exitError(foundry.ExitInvalidArgument, "Backend does not support uploads",
			fmt.Errorf("backend %s has no object putter", backendType(st)))
	}

	info, err := putter.PutObject(ctx, key, body, opts)
	if err != nil {
		observability.CLILogger.Error("Failed to put object", zap.String("key", key), zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to put object", err)
	}

	observability.CLILogger.Info("Uploaded object",
		zap.String("key", info.Key),
		zap.Int64("bytes", info.Size),
		zap.String("etag", info.ETag))
	fmt.Printf("%s  %d bytes  etag=%s\n", info.Key, info.Size, info.ETag)
	return nil
}
