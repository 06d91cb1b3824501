package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/arborlabs/keytree/internal/observability"
	"github.com/arborlabs/keytree/pkg/match"
	"github.com/arborlabs/keytree/pkg/output"
	"github.com/arborlabs/keytree/pkg/store"
)

var lsCmd = &cobra.Command{
	Use:   "ls [key]",
	Short: "List objects under a key",
	Long: `List the objects under a directory key.

Without --deep, a single directory level is listed. With --deep, the
whole subtree is walked one directory at a time; each step yields a
cursor, and the walk can be resumed later with --cursor.

Examples:
  keytree ls data --base-dir /srv/store
  keytree ls data --deep
  keytree ls data --deep --cursor '+data:data/2024'
  keytree ls data --deep --include '**/*.json' --exclude 'scratch/**'
  keytree ls data --deep --rps 10 --output jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

var (
	lsDeep          bool
	lsCursor        string
	lsMaxPages      int
	lsRPS           float64
	lsOutput        string
	lsIncludes      []string
	lsExcludes      []string
	lsIncludeHidden bool
)

func init() {
	rootCmd.AddCommand(lsCmd)
	registerStoreFlags(lsCmd)

	lsCmd.Flags().BoolVar(&lsDeep, "deep", false, "Walk the whole subtree")
	lsCmd.Flags().StringVar(&lsCursor, "cursor", "", "Resume a deep listing from this cursor")
	lsCmd.Flags().IntVar(&lsMaxPages, "max-pages", 0, "Stop after this many listing steps (0 = unlimited)")
	lsCmd.Flags().Float64Var(&lsRPS, "rps", 0, "Throttle listing steps per second (0 = unlimited)")
	lsCmd.Flags().StringVarP(&lsOutput, "output", "o", "jsonl", "Output format (jsonl|table)")
	lsCmd.Flags().StringSliceVar(&lsIncludes, "include", nil, "Glob patterns keys must match")
	lsCmd.Flags().StringSliceVar(&lsExcludes, "exclude", nil, "Glob patterns keys must not match")
	lsCmd.Flags().BoolVar(&lsIncludeHidden, "hidden", false, "Include dot-prefixed keys")
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	key := ""
	if len(args) > 0 {
		key = args[0]
	}

	if lsOutput != "jsonl" && lsOutput != "table" {
		return exitError(foundry.ExitInvalidArgument, "Invalid --output value",
			fmt.Errorf("expected jsonl or table, got %q", lsOutput))
	}

	matcher, err := match.New(match.Config{
		Includes:      lsIncludes,
		Excludes:      lsExcludes,
		IncludeHidden: lsIncludeHidden,
	})
	if err != nil {
		observability.CLILogger.Error("Failed to create matcher", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid pattern", err)
	}

	st, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if lsDeep {
		return runDeepListing(ctx, st, key, matcher)
	}
	return runShallowListing(ctx, st, key, matcher)
}

// runShallowListing lists one directory level.
func runShallowListing(ctx context.Context, st store.Store, key string, matcher *match.Matcher) error {
	result, err := st.List(ctx, store.ListOptions{Key: key})
	if err != nil {
		observability.CLILogger.Error("Failed to list key", zap.String("key", key), zap.Error(err))
		return exitError(listExitCode(err), "Failed to list key", err)
	}

	if lsOutput == "table" {
		for _, dir := range result.Dirs {
			fmt.Printf("%-12s %s/\n", "-", dir)
		}
		for _, obj := range result.Objects {
			if !matcher.Match(obj.Key) {
				continue
			}
			fmt.Printf("%-12d %s\n", obj.Size, obj.Key)
		}
		return nil
	}

	writer := output.NewJSONLWriter(os.Stdout, uuid.New().String(), string(backendType(st)))
	defer func() { _ = writer.Close() }()

	for _, obj := range result.Objects {
		if !matcher.Match(obj.Key) {
			continue
		}
		rec := objectRecord(obj)
		if werr := writer.WriteObject(ctx, &rec); werr != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to write record", werr)
		}
	}
	return nil
}

// runDeepListing walks the subtree one listing step at a time,
// emitting a page record with the resumption cursor after each step.
func runDeepListing(ctx context.Context, st store.Store, key string, matcher *match.Matcher) error {
	runID := uuid.New().String()
	writer := output.NewJSONLWriter(os.Stdout, runID, string(backendType(st)))
	defer func() { _ = writer.Close() }()

	var limiter *rate.Limiter
	if lsRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(lsRPS), 1)
	}

	observability.CLILogger.Info("Starting deep listing",
		zap.String("key", key),
		zap.String("run_id", runID),
		zap.Bool("resumed", lsCursor != ""))

	start := time.Now()
	cursor := lsCursor
	var objects, pages, bytesTotal, errCount int64

	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return exitError(foundry.ExitSignalInt, "Listing cancelled", err)
			}
		}

		result, err := st.List(ctx, store.ListOptions{Key: key, Cursor: cursor, Deep: true})
		if err != nil {
			errCount++
			_ = writer.WriteError(ctx, errorRecord(err))
			observability.CLILogger.Error("Listing step failed", zap.String("cursor", cursor), zap.Error(err))
			return exitError(listExitCode(err), "Failed to list subtree", err)
		}
		pages++

		emitted := 0
		for _, obj := range result.Objects {
			if !matcher.Match(obj.Key) {
				continue
			}
			rec := objectRecord(obj)
			if werr := writer.WriteObject(ctx, &rec); werr != nil {
				return exitError(foundry.ExitFileWriteError, "Failed to write record", werr)
			}
			objects++
			bytesTotal += obj.Size
			emitted++
		}

		if werr := writer.WritePage(ctx, &output.PageRecord{
			Key:     key,
			Cursor:  result.Cursor,
			Objects: emitted,
		}); werr != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to write page record", werr)
		}

		if result.Cursor == "" {
			break
		}
		cursor = result.Cursor

		if lsMaxPages > 0 && pages >= int64(lsMaxPages) {
			observability.CLILogger.Info("Stopping at page limit",
				zap.Int64("pages", pages),
				zap.String("cursor", cursor))
			break
		}
	}

	elapsed := time.Since(start)
	if werr := writer.WriteSummary(ctx, &output.SummaryRecord{
		Objects:       objects,
		BytesTotal:    bytesTotal,
		Pages:         pages,
		Duration:      elapsed,
		DurationHuman: elapsed.Round(time.Millisecond).String(),
		Errors:        errCount,
	}); werr != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to write summary", werr)
	}

	observability.CLILogger.Info("Deep listing complete",
		zap.Int64("objects", objects),
		zap.Int64("pages", pages),
		zap.Duration("duration", elapsed))
	return nil
}

// objectRecord converts store metadata into an output record.
func objectRecord(obj store.ObjectInfo) output.ObjectRecord {
	return output.ObjectRecord{
		Key:          obj.Key,
		Size:         obj.Size,
		ETag:         obj.ETag,
		LastModified: obj.LastModified,
	}
}

// errorRecord converts a store error into an output record.
func errorRecord(err error) *output.ErrorRecord {
	code := output.ErrCodeInternal
	switch {
	case store.IsNotFound(err):
		code = output.ErrCodeNotFound
	case store.IsAccessDenied(err):
		code = output.ErrCodeAccessDenied
	case store.IsMalformedCursor(err):
		code = output.ErrCodeMalformedCursor
	}
	return &output.ErrorRecord{Code: code, Message: err.Error()}
}

// listExitCode maps store errors to process exit codes.
func listExitCode(err error) int {
	switch {
	case store.IsNotFound(err), store.IsMalformedCursor(err), store.IsNotADirectory(err):
		return foundry.ExitInvalidArgument
	default:
		return foundry.ExitExternalServiceUnavailable
	}
}

// backendType reports the backend identifier for output records.
func backendType(st store.Store) store.BackendType {
	type backender interface {
		Backend() store.BackendType
	}
	if b, ok := st.(backender); ok {
		return b.Backend()
	}
	return store.BackendFS
}
