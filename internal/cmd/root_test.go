package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborlabs/keytree/pkg/output"
	"github.com/arborlabs/keytree/pkg/store"
)

func TestSetVersionInfo(t *testing.T) {
	// Save original values
	origVersion := versionInfo.Version
	origCommit := versionInfo.Commit
	origBuildDate := versionInfo.BuildDate
	defer func() {
		versionInfo.Version = origVersion
		versionInfo.Commit = origCommit
		versionInfo.BuildDate = origBuildDate
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{
			name:      "set all values",
			version:   "1.0.0",
			commit:    "abc123",
			buildDate: "2024-01-15",
		},
		{
			name:      "set dev version",
			version:   "dev",
			commit:    "HEAD",
			buildDate: "unknown",
		},
		{
			name:      "set empty values",
			version:   "",
			commit:    "",
			buildDate: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
		})
	}
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
		err     error
	}{
		{
			name:    "with wrapped error",
			code:    foundry.ExitInvalidArgument,
			message: "Invalid input",
			err:     errors.New("bad key"),
		},
		{
			name:    "without wrapped error",
			code:    foundry.ExitFileNotFound,
			message: "Object not found",
			err:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitError(tt.code, tt.message, tt.err)
			require.Error(t, err)

			assert.Contains(t, err.Error(), tt.message)
			assert.Contains(t, err.Error(), fmt.Sprintf("exit code %d", tt.code))
			assert.Equal(t, tt.code, exitCode(err))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestExitCode_DefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("plain error")))
}

func TestExitCode_Wrapped(t *testing.T) {
	inner := exitError(foundry.ExitFileWriteError, "write failed", errors.New("disk full"))
	wrapped := fmt.Errorf("command failed: %w", inner)
	assert.Equal(t, foundry.ExitFileWriteError, exitCode(wrapped))
}

func TestErrorRecord(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "not found",
			err:      store.ErrNotFound,
			wantCode: output.ErrCodeNotFound,
		},
		{
			name:     "access denied",
			err:      store.ErrAccessDenied,
			wantCode: output.ErrCodeAccessDenied,
		},
		{
			name:     "malformed cursor",
			err:      store.ErrMalformedCursor,
			wantCode: output.ErrCodeMalformedCursor,
		},
		{
			name:     "anything else",
			err:      errors.New("boom"),
			wantCode: output.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := errorRecord(tt.err)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.err.Error(), rec.Message)
		})
	}
}

func TestListExitCode(t *testing.T) {
	assert.Equal(t, foundry.ExitInvalidArgument, listExitCode(store.ErrNotFound))
	assert.Equal(t, foundry.ExitInvalidArgument, listExitCode(store.ErrMalformedCursor))
	assert.Equal(t, foundry.ExitExternalServiceUnavailable, listExitCode(errors.New("io failure")))
}
