package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

// resetFlags restores flag variables that persist between executions.
func resetFlags() {
	verboseFlag, docsFlag, persistDirFlag = false, "", ""
	ingestRebuild, ingestWatch = false, false
	askK, askJSON, askNoHistory = 0, false, false
	retrieveK, retrieveJSON = 0, false
	inspectLimit, inspectJSON = driving.DefaultPeekLimit, false
	historyLimit = 10
	fetchOwner, fetchRepo, fetchRef, fetchPrefix, fetchDest = "LoopKit", "loopdocs", "", "docs", ""
}

// run executes the root command against b and returns combined output.
func run(t *testing.T, b Backend, args ...string) (string, error) {
	t.Helper()
	return runWithInput(t, b, "", args...)
}

// runWithInput is run with input supplied on stdin.
func runWithInput(t *testing.T, b Backend, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	SetBackend(b)
	progressEnabled = func() bool { return false }

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		SetBackend(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "chatdocs", rootCmd.Use)
}

func TestRootCmd_HasCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ingest", "ask", "retrieve", "inspect", "history", "models", "fetch", "config", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRequireBackend_NotConfigured(t *testing.T) {
	SetBackend(nil)
	_, err := requireBackend()
	assert.Error(t, err)
}

func TestEffectiveSettings_FlagOverrides(t *testing.T) {
	b := newMockBackend()
	_, err := run(t, b, "retrieve", "--docs", "/tmp/loopdocs", "--persist-dir", "/tmp/index", "pump")
	require.NoError(t, err)

	require.NotNil(t, b.last)
	assert.Equal(t, "/tmp/loopdocs", b.last.Docs.Path)
	assert.Equal(t, "/tmp/index", b.last.Index.PersistDir)
}

func TestEffectiveSettings_InvalidSettings(t *testing.T) {
	b := newMockBackend()
	require.NoError(t, b.store.Set("chunking.overlap", 5000))

	_, err := run(t, b, "retrieve", "pump")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, b.last)
}

func TestHintFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"index missing", fmt.Errorf("open: %w", domain.ErrIndexNotFound), "chatdocs ingest"},
		{"docs missing", domain.ErrDocsNotFound, "chatdocs fetch"},
		{"mismatch", domain.ErrIndexMismatch, "--rebuild"},
		{"llm", domain.ErrLLMUnavailable, "config show"},
		{"synthesis", fmt.Errorf("%w: timeout", domain.ErrSynthesisUnavailable), "config show"},
		{"rate limited", domain.ErrRateLimited, "GITHUB_TOKEN"},
		{"other", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := hintFor(tt.err)
			if tt.want == "" {
				assert.Empty(t, hint)
				return
			}
			assert.Contains(t, hint, tt.want)
		})
	}
}

func TestPrintError_IncludesHint(t *testing.T) {
	buf := new(bytes.Buffer)
	printError(buf, fmt.Errorf("retrieve: %w", domain.ErrIndexNotFound))

	assert.Contains(t, buf.String(), "Error: retrieve: vector index not found")
	assert.Contains(t, buf.String(), "Hint: run `chatdocs ingest` first")
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}
