// Package cli implements the chatdocs command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatdocs/internal/connectors/filesystem"
	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Backend builds the services a command needs from the effective settings.
// Construction is lazy so that commands which never call the language model
// do not need its API key.
type Backend interface {
	Settings() driving.SettingsService
	Ingest(settings *domain.AppSettings) (driving.IngestService, error)
	Retriever(settings *domain.AppSettings) (driving.RetrieverService, error)
	Ask(settings *domain.AppSettings) (driving.AskService, error)
	Index(settings *domain.AppSettings) (driving.IndexService, error)
	Models(settings *domain.AppSettings) (driving.ModelService, error)
	Fetcher(ctx context.Context) (driving.CorpusFetcher, error)
	Watcher(settings *domain.AppSettings) (driven.ChangeWatcher, error)
	Transcript() (driven.TranscriptLog, error)
	Close() error
}

var backend Backend

// Persistent flag values.
var (
	verboseFlag    bool
	docsFlag       string
	persistDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "chatdocs",
	Short: "Ask questions about the LoopDocs documentation",
	Long: `chatdocs answers questions about a markdown documentation corpus
(by default the LoopKit LoopDocs site) using retrieval augmented generation.

Ingest the corpus once to build a local vector index, then ask questions.
Answers are generated only from the retrieved documentation and cite the
source files they were drawn from.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVar(&docsFlag, "docs", "", "documentation directory (overrides docs.path)")
	rootCmd.PersistentFlags().StringVar(&persistDirFlag, "persist-dir", "",
		"vector index directory (overrides index.persist_dir)")
}

// SetBackend sets the service backend used by commands.
func SetBackend(b Backend) {
	backend = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and reports any error with a hint.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// requireBackend returns the backend or an error when none is configured.
func requireBackend() (Backend, error) {
	if backend == nil {
		return nil, errors.New("services not configured")
	}
	return backend, nil
}

// effectiveSettings loads settings and applies per-invocation flag overrides.
func effectiveSettings() (*domain.AppSettings, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}

	settings, err := b.Settings().Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if docsFlag != "" {
		settings.Docs.Path = docsFlag
	}
	if persistDirFlag != "" {
		settings.Index.PersistDir = persistDirFlag
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("settings: docs=%s persist=%s embedding=%s/%s llm=%s/%s",
		settings.Docs.Path, settings.Index.PersistDir,
		settings.Embedding.Provider, settings.Embedding.Model,
		settings.LLM.Provider, settings.LLM.Model)
	return settings, nil
}

// hintFor returns a suggested next step for well-known failures.
func hintFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return "run `chatdocs ingest` first"
	case errors.Is(err, domain.ErrDocsNotFound):
		return filesystem.CloneHint
	case errors.Is(err, domain.ErrIndexMismatch):
		return "run `chatdocs ingest --rebuild` to re-embed the corpus with the configured model"
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrSynthesisUnavailable):
		return "check `chatdocs config show` and your .env file"
	case errors.Is(err, domain.ErrRateLimited):
		return "set GITHUB_TOKEN or wait for the rate limit to reset"
	default:
		return ""
	}
}

func printError(w io.Writer, err error) {
	styles := newStyles()
	fmt.Fprintln(w, styles.Error.Render("Error: "+err.Error()))
	if hint := hintFor(err); hint != "" {
		fmt.Fprintln(w, styles.Muted.Render("Hint: "+hint))
	}
}
