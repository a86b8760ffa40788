package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change chatdocs settings.

Settings are stored in config.toml under the config directory. API keys may
instead be supplied through the environment or a .env file
(OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY).`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by key. Run "chatdocs config keys" to list the
accepted keys.`,
	Example: `  chatdocs config set docs.path ./loopdocs/docs
  chatdocs config set chunking.size 800
  chatdocs config set llm.provider openai`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := requireBackend()
		if err != nil {
			return err
		}
		if err := b.Settings().Set(args[0], args[1]); err != nil {
			return err
		}
		value := args[1]
		if strings.HasSuffix(args[0], "api_key") {
			value = services.RedactKey(value)
		}
		cmd.Printf("Set %s = %s\n", args[0], value)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := requireBackend()
		if err != nil {
			return err
		}
		for _, key := range b.Settings().Keys() {
			cmd.Println(key)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := requireBackend()
		if err != nil {
			return err
		}
		cmd.Println(b.Settings().ConfigPath())
		return nil
	},
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Interactively choose the embedding provider and model. Changing the
embedding model requires "chatdocs ingest --rebuild" afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := requireBackend()
		if err != nil {
			return err
		}
		return configureEmbeddingProvider(cmd, b.Settings(), bufio.NewReader(cmd.InOrStdin()))
	},
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Interactively choose the language model used to synthesise answers.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := requireBackend()
		if err != nil {
			return err
		}
		return configureLLMProvider(cmd, b.Settings(), bufio.NewReader(cmd.InOrStdin()))
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configLLMCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	b, err := requireBackend()
	if err != nil {
		return err
	}
	svc := b.Settings()

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", svc.ConfigPath())
	cmd.Println()

	cmd.Println("[Docs]")
	cmd.Printf("  Path: %s\n", settings.Docs.Path)
	cmd.Printf("  Glob: %s\n", settings.Docs.Glob)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Persist dir: %s\n", settings.Index.PersistDir)
	cmd.Printf("  Chunk size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Chunk overlap: %d\n", settings.Chunking.Overlap)
	cmd.Printf("  Retrieval k: %d\n", settings.Retrieval.K)
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Printf("  Temperature: %g\n", settings.LLM.Temperature)
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'chatdocs config embedding' or 'chatdocs config llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", services.RedactKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set, %s)\n", provider.APIKeyEnv())
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings
func configureEmbeddingProvider(cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey, err := promptAPIKey(cmd, selected, reader)
	if err != nil {
		return err
	}

	if err := svc.SetEmbeddingProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := svc.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selected.Description(), model)
	cmd.Println("Run 'chatdocs ingest --rebuild' to re-embed the corpus.")
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM
func configureLLMProvider(cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey, err := promptAPIKey(cmd, selected, reader)
	if err != nil {
		return err
	}

	if err := svc.SetLLMProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := svc.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}

// promptAPIKey asks for a key when the provider needs one. An empty answer
// is accepted when the provider's environment variable is set.
func promptAPIKey(cmd *cobra.Command, provider domain.AIProvider, reader *bufio.Reader) (string, error) {
	if !provider.RequiresAPIKey() {
		return "", nil
	}
	env := provider.APIKeyEnv()
	cmd.Printf("Enter API key (blank to use %s): ", env)
	apiKey := readPassword(cmd.InOrStdin(), reader)
	cmd.Println()
	if apiKey == "" && os.Getenv(env) == "" {
		return "", errors.New("API key is required for this provider")
	}
	return apiKey, nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, otherwise it reads
// a line from reader.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}
