// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the chatdocs config directory (~/.chatdocs).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates with embedded defaults
//   - TranscriptLog: JSON-lines question and answer history
package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the config directory name under the user's home.
const DirName = ".chatdocs"

// DefaultDir returns ~/.chatdocs.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}
