package adminops

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// MaxFullTextSize guards against accidental huge uploads.
const MaxFullTextSize = 2 * 1024 * 1024

// ReadFullText validates and loads a plain-text file for upload: only .txt
// files up to MaxFullTextSize are accepted, and Windows line endings are
// normalized away.
func ReadFullText(path string) (string, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".txt" {
		return "", errors.Errorf("unsupported file type %q (only .txt is accepted)", ext)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(err, "stat file")
	}
	if info.Size() > MaxFullTextSize {
		return "", errors.Errorf("file too large (max 2MB, got %d bytes)", info.Size())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read file")
	}
	return strings.ReplaceAll(string(raw), "\r\n", "\n"), nil
}
