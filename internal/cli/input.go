package cli

import (
	"fmt"
	"io"
	"os"
)

// ReadInput returns the contents of path, or of stdin when path is empty or "-".
func ReadInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("io.ReadAll > %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile > %w", err)
	}
	return string(b), nil
}
