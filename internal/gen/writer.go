package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes the generated files to the output directory, creating
// it if needed. Files whose content is already up to date are left alone.
// It returns the paths that were written.
func WriteFiles(files []GeneratedFile, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string

	for _, file := range files {
		outputPath := filepath.Join(outputDir, file.Filename)

		current, err := os.ReadFile(outputPath)
		if err == nil && bytes.Equal(current, file.Content) {
			continue
		}

		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return written, fmt.Errorf("reading file %s: %w", file.Filename, err)
		}

		if err := os.WriteFile(outputPath, file.Content, filePerm); err != nil {
			return written, fmt.Errorf("writing file %s: %w", file.Filename, err)
		}

		written = append(written, outputPath)
	}

	return written, nil
}
