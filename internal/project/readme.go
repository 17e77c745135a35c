package project

import (
	"errors"
	"os"
	"path/filepath"
)

// ReadmeName is the readme filename looked up next to the manifest.
const ReadmeName = "README.md"

// Readme is the project readme, when one exists.
type Readme struct {
	Path    string
	Content string
}

// LoadReadme reads README.md from root. Missing file is not an error.
func LoadReadme(root string) (*Readme, bool, error) {
	path := filepath.Join(root, ReadmeName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &Readme{Path: path, Content: string(data)}, true, nil
}
