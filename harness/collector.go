package harness

import (
	"os"
	"path/filepath"
	"strings"
)

// CollectCatalogFiles recursively finds catalog files (.yaml, .yml, .html)
// in the given paths. Paths can be files or directories; files named
// explicitly are returned even without a known extension.
func CollectCatalogFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			dirFiles, err := collectFromDir(path)
			if err != nil {
				return nil, err
			}
			files = append(files, dirFiles...)
		} else {
			files = append(files, path)
		}
	}
	return files, nil
}

func collectFromDir(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isCatalogFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".html":
		return true
	}
	return false
}
