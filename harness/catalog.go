package harness

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrIncompleteCase is returned for a catalog entry without an image or a
// preset.
var ErrIncompleteCase = errors.New("test case needs both image and preset")

// catalogFile is the YAML catalog layout:
//
//	cases:
//	  - image: DSC03024.tif
//	    preset: testing/preset_curves_lowkey.bs
//	    description: curves
type catalogFile struct {
	Cases []TestCase `yaml:"cases"`
}

// LoadCatalog reads test cases from catalog files and directories, in the
// order the files are collected.
func LoadCatalog(paths []string) ([]TestCase, error) {
	files, err := CollectCatalogFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no catalog files found in %s", strings.Join(paths, ", "))
	}

	var cases []TestCase
	for _, file := range files {
		fileCases, err := ParseCatalogFile(file)
		if err != nil {
			return nil, err
		}
		cases = append(cases, fileCases...)
	}
	return cases, nil
}

// ParseCatalogFile parses one catalog file, choosing the format by
// extension: .html is parsed as HTML, everything else as YAML.
func ParseCatalogFile(path string) ([]TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cases []TestCase
	if strings.EqualFold(filepath.Ext(path), ".html") {
		cases, err = ParseHTMLCatalog(f)
	} else {
		cases, err = ParseYAMLCatalog(f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, tc := range cases {
		if tc.Image == "" || tc.Preset == "" {
			return nil, fmt.Errorf("%s: case %d: %w", path, i+1, ErrIncompleteCase)
		}
	}
	return cases, nil
}

// ParseYAMLCatalog parses test cases from a YAML document.
func ParseYAMLCatalog(r io.Reader) ([]TestCase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	for i := range cf.Cases {
		cf.Cases[i].Image = strings.TrimSpace(cf.Cases[i].Image)
		cf.Cases[i].Preset = strings.TrimSpace(cf.Cases[i].Preset)
	}
	return cf.Cases, nil
}
