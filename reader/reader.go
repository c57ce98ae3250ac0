// Package reader loads van source files from disk.
package reader

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/van", "reader")

// DefaultPattern matches van sources when a module names none.
const DefaultPattern = "*.van"

// Source is one loaded file.
type Source struct {
	Filename string
	Text     []rune
	Lines    []string
}

// FromString builds a Source from text already in memory.
func FromString(filename, text string) *Source {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Source{
		Filename: filename,
		Text:     []rune(text),
		Lines:    strings.Split(text, "\n"),
	}
}

// ReadFile loads the file at path.
func ReadFile(path string) (*Source, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	plog.Debugf("read %s (%d bytes)", path, len(data))
	return FromString(path, string(data)), nil
}

// Scan returns the files in dir matching any of patterns, sorted and without
// duplicates. Patterns are relative to dir. Directories are skipped.
func Scan(dir string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, tracerr.Wrap(err)
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			fi, err := os.Stat(match)
			if err != nil {
				return nil, tracerr.Wrap(err)
			}
			if fi.IsDir() {
				continue
			}
			seen[match] = true
			files = append(files, match)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ReadAll loads every file in paths, stopping at the first failure.
func ReadAll(paths []string) ([]*Source, error) {
	sources := make([]*Source, 0, len(paths))
	for _, path := range paths {
		src, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
