// Package config finds and loads van module manifests.
//
// The primary manifest is a YAML file named "Van Module Information" at the
// module root. A van.toml with a [module] table is accepted in its place.
package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v2"

	"github.com/pontaoski/van/reader"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/van", "config")

const (
	ManifestName = "Van Module Information"
	TOMLName     = "van.toml"
)

// Module describes one van module.
type Module struct {
	Package  string   `yaml:"Package" toml:"package"`
	Version  string   `yaml:"Version,omitempty" toml:"version"`
	Sources  []string `yaml:"Sources,omitempty" toml:"sources"`
	Warnings *bool    `yaml:"Warnings,omitempty" toml:"warnings"`
}

type tomlFile struct {
	Module Module `toml:"module"`
}

// Default is the module assumed for dir when it has no manifest.
func Default(dir string) *Module {
	m := &Module{Package: filepath.Base(dir)}
	m.fill()
	return m
}

// ShowWarnings reports whether checker warnings should be printed.
func (m *Module) ShowWarnings() bool {
	return m.Warnings == nil || *m.Warnings
}

func (m *Module) fill() {
	if len(m.Sources) == 0 {
		m.Sources = []string{reader.DefaultPattern}
	}
	if m.Warnings == nil {
		on := true
		m.Warnings = &on
	}
}

// Validate checks the fields a manifest must get right.
func (m *Module) Validate() error {
	if strings.TrimSpace(m.Package) == "" {
		return tracerr.Errorf("missing Package")
	}
	if m.Version != "" && !semver.IsValid(canonicalVersion(m.Version)) {
		return tracerr.Errorf("invalid Version %q: not a semantic version", m.Version)
	}
	return nil
}

func canonicalVersion(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// LoadYAML reads a "Van Module Information" file.
func LoadYAML(path string) (*Module, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	var m Module
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, tracerr.Errorf("error reading %s: %s", path, err)
	}
	return finish(&m, path)
}

// LoadTOML reads a van.toml file.
func LoadTOML(path string) (*Module, error) {
	var f tomlFile
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, tracerr.Errorf("error reading %s: %s", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		plog.Warningf("%s: ignoring unknown key %s", path, undecoded[0])
	}
	return finish(&f.Module, path)
}

func finish(m *Module, path string) (*Module, error) {
	if err := m.Validate(); err != nil {
		return nil, tracerr.Errorf("%s: %s", path, tracerr.Unwrap(err))
	}
	m.fill()
	return m, nil
}

// Load reads the manifest at path, choosing the format from its name.
func Load(path string) (*Module, error) {
	if filepath.Base(path) == TOMLName {
		return LoadTOML(path)
	}
	return LoadYAML(path)
}

// Find walks up from startDir and returns the first manifest found, or "".
// In each directory the YAML manifest wins over van.toml.
func Find(startDir string) string {
	dir := startDir
	for {
		for _, name := range []string{ManifestName, TOMLName} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// FindAndLoad loads the nearest manifest at or above startDir. Without one
// it returns Default(startDir) and an empty path.
func FindAndLoad(startDir string) (*Module, string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, "", tracerr.Wrap(err)
	}

	path := Find(abs)
	if path == "" {
		plog.Debugf("no manifest above %s, using defaults", abs)
		return Default(abs), "", nil
	}

	m, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	plog.Debugf("loaded %s", path)
	return m, path, nil
}

// Root is the directory holding the manifest at path.
func Root(path string) string {
	return filepath.Dir(path)
}

// Write stores m as a YAML manifest in dir.
func Write(dir string, m *Module) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	out, err := yaml.Marshal(m)
	if err != nil {
		return "", tracerr.Wrap(err)
	}

	path := filepath.Join(dir, ManifestName)
	if err := ioutil.WriteFile(path, out, 0o644); err != nil {
		return "", tracerr.Wrap(err)
	}
	return path, nil
}
