// Package config reads pint.yaml, the optional project file of a Pint
// source tree.
//
// A project file names the language version the sources are written
// against, the files to check and the functions the host provides beyond
// the builtins:
//
//	language: ">= 0.1, < 0.2"
//	sources: [src, main.pint]
//	color: auto
//	report: pint-report.txt
//	externs:
//	  - name: clamp
//	    params:
//	      - {name: x, type: int}
//	    returns: int when it >= 0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// FileName is the name Find looks for.
const FileName = "pint.yaml"

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	// Language is a semver constraint on the language version, such as
	// "^0.1". Empty accepts any version.
	Language string `yaml:"language,omitempty"`

	// Sources lists files and directories to check, relative to the
	// project file. Empty means the project directory.
	Sources []string `yaml:"sources,omitempty"`

	Externs []Extern `yaml:"externs,omitempty"`

	// Color is auto, always or never. Defaults to auto.
	Color string `yaml:"color,omitempty"`

	// Report is a file every check run appends its diagnostics to.
	Report string `yaml:"report,omitempty"`

	// Dir is the directory of the project file, or the working directory
	// for the default configuration.
	Dir string `yaml:"-"`
	// Path is where the configuration was read from, empty for the default.
	Path string `yaml:"-"`
}

// Extern is a function implemented by the host. Types are written in Pint
// syntax and may be refined; a refinement may mention earlier parameters.
type Extern struct {
	Name    string  `yaml:"name"`
	Params  []Param `yaml:"params,omitempty"`
	Returns string  `yaml:"returns"`
}

type Param struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Default is the configuration used when there is no project file.
func Default(dir string) *Config {
	cfg := &Config{Dir: dir}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses the project file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses project file content. path locates relative sources and
// prefixes error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.Path = path
	cfg.Dir = filepath.Dir(path)
	cfg.setDefaults()
	return &cfg, nil
}

// Find searches dir and its parents for a project file. It returns "" and
// no error when there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	if c.Language != "" {
		if _, err := semver.NewConstraint(c.Language); err != nil {
			return fmt.Errorf("%s: language: invalid version constraint %q: %w", path, c.Language, err)
		}
	}
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color: must be auto, always or never, got %q", path, c.Color)
	}

	seen := make(map[string]bool, len(c.Externs))
	for i, ext := range c.Externs {
		if !identRe.MatchString(ext.Name) {
			return fmt.Errorf("%s: externs[%d]: invalid name %q", path, i, ext.Name)
		}
		if seen[ext.Name] {
			return fmt.Errorf("%s: externs[%d]: duplicate extern %q", path, i, ext.Name)
		}
		seen[ext.Name] = true
		if ext.Returns == "" {
			return fmt.Errorf("%s: externs[%d] (%s): returns is required", path, i, ext.Name)
		}
		for j, p := range ext.Params {
			if !identRe.MatchString(p.Name) {
				return fmt.Errorf("%s: externs[%d].params[%d] (%s): invalid name %q", path, i, j, ext.Name, p.Name)
			}
			if p.Type == "" {
				return fmt.Errorf("%s: externs[%d].params[%d] (%s): type is required", path, i, j, ext.Name)
			}
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if len(c.Sources) == 0 {
		c.Sources = []string{"."}
	}
}

// SourcePaths returns Sources resolved against the project directory.
func (c *Config) SourcePaths() []string {
	paths := make([]string, len(c.Sources))
	for i, src := range c.Sources {
		if filepath.IsAbs(src) || c.Dir == "" {
			paths[i] = src
		} else {
			paths[i] = filepath.Join(c.Dir, src)
		}
	}
	return paths
}

// ReportPath returns Report resolved against the project directory, or ""
// when no report is configured.
func (c *Config) ReportPath() string {
	if c.Report == "" || filepath.IsAbs(c.Report) || c.Dir == "" {
		return c.Report
	}
	return filepath.Join(c.Dir, c.Report)
}

// CheckLanguage reports an error when version does not satisfy the
// project's language constraint.
func (c *Config) CheckLanguage(version string) error {
	if c.Language == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Language)
	if err != nil {
		return fmt.Errorf("invalid language constraint %q: %w", c.Language, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid language version %q: %w", version, err)
	}
	if ok, errs := constraint.Validate(v); !ok {
		if len(errs) > 0 {
			return fmt.Errorf("language version %s does not satisfy %q: %w", v, c.Language, errs[0])
		}
		return fmt.Errorf("language version %s does not satisfy %q", v, c.Language)
	}
	return nil
}
