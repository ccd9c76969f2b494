// Package pyproject loads generation settings from a project's
// pyproject.toml: the package name, the maturin-style layout hints, and
// the [tool.pystub-gen] section controlling stub and doc output.
package pyproject

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PyProject is the decoded pyproject.toml, plus the path it was loaded
// from so relative paths can be resolved against it.
type PyProject struct {
	Project Project `toml:"project" validate:"required"`
	Tool    *Tool   `toml:"tool"`

	tomlPath string
}

// Project is the [project] table.
type Project struct {
	Name string `toml:"name" validate:"required"`
}

// Tool is the [tool] table.
type Tool struct {
	Maturin   *Maturin       `toml:"maturin"`
	PystubGen *StubGenConfig `toml:"pystub-gen"`
}

// Maturin is the [tool.maturin] table. A python-source entry marks the
// project as mixed native/Python.
type Maturin struct {
	PythonSource string `toml:"python-source"`
	ModuleName   string `toml:"module-name"`
}

// StubGenConfig is the [tool.pystub-gen] table.
type StubGenConfig struct {
	UseTypeStatement bool          `toml:"use-type-statement"`
	DocGen           *DocGenConfig `toml:"doc-gen"`
}

// DocGenConfig is the [tool.pystub-gen.doc-gen] table. Pointer fields
// distinguish "absent" from an explicit empty value.
type DocGenConfig struct {
	OutputDir     string  `toml:"output-dir"`
	JSONOutput    string  `toml:"json-output"`
	SeparatePages *bool   `toml:"separate-pages"`
	IndexTitle    *string `toml:"index-title"`
	IntroMessage  *string `toml:"intro-message"`
	ContentsTable bool    `toml:"contents-table"`
}

// Load reads and validates a pyproject.toml. The file must literally be
// named pyproject.toml; pointing the tool at some other TOML file is
// almost certainly a mistake.
func Load(path string) (*PyProject, error) {
	if filepath.Base(path) != "pyproject.toml" {
		return nil, errors.Newf("%s is not a pyproject.toml", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var out PyProject
	if _, err := toml.Decode(string(data), &out); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := validate.Struct(&out); err != nil {
		return nil, errors.Wrapf(err, "invalid pyproject at %s", path)
	}
	out.tomlPath = path
	return &out, nil
}

// ModuleName returns the Python module name to generate for: the maturin
// module-name override when present, else the project name.
func (p *PyProject) ModuleName() string {
	if p.Tool != nil && p.Tool.Maturin != nil && p.Tool.Maturin.ModuleName != "" {
		return p.Tool.Maturin.ModuleName
	}
	return p.Project.Name
}

// PythonSource returns the python source directory of a mixed project,
// resolved relative to the pyproject.toml. ok is false for pure-native
// projects.
func (p *PyProject) PythonSource() (dir string, ok bool) {
	if p.Tool == nil || p.Tool.Maturin == nil || p.Tool.Maturin.PythonSource == "" {
		return "", false
	}
	return p.resolve(p.Tool.Maturin.PythonSource), true
}

// StubGen returns the [tool.pystub-gen] section, or a zero default when
// the section is absent.
func (p *PyProject) StubGen() StubGenConfig {
	if p.Tool != nil && p.Tool.PystubGen != nil {
		return *p.Tool.PystubGen
	}
	return StubGenConfig{}
}

// DocGen returns the doc-gen section with defaults applied and the
// output directory resolved relative to the pyproject.toml. ok is false
// when doc generation is not configured.
func (p *PyProject) DocGen() (cfg DocGenConfig, ok bool) {
	sg := p.StubGen()
	if sg.DocGen == nil {
		return DocGenConfig{}, false
	}
	cfg = *sg.DocGen
	if cfg.OutputDir == "" {
		cfg.OutputDir = "docs/api"
	}
	cfg.OutputDir = p.resolve(cfg.OutputDir)
	if cfg.JSONOutput == "" {
		cfg.JSONOutput = "api_reference.json"
	}
	if cfg.SeparatePages == nil {
		defaultTrue := true
		cfg.SeparatePages = &defaultTrue
	}
	return cfg, true
}

func (p *PyProject) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(p.tomlPath), path)
}
