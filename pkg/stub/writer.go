package stub

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Layout selects how module names map to stub file paths.
type Layout int

const (
	// MixedLayout places stubs next to a Python source tree: dotted names
	// become directories, and a module with submodules becomes a package
	// directory with an __init__.pyi.
	MixedLayout Layout = iota
	// FlatLayout emits a single <module>.pyi file and refuses packages
	// with more than one module, since there is nowhere to put them.
	FlatLayout
)

// WriteConfig controls stub output.
type WriteConfig struct {
	// Dir is the Python source root (mixed layout) or the output
	// directory (flat layout).
	Dir    string
	Layout Layout
	RenderConfig
}

// Writer renders every module of a finalized registry to disk.
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a stub writer. A nil logger disables logging.
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// WriteStubs writes one .pyi file per module.
func (w *Writer) WriteStubs(reg *Registry, cfg WriteConfig) error {
	modules := reg.Modules()
	moduleSet := reg.ModuleSet()

	if cfg.Layout == FlatLayout && len(modules) > 1 {
		names := make([]string, 0, len(modules))
		for name := range modules {
			names = append(names, name)
		}
		return errors.Newf(
			"flat layout supports a single module, package has %d: %s",
			len(modules), strings.Join(names, ", "),
		)
	}

	for name, mod := range modules {
		path, err := w.stubPath(cfg, name, len(mod.submodules) > 0)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrapf(err, "creating stub directory for %q", path)
		}
		text := mod.Render(cfg.RenderConfig, moduleSet)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return errors.Wrapf(err, "writing stub %q", path)
		}
		w.logger.Info("wrote stub", zap.String("module", name), zap.String("path", path))
	}
	return nil
}

func (w *Writer) stubPath(cfg WriteConfig, module string, hasSubmodules bool) (string, error) {
	if cfg.Layout == FlatLayout {
		return filepath.Join(cfg.Dir, module+".pyi"), nil
	}
	parts := strings.Split(module, ".")
	if hasSubmodules {
		// Package directory: pkg.sub -> pkg/sub/__init__.pyi
		return filepath.Join(append([]string{cfg.Dir}, append(parts, "__init__.pyi")...)...), nil
	}
	if len(parts) == 1 {
		// Root module without submodules still gets its package dir.
		return filepath.Join(cfg.Dir, parts[0], "__init__.pyi"), nil
	}
	last := parts[len(parts)-1]
	dir := filepath.Join(append([]string{cfg.Dir}, parts[:len(parts)-1]...)...)
	return filepath.Join(dir, last+".pyi"), nil
}
