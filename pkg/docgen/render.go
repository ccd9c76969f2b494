package docgen

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed assets/pystub.css
var staticAssets embed.FS

// Format selects the serialization of the documentation tree.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// RenderOptions controls documentation output. These are formatting
// choices only; they never affect the aggregated metadata.
type RenderOptions struct {
	OutputDir     string
	TreeFilename  string
	Format        Format
	SeparatePages bool
	IndexTitle    string
	IntroMessage  string
	ContentsTable bool
}

// Marshal serializes the documentation tree. YAML goes through the JSON
// representation so both formats share the same key names.
func Marshal(pkg DocPackage, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling doc package")
	}
	if format != FormatYAML {
		return append(data, '\n'), nil
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, errors.Wrap(err, "round-tripping doc package")
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling doc package as yaml")
	}
	return out, nil
}

// Renderer writes the documentation tree and its RST pages to disk.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a doc renderer. A nil logger disables logging.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger}
}

// Write emits the serialized tree, the index page, per-module pages when
// requested, and the static assets.
func (r *Renderer) Write(pkg DocPackage, opts RenderOptions) error {
	if opts.OutputDir == "" {
		return errors.Newf("doc output directory not configured")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating doc output directory %q", opts.OutputDir)
	}

	filename := opts.TreeFilename
	if filename == "" {
		filename = "api." + string(r.format(opts))
	}
	data, err := Marshal(pkg, r.format(opts))
	if err != nil {
		return err
	}
	treePath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(treePath, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing doc tree %q", treePath)
	}
	r.logger.Info("wrote doc tree", zap.String("path", treePath))

	if err := r.writeIndex(pkg, opts); err != nil {
		return err
	}
	if opts.SeparatePages {
		for _, mod := range pkg.Modules {
			if err := r.writeModulePage(mod, opts); err != nil {
				return err
			}
		}
	}
	return r.copyAssets(opts.OutputDir)
}

func (r *Renderer) format(opts RenderOptions) Format {
	if opts.Format == FormatYAML {
		return FormatYAML
	}
	return FormatJSON
}

func (r *Renderer) writeIndex(pkg DocPackage, opts RenderOptions) error {
	title := opts.IndexTitle
	if title == "" {
		title = pkg.Name + " API"
	}
	var b strings.Builder
	writeRSTHeading(&b, title, '=')
	if opts.IntroMessage != "" {
		b.WriteString(opts.IntroMessage)
		b.WriteString("\n\n")
	}
	if opts.SeparatePages {
		b.WriteString(".. toctree::\n   :maxdepth: 2\n\n")
		for _, mod := range pkg.Modules {
			fmt.Fprintf(&b, "   %s\n", mod.Name)
		}
		b.WriteByte('\n')
	} else {
		for _, mod := range pkg.Modules {
			writeModuleRST(&b, mod, opts, '-')
		}
	}
	path := filepath.Join(opts.OutputDir, "index.rst")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing index page %q", path)
	}
	r.logger.Info("wrote index page", zap.String("path", path))
	return nil
}

func (r *Renderer) writeModulePage(mod DocModule, opts RenderOptions) error {
	var b strings.Builder
	writeModuleRST(&b, mod, opts, '=')
	path := filepath.Join(opts.OutputDir, mod.Name+".rst")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing module page %q", path)
	}
	r.logger.Info("wrote module page", zap.String("module", mod.Name), zap.String("path", path))
	return nil
}

func (r *Renderer) copyAssets(dir string) error {
	data, err := staticAssets.ReadFile("assets/pystub.css")
	if err != nil {
		return errors.Wrap(err, "reading embedded asset")
	}
	path := filepath.Join(dir, "pystub.css")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing asset %q", path)
	}
	return nil
}

func writeRSTHeading(b *strings.Builder, text string, underline byte) {
	b.WriteString(text)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(string(underline), len(text)))
	b.WriteString("\n\n")
}

func writeModuleRST(b *strings.Builder, mod DocModule, opts RenderOptions, underline byte) {
	writeRSTHeading(b, mod.Name, underline)
	if opts.ContentsTable {
		b.WriteString(".. contents::\n   :local:\n\n")
	}
	if mod.Doc != "" {
		b.WriteString(mod.Doc)
		b.WriteString("\n\n")
	}
	for _, item := range mod.Items {
		writeItemRST(b, mod.Name, item)
	}
}

func writeItemRST(b *strings.Builder, module string, item DocItem) {
	switch it := item.(type) {
	case DocFunction:
		for _, sig := range it.Signatures {
			fmt.Fprintf(b, ".. py:function:: %s.%s%s\n\n", module, it.Name, signatureText(sig))
		}
		writeIndented(b, deprecationNote(it.Deprecated))
		writeIndented(b, it.Doc)
	case DocClass:
		fmt.Fprintf(b, ".. py:class:: %s.%s\n\n", module, it.Name)
		writeIndented(b, it.Doc)
		for _, p := range it.Properties {
			fmt.Fprintf(b, "   .. py:property:: %s\n\n", p.Name)
			writeIndentedN(b, p.Doc, 2)
		}
		if it.Ctor != nil {
			for _, sig := range it.Ctor.Signatures {
				fmt.Fprintf(b, "   .. py:method:: __new__%s\n\n", signatureText(sig))
			}
		}
		for _, m := range it.Methods {
			for _, sig := range m.Signatures {
				fmt.Fprintf(b, "   .. py:method:: %s%s\n\n", m.Name, signatureText(sig))
			}
			writeIndentedN(b, m.Doc, 2)
		}
	case DocEnum:
		fmt.Fprintf(b, ".. py:class:: %s.%s\n\n", module, it.Name)
		writeIndented(b, it.Doc)
		for _, v := range it.Variants {
			fmt.Fprintf(b, "   .. py:attribute:: %s\n\n", v.Name)
			writeIndentedN(b, v.Doc, 2)
		}
	case DocAlias:
		fmt.Fprintf(b, ".. py:data:: %s.%s\n   :type: %s\n\n", module, it.Name, it.Type.Text)
		writeIndented(b, it.Doc)
	case DocVariable:
		fmt.Fprintf(b, ".. py:data:: %s.%s\n\n", module, it.Name)
	case DocError:
		fmt.Fprintf(b, ".. py:exception:: %s.%s(%s)\n\n", module, it.Name, it.Base)
	}
}

func signatureText(sig DocSignature) string {
	parts := make([]string, 0, len(sig.Params))
	for _, p := range sig.Params {
		s := p.Name
		if p.Type != nil {
			s += ": " + p.Type.Text
		}
		if p.Default != "" {
			s += " = " + p.Default
		}
		parts = append(parts, s)
	}
	text := "(" + strings.Join(parts, ", ") + ")"
	if sig.Returns != nil {
		text += " -> " + sig.Returns.Text
	}
	return text
}

func deprecationNote(msg string) string {
	if msg == "" {
		return ""
	}
	return ".. deprecated:: " + msg
}

func writeIndented(b *strings.Builder, text string) {
	writeIndentedN(b, text, 1)
}

func writeIndentedN(b *strings.Builder, text string, level int) {
	if text == "" {
		return
	}
	prefix := strings.Repeat("   ", level)
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}
