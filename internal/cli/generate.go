package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/pystub-gen/pkg/docgen"
	"github.com/example/pystub-gen/pkg/pyproject"
	"github.com/example/pystub-gen/pkg/stub"
)

func newGenerateCommand() *cobra.Command {
	var config GenerateConfig

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate .pyi stubs (and docs, when configured) from a record batch",
		RunE: func(_ *cobra.Command, _ []string) error {
			return Generate(&config)
		},
	}

	cmd.Flags().StringVar(&config.ConfigPath, "config", "pyproject.toml", "Path to pyproject.toml")
	cmd.Flags().StringVar(&config.RecordsPath, "records", "", "Path to the JSON record batch exported by the annotation layer")
	cmd.Flags().StringVar(&config.OutputDir, "output", "", "Stub output directory override")
	cmd.Flags().StringVar(&config.Format, "format", "json", "Doc tree format: json or yaml")
	cmd.Flags().BoolVar(&config.Verbose, "verbose", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

// GenerateConfig holds configuration for stub and doc generation.
type GenerateConfig struct {
	ConfigPath  string
	RecordsPath string
	OutputDir   string
	Format      string
	Verbose     bool
}

// Generate runs the full pipeline: load config and records, build the
// registry, write stubs, and write docs when the project configures them.
func Generate(config *GenerateConfig) error {
	logger, err := newLogger(config.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	project, err := pyproject.Load(config.ConfigPath)
	if err != nil {
		return err
	}
	batch, err := loadBatch(config.RecordsPath)
	if err != nil {
		return err
	}

	moduleName := project.ModuleName()
	reg := stub.NewRegistry(moduleName, logger)
	if err := applyBatch(reg, batch, moduleName, nil); err != nil {
		return err
	}
	if err := reg.Finalize(); err != nil {
		return err
	}

	writeCfg := stubWriteConfig(project, config)
	if err := stub.NewWriter(logger).WriteStubs(reg, writeCfg); err != nil {
		return err
	}
	color.Green("✓ wrote stubs for %d module(s) to %s", len(reg.Modules()), writeCfg.Dir)

	docCfg, ok := project.DocGen()
	if !ok {
		return nil
	}
	if err := writeDocs(reg, moduleName, docCfg, config.Format, logger); err != nil {
		return err
	}
	color.Green("✓ wrote docs to %s", docCfg.OutputDir)
	return nil
}

func stubWriteConfig(project *pyproject.PyProject, config *GenerateConfig) stub.WriteConfig {
	cfg := stub.WriteConfig{
		Dir:    ".",
		Layout: stub.FlatLayout,
		RenderConfig: stub.RenderConfig{
			UseTypeStatement: project.StubGen().UseTypeStatement,
		},
	}
	if src, mixed := project.PythonSource(); mixed {
		cfg.Dir = src
		cfg.Layout = stub.MixedLayout
	}
	if config.OutputDir != "" {
		cfg.Dir = config.OutputDir
	}
	return cfg
}

func writeDocs(reg *stub.Registry, moduleName string, docCfg pyproject.DocGenConfig, format string, logger *zap.Logger) error {
	var docFormat docgen.Format
	switch format {
	case "", "json":
		docFormat = docgen.FormatJSON
	case "yaml", "yml":
		docFormat = docgen.FormatYAML
	default:
		return errors.Newf("unsupported doc format %q", format)
	}

	// The configured tree filename assumes JSON; a yaml tree falls back
	// to the renderer's default name.
	treeFilename := docCfg.JSONOutput
	if docFormat == docgen.FormatYAML {
		treeFilename = ""
	}

	pkg := docgen.NewBuilder(reg.Modules(), moduleName, logger).Build()
	opts := docgen.RenderOptions{
		OutputDir:     docCfg.OutputDir,
		TreeFilename:  treeFilename,
		Format:        docFormat,
		SeparatePages: docCfg.SeparatePages == nil || *docCfg.SeparatePages,
		ContentsTable: docCfg.ContentsTable,
	}
	if docCfg.IndexTitle != nil {
		opts.IndexTitle = *docCfg.IndexTitle
	}
	if docCfg.IntroMessage != nil {
		opts.IntroMessage = *docCfg.IntroMessage
	}
	return docgen.NewRenderer(logger).Write(pkg, opts)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
