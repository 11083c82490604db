package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tordrt/schemaexport"
	"github.com/tordrt/schemaexport/internal/config"
	"github.com/tordrt/schemaexport/internal/logging"
	"github.com/tordrt/schemaexport/internal/schema"
)

var errCheckFailed = errors.New("schema check failed")

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// cli holds the persistent flags and the state prepared before each command
type cli struct {
	verbose    bool
	configPath string
	schemaName string
	tables     string
	exclude    string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "schemaexport",
		Short: "Validate and export object schemas",
		Long: `schemaexport reads an object schema from a database (PostgreSQL, MySQL, SQLite, Neo4j),
a class declaration file or directory, or a previously exported document. It validates every
class and property, resolves links and their reverse links, and exports the result as a
versioned JSON or YAML document, documentation, or model class sources.

The source is the first argument or the "source" key of .schemaexport.yaml.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&c.configPath, "config", "", "Config file (default: nearest .schemaexport.yaml)")
	pf.StringVarP(&c.schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL)")
	pf.StringVarP(&c.tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	pf.StringVar(&c.exclude, "exclude", "", "Tables to exclude (comma-separated, optional)")

	root.AddCommand(c.exportCmd(), c.docsCmd(), c.generateCmd(), c.checkCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c.logger = logger

	if c.configPath != "" {
		cfg, err := config.LoadConfigFile(c.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.ApplyEnv(os.Getenv)
		c.cfg = cfg
		return nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// options merges config values with the flags given on the command line
func (c *cli) options(cmd *cobra.Command) *schemaexport.Options {
	opts := &schemaexport.Options{
		Tables:        c.cfg.Tables,
		ExcludeTables: c.cfg.Exclude,
		SchemaName:    c.cfg.Schema,
		Neo4jUsername: c.cfg.Neo4j.Username,
		Neo4jPassword: c.cfg.Neo4j.Password,
		Neo4jDatabase: c.cfg.Neo4j.Database,
		Logger:        c.logger,
	}

	flags := cmd.Flags()
	if flags.Changed("schema") {
		opts.SchemaName = c.schemaName
	}
	if flags.Changed("tables") {
		opts.Tables = parseTableList(c.tables)
	}
	if flags.Changed("exclude") {
		opts.ExcludeTables = parseTableList(c.exclude)
	}
	return opts
}

func (c *cli) source(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if c.cfg.Source != "" {
		return c.cfg.Source, nil
	}
	return "", fmt.Errorf("no source given (pass it as an argument, set %s, or add source to .schemaexport.yaml)", config.EnvSource)
}

func (c *cli) load(cmd *cobra.Command, args []string) (*schema.Document, string, error) {
	source, err := c.source(args)
	if err != nil {
		return nil, "", err
	}
	doc, err := schemaexport.LoadSchema(cmd.Context(), source, c.options(cmd))
	if err != nil {
		return nil, source, err
	}
	return doc, source, nil
}

func (c *cli) exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export [source]",
		Short: "Write the schema as a versioned JSON or YAML document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") && c.cfg.Format != "" {
				format = c.cfg.Format
			}
			if !cmd.Flags().Changed("output") && c.cfg.Output != "" {
				output = c.cfg.Output
			}

			doc, _, err := c.load(cmd, args)
			if err != nil {
				return err
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				return schemaexport.Export(doc, format, w)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func (c *cli) docsCmd() *cobra.Command {
	var format, output, outputDir string

	cmd := &cobra.Command{
		Use:   "docs [source]",
		Short: "Write schema documentation as markdown or text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir != "" && output != "" {
				return fmt.Errorf("cannot use both --output-dir and --output flags")
			}
			if !cmd.Flags().Changed("output-dir") && output == "" {
				outputDir = c.cfg.OutputDir
			}

			doc, _, err := c.load(cmd, args)
			if err != nil {
				return err
			}

			if outputDir != "" {
				if err := schemaexport.FormatDocs(doc, &schemaexport.OutputOptions{OutputDir: outputDir, Format: format}); err != nil {
					return fmt.Errorf("failed to format output: %w", err)
				}
				return nil
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				if err := schemaexport.FormatDocs(doc, &schemaexport.OutputOptions{Writer: w, Format: format}); err != nil {
					return fmt.Errorf("failed to format output: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: markdown or text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	return cmd
}

func (c *cli) generateCmd() *cobra.Command {
	var (
		langs     []string
		outputDir string
		name      string
	)

	cmd := &cobra.Command{
		Use:   "generate [source]",
		Short: "Generate model class sources",
		Long: `Generate model class sources for one or more languages:
javascript, typescript, swift, kotlin, java, csharp.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(langs) == 0 {
				langs = c.cfg.Languages
			}
			if len(langs) == 0 {
				return fmt.Errorf("no language given (use --lang or add languages to .schemaexport.yaml)")
			}
			if !cmd.Flags().Changed("output-dir") && c.cfg.OutputDir != "" {
				outputDir = c.cfg.OutputDir
			}

			doc, source, err := c.load(cmd, args)
			if err != nil {
				return err
			}
			if name == "" {
				name = schemaexport.SourceName(source)
			}

			for _, lang := range langs {
				paths, err := schemaexport.Generate(doc, lang, name, outputDir)
				if err != nil {
					return fmt.Errorf("failed to generate %s: %w", lang, err)
				}
				c.logger.Debug("generated sources", zap.String("lang", lang), zap.Int("files", len(paths)))
				for _, p := range paths {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "Target language (repeatable or comma-separated)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", ".", "Output directory")
	cmd.Flags().StringVar(&name, "name", "", "Base name of single-file outputs (default: derived from the source)")
	return cmd
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [source...]",
		Short: "Validate schemas and list every problem found",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := args
			if len(sources) == 0 {
				src, err := c.source(nil)
				if err != nil {
					return err
				}
				sources = []string{src}
			}

			opts := c.options(cmd)
			styled := logging.IsTerminal(cmd.OutOrStdout())

			failed := false
			for _, src := range sources {
				doc, err := schemaexport.LoadSchema(cmd.Context(), src, opts)
				if !renderReport(cmd.OutOrStdout(), src, doc, err, styled) {
					failed = true
				}
			}
			if failed {
				return errCheckFailed
			}
			return nil
		},
	}
}

// renderReport writes the check result of one source and reports whether it passed
func renderReport(w io.Writer, source string, doc *schema.Document, err error, styled bool) bool {
	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	if err == nil {
		_, _ = fmt.Fprintf(w, "%s %s: %d classes, %d links\n",
			render(okStyle, "✓"), source, len(doc.Classes), len(doc.Edges))
		return true
	}

	verrs, ok := schema.AsValidationErrors(err)
	if !ok {
		_, _ = fmt.Fprintf(w, "%s %s: %v\n", render(failStyle, "✗"), source, err)
		return false
	}

	problems := "problems"
	if len(verrs.Errors) == 1 {
		problems = "problem"
	}
	_, _ = fmt.Fprintf(w, "%s %s: %d %s\n", render(failStyle, "✗"), source, len(verrs.Errors), problems)
	for _, e := range verrs.Errors {
		_, _ = fmt.Fprintf(w, "    %s\n", render(detailStyle, e.Error()))
	}
	return false
}

// withOutput runs write against the named file, or stdout when output is empty
func withOutput(cmd *cobra.Command, output string, write func(io.Writer) error) error {
	if output == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to close output file: %v\n", err)
		}
	}()
	return write(f)
}

// parseTableList splits a comma-separated list, trimming spaces
func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	list := strings.Split(s, ",")
	for i, t := range list {
		list[i] = strings.TrimSpace(t)
	}
	return list
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
