package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"accessor-compiler/internal/analyze"
	"accessor-compiler/internal/gen"
	"accessor-compiler/internal/mapping"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	v      *viper.Viper
	config *Config
	log    *zap.Logger
}

// configKeys are the settings that flags of the same name override.
var configKeys = []string{"bindings", "dir", "output", "package", "param", "depth", "verbose"}

// setup loads the configuration and the logger before a command runs.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		return err
	}

	a.v = newViper(configDir)

	for _, key := range configKeys {
		if f := cmd.Flags().Lookup(key); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	a.config, err = loadConfig(a.v)
	if err != nil {
		return err
	}

	a.log = newLogger(a.config.Verbose)

	return nil
}

// NewRootCommand creates the bindcheck command tree.
func NewRootCommand() *cobra.Command {
	a := &app{log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "bindcheck",
		Short: "Check and generate property bindings",
		Long: color.CyanString(`bindcheck - static checking of property bindings

bindcheck reads a bindings file listing expressions over entity types,
type-checks every expression against the entity package, reports which
bindings are editable properties and generates typed accessors for them.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config-dir", ".", "Directory holding bindcheck.yaml")
	flags.StringP("bindings", "b", "bindings.yaml", "Bindings file")
	flags.String("dir", "", "Directory package patterns are resolved in")
	flags.BoolP("verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newGenCommand(a))
	rootCmd.AddCommand(newScaffoldCommand(a))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)

		return err
	}

	return nil
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [bindings.yaml]",
		Short: "Type-check every binding",
		Long: `Validate the bindings file, type-check every expression against its
entity type and print the diagnostics. Exits non-zero when any binding is
invalid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.config.Bindings = args[0]
			}

			_, res, err := a.check(cmd)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), res)

			if res.Diagnostics.HasErrors() {
				return ErrCheckFailed
			}

			return nil
		},
	}
}

func (a *app) check(cmd *cobra.Command) (*Project, *Result, error) {
	proj, err := LoadProject(a.config, a.log)
	if err != nil {
		return nil, nil, err
	}

	res, err := proj.Check(cmd.Context())

	return proj, res, err
}

func newListCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [package]",
		Short: "List the bindable member chains of each struct",
		Long: `Print the exported member chains of every struct in the package, up to
--depth members. Without an argument the package of the bindings file is
listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			} else {
				bf, err := mapping.LoadFile(a.config.Bindings)
				if err != nil {
					return err
				}

				pattern = bf.Package
			}

			_, graph, err := loadPackages(a.config.Dir, pattern)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			for _, info := range graph.Structs() {
				titleColor.Fprintln(w, info.ID.Qualified())

				for _, p := range analyze.PropertyPaths(info, a.config.Param, a.config.Depth) {
					fmt.Fprintf(w, "  %-32s %s", p.Expr, analyze.TypeString(p.Field.Type))

					if !p.Writable {
						dimColor.Fprint(w, " (read-only)")
					}

					fmt.Fprintln(w)
				}
			}

			return nil
		},
	}

	cmd.Flags().Int("depth", 3, "Maximum number of members per chain")
	cmd.Flags().String("param", "x", "Parameter name of the listed chains")

	return cmd
}

func newGenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen [bindings.yaml]",
		Short: "Generate typed accessors for the property bindings",
		Long: `Check the bindings file and, when it has no errors, write a getter for
every property binding and a setter for every writable one to --output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.config.Bindings = args[0]
			}

			proj, res, err := a.check(cmd)
			if err != nil {
				return err
			}

			if res.Diagnostics.HasErrors() {
				printReport(cmd.OutOrStdout(), res)

				return ErrCheckFailed
			}

			cfg := gen.DefaultGeneratorConfig()
			cfg.PackageName = a.config.Package
			cfg.OutputDir = a.config.Output

			files, err := gen.NewGenerator(cfg).Generate(proj.Graph, res.Accessors)
			if err != nil {
				return err
			}

			written, err := gen.WriteFiles(files, cfg.OutputDir)
			if err != nil {
				return err
			}

			a.log.Info("accessors generated", zap.Int("files", len(files)), zap.Int("written", len(written)))

			w := cmd.OutOrStdout()
			for _, path := range written {
				successColor.Fprintf(w, "wrote %s\n", path)
			}

			if len(written) == 0 {
				dimColor.Fprintln(w, "accessors are up to date")
			}

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "./generated", "Output directory")
	cmd.Flags().String("package", "accessors", "Name of the generated package")

	return cmd
}

func newScaffoldCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold <package> [Type...]",
		Short: "Write a bindings file listing every member chain",
		Long: `Load the package and write a bindings file with the exported leaf member
chains of the named types, or of every struct in the package, as paths.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}

			if _, err := os.Stat(a.config.Bindings); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", a.config.Bindings)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			_, graph, err := loadPackages(a.config.Dir, args[0])
			if err != nil {
				return err
			}

			bf, err := scaffold(graph, args[0], args[1:], a.config.Param, a.config.Depth)
			if err != nil {
				return err
			}

			if err := mapping.WriteFile(bf, a.config.Bindings); err != nil {
				return err
			}

			successColor.Fprintf(cmd.OutOrStdout(), "wrote %s with %d entities\n", a.config.Bindings, len(bf.Entities))

			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing bindings file")
	cmd.Flags().Int("depth", 3, "Maximum number of members per chain")
	cmd.Flags().String("param", "x", "Parameter name of the bindings")

	return cmd
}

// scaffold builds a bindings file over the named types, or every struct of
// graph when names is empty.
func scaffold(graph *analyze.TypeGraph, pattern string, names []string, param string, depth int) (*mapping.BindingsFile, error) {
	var infos []*analyze.TypeInfo

	if len(names) == 0 {
		infos = graph.Structs()
	}

	for _, name := range names {
		info := mapping.ResolveTypeID(name, graph)
		if info == nil {
			return nil, fmt.Errorf("%w: %s", analyze.ErrTypeNotFound, name)
		}

		if info.Kind != analyze.TypeKindStruct {
			return nil, fmt.Errorf("%w: %s", analyze.ErrNotStruct, name)
		}

		infos = append(infos, info)
	}

	bf := &mapping.BindingsFile{Version: "1", Package: pattern, Param: param}

	for _, info := range infos {
		e := mapping.Entity{Type: info.ID.Qualified()}

		for _, p := range analyze.PropertyPaths(info, param, depth) {
			if isLeaf(p) {
				e.Paths = append(e.Paths, strings.TrimPrefix(p.Expr, param+"."))
			}
		}

		if len(e.Paths) > 0 {
			bf.Entities = append(bf.Entities, e)
		}
	}

	return bf, nil
}

// isLeaf reports whether p ends on a field that is not itself walked into.
func isLeaf(p analyze.PropertyPath) bool {
	t := p.Field.Type
	if t != nil && t.Kind == analyze.TypeKindPointer {
		t = t.ElemType
	}

	return !p.Field.Embedded && (t == nil || t.Kind != analyze.TypeKindStruct)
}
