package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raymyers/ralph-cc/pkg/cabs"
	"github.com/raymyers/ralph-cc/pkg/ctree"
	"github.com/raymyers/ralph-cc/pkg/diag"
	"github.com/raymyers/ralph-cc/pkg/elaborate"
	"github.com/raymyers/ralph-cc/pkg/ir"
	"github.com/raymyers/ralph-cc/pkg/lexer"
	"github.com/raymyers/ralph-cc/pkg/lower"
	"github.com/raymyers/ralph-cc/pkg/parser"
	"github.com/raymyers/ralph-cc/pkg/preproc"
	"github.com/raymyers/ralph-cc/pkg/target"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Debug flags for dumping intermediate representations
var (
	dParse     bool
	dC         bool
	dTree      bool
	dIR        bool
	dPP        bool // Debug preprocessor
	targetFile string
)

// Preprocessor options
var (
	includePaths   []string
	systemPaths    []string
	defineFlags    []string
	undefineFlags  []string
	preprocessOnly bool // -E flag
	useExternalPP  bool // Use external preprocessor
)

// debugFlagInfo holds metadata for a debug flag
type debugFlagInfo struct {
	flag *bool
	desc string
}

// debugFlags maps flag names to descriptions for unimplemented warnings
// Note: dparse, dtree, dir, and dpp are handled separately as they're implemented
var debugFlags = map[string]debugFlagInfo{
	"dc": {&dC, "dump CompCert C"},
}

// ErrNotImplemented indicates a feature is not yet implemented
var ErrNotImplemented = errors.New("not yet implemented")

// checkDebugFlags checks if any unimplemented debug flags are set and returns an error
func checkDebugFlags(w io.Writer) error {
	for name, info := range debugFlags {
		if *info.flag {
			fmt.Fprintf(w, "ralph-cc: warning: -%s (%s) is not yet implemented\n", name, info.desc)
			return ErrNotImplemented
		}
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Normalize CompCert-style single-dash flags to double-dash for pflag compatibility
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists all debug flags that should accept single-dash style (CompCert compatibility)
var debugFlagNames = []string{"dparse", "dc", "dtree", "dir", "dpp"}

// normalizeFlags converts CompCert-style single-dash flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		// Check if it's a single-dash debug flag (e.g., -dparse)
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ralph-cc [file]",
		Short: "ralph-cc is a C compiler frontend for testing compilation passes",
		Long: `ralph-cc is a C compiler frontend CLI optimized for testing
compilation passes rather than practical use. It follows the
CompCert design with the goal of equivalent output on each IR.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check unimplemented debug flags first
			if err := checkDebugFlags(errOut); err != nil {
				return err
			}

			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			filename := args[0]

			// Handle -E: preprocess only
			if preprocessOnly {
				return doPreprocessOnly(filename, out, errOut)
			}

			// Handle -dpp: debug preprocessor output
			if dPP {
				return doPreprocessDebug(filename, out, errOut)
			}

			// Handle -dparse: parse and dump the AST
			if dParse {
				return doParse(filename, out, errOut)
			}

			// Handle -dtree: elaborate to the typed ctree and dump it
			if dTree {
				return doTree(filename, out, errOut)
			}

			// Handle -dir: lower to IR and dump it
			if dIR {
				return doIR(filename, out, errOut)
			}

			fmt.Fprintf(errOut, "ralph-cc: compiling %s\n", filename)
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	// Add debug flags
	rootCmd.Flags().BoolVarP(&dParse, "dparse", "", false, "Dump after parsing")
	rootCmd.Flags().BoolVarP(&dC, "dc", "", false, "Dump CompCert C")
	rootCmd.Flags().BoolVarP(&dTree, "dtree", "", false, "Dump the elaborated typed tree")
	rootCmd.Flags().BoolVarP(&dIR, "dir", "", false, "Dump the lowered IR")
	rootCmd.Flags().BoolVarP(&dPP, "dpp", "", false, "Debug preprocessor operation")
	rootCmd.Flags().StringVar(&targetFile, "target", "", "Load a target spec from a YAML file (defaults to the built-in LP64 layout)")

	// Add preprocessor flags
	rootCmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "Add directory to include search path")
	rootCmd.Flags().StringArrayVar(&systemPaths, "isystem", nil, "Add directory to system include search path")
	rootCmd.Flags().StringArrayVarP(&defineFlags, "define", "D", nil, "Define macro (NAME or NAME=VALUE)")
	rootCmd.Flags().StringArrayVarP(&undefineFlags, "undefine", "U", nil, "Undefine macro")
	rootCmd.Flags().BoolVarP(&preprocessOnly, "preprocess", "E", false, "Preprocess only, output to stdout")
	rootCmd.Flags().BoolVar(&useExternalPP, "external-cpp", false, "Use external C preprocessor instead of internal")

	return rootCmd
}

// buildPreprocessorOptions creates preproc.Options from CLI flags
func buildPreprocessorOptions() *preproc.Options {
	opts := &preproc.Options{
		IncludePaths: includePaths,
		SystemPaths:  systemPaths,
		Defines:      make(map[string]string),
		Undefines:    undefineFlags,
		UseExternal:  useExternalPP,
	}

	// Parse -D flags (NAME or NAME=VALUE)
	for _, d := range defineFlags {
		if idx := strings.Index(d, "="); idx >= 0 {
			opts.Defines[d[:idx]] = d[idx+1:]
		} else {
			opts.Defines[d] = ""
		}
	}

	return opts
}

// readAndPreprocess reads a C file and optionally preprocesses it.
// It uses our internal preprocessor for .c files to handle #include directives.
// Files with .i or .p extensions are assumed already preprocessed.
func readAndPreprocess(filename string, errOut io.Writer) (string, error) {
	if preproc.NeedsPreprocessing(filename) {
		opts := buildPreprocessorOptions()
		content, err := preproc.Preprocess(filename, opts)
		if err != nil {
			diag.Report(errOut, "preprocessing error: %v", err)
			return "", err
		}
		return content, nil
	}

	// File doesn't need preprocessing, read directly
	content, err := os.ReadFile(filename)
	if err != nil {
		diag.Report(errOut, "error reading %s: %v", filename, err)
		return "", err
	}
	return string(content), nil
}

// doPreprocessOnly preprocesses and outputs to stdout (-E flag)
func doPreprocessOnly(filename string, out, errOut io.Writer) error {
	opts := buildPreprocessorOptions()
	opts.LineMarkers = true // Include line markers like traditional cpp

	content, err := preproc.Preprocess(filename, opts)
	if err != nil {
		diag.Report(errOut, "preprocessing error: %v", err)
		return err
	}

	fmt.Fprint(out, content)
	return nil
}

// doPreprocessDebug preprocesses with debug info and outputs to .i file (-dpp flag)
func doPreprocessDebug(filename string, out, errOut io.Writer) error {
	opts := buildPreprocessorOptions()
	opts.LineMarkers = true

	content, err := preproc.Preprocess(filename, opts)
	if err != nil {
		diag.Report(errOut, "preprocessing error: %v", err)
		return err
	}

	// Compute output filename: input.c -> input.i
	outputFilename := preprocessedOutputFilename(filename)

	// Create output file
	outFile, err := os.Create(outputFilename)
	if err != nil {
		diag.Report(errOut, "error creating %s: %v", outputFilename, err)
		return err
	}
	defer outFile.Close()

	// Write to file
	outFile.WriteString(content)

	// Also print to stdout
	fmt.Fprint(out, content)

	return nil
}

// preprocessedOutputFilename returns the output filename for -dpp
func preprocessedOutputFilename(filename string) string {
	ext := ".c"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".i"
	}
	return filename + ".i"
}

// parseFile preprocesses and parses a C file, returning the AST
func parseFile(filename string, errOut io.Writer) (*cabs.Program, error) {
	content, err := readAndPreprocess(filename, errOut)
	if err != nil {
		return nil, err
	}

	l := lexer.New(content)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			fmt.Fprintf(errOut, "%s: %s\n", filename, e)
		}
		return nil, fmt.Errorf("parsing failed with %d errors", len(p.Errors()))
	}
	return program, nil
}

// doParse parses the file and writes the AST to a .parsed.c file (matching CompCert behavior)
func doParse(filename string, out, errOut io.Writer) error {
	program, err := parseFile(filename, errOut)
	if err != nil {
		return err
	}

	// Compute output filename: input.c -> input.parsed.c
	outputFilename := parsedOutputFilename(filename)

	// Create output file
	outFile, err := os.Create(outputFilename)
	if err != nil {
		diag.Report(errOut, "error creating %s: %v", outputFilename, err)
		return err
	}
	defer outFile.Close()

	// Print the AST to the file
	printer := cabs.NewPrinter(outFile)
	printer.PrintProgram(program)

	// Also print to stdout for convenience
	printer = cabs.NewPrinter(out)
	printer.PrintProgram(program)

	return nil
}

// parsedOutputFilename returns the output filename for -dparse
// input.c -> input.parsed.c (matching CompCert convention)
func parsedOutputFilename(filename string) string {
	ext := ".c"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".parsed.c"
	}
	return filename + ".parsed.c"
}

// loadTarget resolves the --target flag to a layout spec, falling back to
// the built-in LP64 default when none was given.
func loadTarget(targetFile string) (*target.Spec, error) {
	if targetFile == "" {
		return target.Default(), nil
	}
	return target.Load(targetFile)
}

// doTree parses, elaborates to the typed ctree, and writes the result to
// an .elaborated.c file, mirroring doParse's dump-and-echo convention.
func doTree(filename string, out, errOut io.Writer) error {
	program, err := parseFile(filename, errOut)
	if err != nil {
		return err
	}
	tg, err := loadTarget(targetFile)
	if err != nil {
		diag.Report(errOut, "error loading target: %v", err)
		return err
	}

	tree := elaborate.Elaborate(program, tg)

	outputFilename := treeOutputFilename(filename)
	outFile, err := os.Create(outputFilename)
	if err != nil {
		diag.Report(errOut, "error creating %s: %v", outputFilename, err)
		return err
	}
	defer outFile.Close()

	printer := ctree.NewPrinter(outFile)
	printer.PrintProgram(tree)

	printer = ctree.NewPrinter(out)
	printer.PrintProgram(tree)

	return nil
}

// treeOutputFilename returns the output filename for -dtree
func treeOutputFilename(filename string) string {
	ext := ".c"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".elaborated.c"
	}
	return filename + ".elaborated.c"
}

// doIR parses, elaborates, lowers to the flat IR, and writes the result to
// an .ir file.
func doIR(filename string, out, errOut io.Writer) error {
	program, err := parseFile(filename, errOut)
	if err != nil {
		return err
	}
	tg, err := loadTarget(targetFile)
	if err != nil {
		diag.Report(errOut, "error loading target: %v", err)
		return err
	}

	tree := elaborate.Elaborate(program, tg)
	module, err := lower.LowerProgram(tree, tg)
	if err != nil {
		diag.Report(errOut, "lowering error: %v", err)
		return err
	}

	outputFilename := irOutputFilename(filename)
	outFile, err := os.Create(outputFilename)
	if err != nil {
		diag.Report(errOut, "error creating %s: %v", outputFilename, err)
		return err
	}
	defer outFile.Close()

	printer := ir.NewPrinter(outFile)
	printer.PrintModule(module)

	printer = ir.NewPrinter(out)
	printer.PrintModule(module)

	return nil
}

// irOutputFilename returns the output filename for -dir
func irOutputFilename(filename string) string {
	ext := ".c"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".ir"
	}
	return filename + ".ir"
}
