package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/prompy/prompy/internal/engine"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Run dispatches args[0] as a subcommand ("render", "list", or "move") to
// the engine, writing output to outW. It is deliberately thin: no
// subcommand framework, just a flag.FlagSet per subcommand.
func Run(ctx context.Context, args []string, outW io.Writer) error {
	if len(args) == 0 {
		printUsage(outW)
		return nil
	}

	switch args[0] {
	case "render":
		return runRender(ctx, args[1:], outW)
	case "list":
		return runList(ctx, args[1:], outW)
	case "move":
		return runMove(ctx, args[1:], outW)
	case "help", "-h", "--help":
		printUsage(outW)
		return nil
	default:
		return &ExitError{Code: 2, Message: fmt.Sprintf("unknown subcommand %q", args[0])}
	}
}

func printUsage(outW io.Writer) {
	fmt.Fprint(outW, `
Prompy - fragment composition engine.

Usage:
  prompy render [--arg name=value ...] [--project NAME] [--language NAME] <slug>
  prompy list [--category NAME] [--prefix SLUG_PREFIX]
  prompy move <old-slug> <new-slug>
`)
}

func newEngine(project, language, logLevel, logFormat string, outW io.Writer) (*engine.Engine, error) {
	return engine.New(outW, engine.Options{
		Project:   project,
		Language:  language,
		StartDir:  ".",
		LogLevel:  logLevel,
		LogFormat: logFormat,
	})
}

type argFlags map[string]string

func (a argFlags) String() string { return fmt.Sprintf("%v", map[string]string(a)) }

func (a argFlags) Set(value string) error {
	eq := strings.Index(value, "=")
	if eq == -1 {
		return fmt.Errorf("expected name=value, got %q", value)
	}
	a[value[:eq]] = value[eq+1:]
	return nil
}

func runRender(ctx context.Context, args []string, outW io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(outW)
	project := fs.String("project", "", "Project name for the project/ slug sigil.")
	language := fs.String("language", "", "Language name for the language/ and environment/ slug sigils.")
	logLevel := fs.String("log-level", "warn", "Logging level: debug, info, warn, error.")
	argValues := make(argFlags)
	fs.Var(argValues, "arg", "A name=value pair bound as a top-level render argument; may be repeated.")

	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() != 1 {
		return &ExitError{Code: 2, Message: "render requires exactly one slug argument"}
	}

	e, err := newEngine(*project, *language, *logLevel, "text", outW)
	if err != nil {
		return err
	}

	rendered, err := e.Render(ctx, fs.Arg(0), argValues)
	if err != nil {
		return err
	}
	fmt.Fprintln(outW, rendered)
	return nil
}

func runList(ctx context.Context, args []string, outW io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(outW)
	project := fs.String("project", "", "Project name for the project/ slug sigil.")
	language := fs.String("language", "", "Language name for the language/ and environment/ slug sigils.")
	category := fs.String("category", "", "Restrict to fragments declaring this category.")
	prefix := fs.String("prefix", "", "Restrict to slugs with this prefix.")
	logLevel := fs.String("log-level", "warn", "Logging level: debug, info, warn, error.")

	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	e, err := newEngine(*project, *language, *logLevel, "text", outW)
	if err != nil {
		return err
	}

	entries, err := e.ListFragments(ctx, *category, *prefix)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Fprintf(outW, "%s\t%s\n", entry.Slug, entry.Description)
	}
	return nil
}

func runMove(ctx context.Context, args []string, outW io.Writer) error {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(outW)
	logLevel := fs.String("log-level", "warn", "Logging level: debug, info, warn, error.")

	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() != 2 {
		return &ExitError{Code: 2, Message: "move requires exactly two arguments: <old-slug> <new-slug>"}
	}

	e, err := newEngine("", "", *logLevel, "text", outW)
	if err != nil {
		return err
	}

	result, err := e.MoveFragment(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	fmt.Fprintf(outW, "renamed file: %v, updated %d referencing file(s)\n", result.RenamedFile, len(result.UpdatedFiles))
	return nil
}
