// Package cli implements the headless command interface over the
// workspace: listing, inspecting, querying and cleaning datasets without
// the TUI.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/johan-st/datadeck/internal/session"
)

// Handler routes and executes CLI commands.
type Handler struct {
	workspace *session.Store
	version   string
}

// NewHandler creates a CLI handler over a workspace store.
func NewHandler(workspace *session.Store, version string) *Handler {
	return &Handler{
		workspace: workspace,
		version:   version,
	}
}

// Run executes a single command line.
func (h *Handler) Run(args []string, out, errOut io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(out, "No command specified. Run 'help' for usage.")
		return nil
	}

	ctx := &CommandContext{
		Workspace: h.workspace,
		Args:      args[1:],
		Out:       out,
		Err:       errOut,
	}

	h.routeCommand(args[0], ctx)

	if ctx.exitCode != 0 {
		return fmt.Errorf("command failed with exit code %d", ctx.exitCode)
	}
	return nil
}

// routeCommand routes a command to its handler.
func (h *Handler) routeCommand(cmd string, ctx *CommandContext) {
	switch cmd {
	case "ls", "list":
		h.cmdList(ctx)
	case "info":
		h.cmdInfo(ctx)
	case "head":
		h.cmdHead(ctx)
	case "query":
		h.cmdQuery(ctx)
	case "clean":
		h.cmdClean(ctx)
	case "import":
		h.cmdImport(ctx)
	case "export":
		h.cmdExport(ctx)
	case "sessions":
		h.cmdSessions(ctx)
	case "help":
		h.cmdHelp(ctx)
	case "version":
		h.cmdVersion(ctx)
	default:
		fmt.Fprintf(ctx.Err, "Unknown command: %s\n", cmd)
		fmt.Fprintln(ctx.Err, "Run 'help' for usage.")
		ctx.Exit(1)
	}
}

// CommandContext provides context for command execution.
type CommandContext struct {
	Workspace *session.Store
	Args      []string
	Out       io.Writer
	Err       io.Writer
	exitCode  int
}

// Exit sets the exit code.
func (c *CommandContext) Exit(code int) {
	c.exitCode = code
}

// RequireArg ensures a positional argument is provided.
func (c *CommandContext) RequireArg(index int, name string) (string, bool) {
	args := c.GetPositionalArgs()
	if index >= len(args) {
		fmt.Fprintf(c.Err, "Missing required argument: %s\n", name)
		c.Exit(1)
		return "", false
	}
	return args[index], true
}

// GetFlag returns a flag value from args (e.g., --format=json).
func (c *CommandContext) GetFlag(name string) string {
	prefix := "--" + name + "="
	shortPrefix := "-" + name + "="
	for _, arg := range c.Args {
		if strings.HasPrefix(arg, prefix) {
			return strings.TrimPrefix(arg, prefix)
		}
		if strings.HasPrefix(arg, shortPrefix) {
			return strings.TrimPrefix(arg, shortPrefix)
		}
	}
	return ""
}

// GetFlagAll returns every value of a repeatable flag.
func (c *CommandContext) GetFlagAll(name string) []string {
	prefix := "--" + name + "="
	var out []string
	for _, arg := range c.Args {
		if strings.HasPrefix(arg, prefix) {
			out = append(out, strings.TrimPrefix(arg, prefix))
		}
	}
	return out
}

// HasFlag checks if a boolean flag is present.
func (c *CommandContext) HasFlag(name string) bool {
	flag := "--" + name
	shortFlag := "-" + name
	for _, arg := range c.Args {
		if arg == flag || arg == shortFlag {
			return true
		}
	}
	return false
}

// GetPositionalArgs returns args that are not flags.
func (c *CommandContext) GetPositionalArgs() []string {
	var result []string
	for _, arg := range c.Args {
		if !strings.HasPrefix(arg, "-") {
			result = append(result, arg)
		}
	}
	return result
}

// cmdHelp shows help information.
func (h *Handler) cmdHelp(ctx *CommandContext) {
	fmt.Fprintln(ctx.Out, `datadeck - analytics workspace for delimited data

USAGE:
  datadeck <command> [arguments] [options]

DATASET COMMANDS:
  ls, list                          List datasets in the workspace
  info <dataset>                    Show dataset summary and columns
  head <dataset>                    Show the first rows
  import <path>                     Import a file, directory or glob

QUERY COMMANDS:
  query <dataset> [options]         Filter, search and sort a dataset
    --filter="col op value [v2]"    May repeat; filters AND together
    --search=text                   Match any field, case-insensitive
    --sort=col[:asc|:desc]          Sort by column

DATA COMMANDS:
  clean <dataset> <action> [column] Apply a cleaning action
                                    (remove-nulls, deduplicate, trim, to-number)
  export <dataset>                  Write a dataset to stdout

WORKSPACE COMMANDS:
  sessions                          List analysis sessions

UTILITY COMMANDS:
  help                              Show this help
  version                           Show version

COMMON OPTIONS:
  --format=json                     Output in JSON format
  --format=csv                      Output in CSV format
  --limit=N                         Limit number of rows

EXAMPLES:
  datadeck import ./data/sales.csv
  datadeck query sales --filter="region equals west" --sort=revenue:desc
  datadeck clean sales remove-nulls email`)
}

// cmdVersion shows version information.
func (h *Handler) cmdVersion(ctx *CommandContext) {
	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, map[string]string{"version": h.version})
		return
	}
	fmt.Fprintf(ctx.Out, "datadeck %s\n", h.version)
}
