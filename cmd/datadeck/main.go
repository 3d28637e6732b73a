// datadeck is a TUI and CLI analytics workspace for delimited data.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/johan-st/datadeck/internal/analyst"
	"github.com/johan-st/datadeck/internal/cli"
	"github.com/johan-st/datadeck/internal/config"
	"github.com/johan-st/datadeck/internal/logging"
	"github.com/johan-st/datadeck/internal/session"
	"github.com/johan-st/datadeck/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	showVersion := flag.Bool("version", false, "show version information")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("datadeck %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", buildDate)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath, flag.Args())
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	// A path argument followed by a command means headless CLI mode.
	cmdArgs := cliArgs(flag.Args())

	if len(cmdArgs) > 0 {
		if err := runCLI(cfg, cmdArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}

	if err := runTUI(cfg); err != nil {
		log.Fatalf("TUI error: %v", err)
	}
}

func printUsage() {
	fmt.Println("datadeck - analytics workspace for delimited data")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  datadeck [path]                      Interactive TUI mode")
	fmt.Println("  datadeck [path] <command> [args]     CLI mode (run and exit)")
	fmt.Println("  datadeck -config <file>              Use a config file")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  datadeck sales.csv                   Open a file in the TUI")
	fmt.Println("  datadeck ./data/                     Open all data files in a directory")
	fmt.Println("  datadeck \"data/**/*.csv\"             Open files matching a glob")
	fmt.Println("  datadeck ls                          List datasets in the workspace")
	fmt.Println("  datadeck query sales --filter=\"region equals west\"")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

// commands the CLI handler understands, for telling a path argument apart
// from a command.
var cliCommands = map[string]bool{
	"ls": true, "list": true, "info": true, "head": true,
	"query": true, "clean": true, "import": true, "export": true,
	"sessions": true, "help": true, "version": true,
}

// cliArgs returns the command portion of the arguments, skipping a
// leading path argument.
func cliArgs(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	if cliCommands[args[0]] {
		return args
	}
	return args[1:]
}

// loadConfig loads the config file or builds one from the path argument.
func loadConfig(configPath string, args []string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	cfg := config.DefaultConfig()
	if len(args) > 0 && !cliCommands[args[0]] {
		cfg.Sources = []config.Source{{Path: args[0]}}
	}
	return cfg, nil
}

// runCLI runs a headless command against the workspace and exits.
func runCLI(cfg *config.Config, cmdArgs []string) error {
	workspace, err := session.NewStore(cfg.GetDataDir())
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer workspace.Close()

	handler := cli.NewHandler(workspace, version)
	return handler.Run(cmdArgs, os.Stdout, os.Stderr)
}

// runTUI runs the interactive workspace.
func runTUI(cfg *config.Config) error {
	fileLogger, err := logging.NewFileLogger(cfg.GetDataDir(), cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer fileLogger.Close()
	logger := fileLogger.Logger

	workspace, err := session.NewStore(cfg.GetDataDir())
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer workspace.Close()

	var client *analyst.Client
	if cfg.Analyst.Endpoint != "" {
		client = analyst.NewClient(cfg.Analyst.Endpoint, cfg.AnalystAPIKey(),
			analyst.WithModel(cfg.Analyst.Model))
	}

	width, height := 80, 24
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			width, height = w, h
		}
	}

	app := tui.NewApp(cfg, workspace, client, logger, width, height)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Hot-reload the config file; the TUI picks up new grid defaults.
	if cfg.Path() != "" {
		watcher, err := config.NewWatcher(cfg, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "err", err)
		} else {
			watcher.OnReload(func(*config.Config) {
				p.Send(tui.ConfigReloadedMsg{})
			})
			if err := watcher.Start(); err != nil {
				logger.Warn("failed to start config watcher", "err", err)
			} else {
				defer watcher.Stop()
			}
		}
	}

	_, err = p.Run()
	return err
}
