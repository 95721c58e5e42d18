package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/mattjoyce/dagspec/internal/config"
	"github.com/mattjoyce/dagspec/internal/log"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	// --- NOUNS ---
	case "workflow":
		return runWorkflowNoun(args)
	case "config":
		return runConfigNoun(args)
	case "history":
		return runHistoryNoun(args)

	// --- VERBS ---
	case "compile":
		if hasHelpFlag(args) {
			printCompileHelp()
			return 0
		}
		return runCompile(args)
	case "serve":
		if hasHelpFlag(args) {
			printServeHelp()
			return 0
		}
		return runServe(args)

	// --- ROOT ALIASES ---
	case "submit":
		return runWorkflowNoun(append([]string{"submit"}, args...))
	case "lint":
		return runWorkflowNoun(append([]string{"lint"}, args...))
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: dagspec version [--json]")
		return 1
	}

	info := currentVersionInfo()
	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("dagspec %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	commit := strings.TrimSpace(gitCommit)
	if commit == "" || commit == "unknown" {
		commit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if commit != "" {
		info.Commit = shortenCommit(commit)
	}

	built := strings.TrimSpace(buildDate)
	if built == "" || built == "unknown" {
		built = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalized, ok := normalizeBuildTimeUTC(built); ok {
		info.BuildTime = normalized
	}
	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}
	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// loadConfig resolves the config file, validates it and sets up logging.
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	log.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func printUsage() {
	fmt.Print(`dagspec - compile DAG authoring files into Argo Workflows

Usage:
  dagspec <noun> <action> [flags]
  dagspec <verb> [flags]

Verbs:
  compile    Compile an authoring file and print the workflow (yaml|json)
  serve      Run the HTTP compile server

Nouns:
  workflow   Submit, lint and manage workflows on the Argo Server
             Actions: submit, lint, get, wait, watch, resubmit, resume,
                      retry, stop, suspend, terminate, delete
  history    Local submission ledger
             Actions: list, show
  config     Inspect and edit configuration
             Actions: check, show, get, set

Other:
  version    Print version metadata
  help       Show this message

Configuration is read from --config, $DAGSPEC_CONFIG,
~/.config/dagspec/config.yaml or ./dagspec.yaml, first match wins.
`)
}

func printCompileHelp() {
	fmt.Println("Usage: dagspec compile -f FILE [-o yaml|json] [--fingerprint] [--config PATH]")
	fmt.Println("Compile an authoring file and print the workflow to stdout.")
}

func printServeHelp() {
	fmt.Println("Usage: dagspec serve [--listen ADDR] [--config PATH]")
	fmt.Println("Serve POST /compile and POST /lint over HTTP.")
}

// parseFlags lets flags follow positional arguments, e.g.
// "workflow get NAME -n ns".
func parseFlags(fs *flag.FlagSet, args []string) error {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
	return fs.Parse(append([]string{"--"}, positional...))
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}
