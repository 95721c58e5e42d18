package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mattjoyce/dagspec/internal/history"
	"github.com/mattjoyce/dagspec/internal/storage"
)

type submissionView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	GenerateName string          `json:"generate_name,omitempty"`
	Namespace    string          `json:"namespace"`
	Fingerprint  string          `json:"fingerprint"`
	Server       string          `json:"server,omitempty"`
	Phase        string          `json:"phase,omitempty"`
	CreatedAt    string          `json:"created_at"`
	Manifest     json.RawMessage `json:"manifest,omitempty"`
}

func newSubmissionView(sub history.Submission, withManifest bool) submissionView {
	v := submissionView{
		ID:           sub.ID,
		Name:         sub.Name,
		GenerateName: sub.GenerateName,
		Namespace:    sub.Namespace,
		Fingerprint:  sub.Fingerprint,
		Server:       sub.Server,
		Phase:        sub.Phase,
		CreatedAt:    sub.CreatedAt.Format(time.RFC3339),
	}
	if withManifest {
		v.Manifest = sub.Manifest
	}
	return v
}

func runHistoryNoun(args []string) int {
	if len(args) > 0 && isHelpToken(args[0]) {
		printHistoryNounHelp(os.Stdout)
		return 0
	}
	// Bare "history" and flags-only invocations list.
	if len(args) == 0 || (len(args[0]) > 0 && args[0][0] == '-') {
		return runHistoryList(args)
	}

	action := args[0]
	actionArgs := args[1:]
	switch action {
	case "list":
		return runHistoryList(actionArgs)
	case "show":
		return runHistoryShow(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown history action: %s\n", action)
		return 1
	}
}

func printHistoryNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: dagspec history <action> [flags]")
	fmt.Fprintln(w, "Actions: list, show")
}

func openHistory(ctx context.Context, configPath string) (*history.Store, func(), error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil, fmt.Errorf("history is disabled (history.enabled: false)")
	}
	db, err := storage.OpenSQLite(ctx, cfg.History.Path)
	if err != nil {
		return nil, nil, err
	}
	return history.NewStore(db), func() { _ = db.Close() }, nil
}

func runHistoryList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	limit := fs.Int("limit", 20, "Maximum number of submissions to show")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	store, closeFn, err := openHistory(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeFn()

	subs, err := store.List(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *jsonOut {
		views := make([]submissionView, 0, len(subs))
		for _, sub := range subs {
			views = append(views, newSubmissionView(sub, false))
		}
		data, _ := json.MarshalIndent(views, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	if len(subs) == 0 {
		fmt.Println("No submissions recorded.")
		return 0
	}
	fmt.Printf("%-36s  %-20s  %-32s  %-10s  %-12s  %s\n", "ID", "SUBMITTED", "WORKFLOW", "PHASE", "FINGERPRINT", "NAMESPACE")
	for _, sub := range subs {
		fmt.Printf("%-36s  %-20s  %-32s  %-10s  %-12s  %s\n",
			sub.ID,
			sub.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			sub.Name,
			sub.Phase,
			shortenCommit(sub.Fingerprint),
			sub.Namespace,
		)
	}
	return 0
}

func runHistoryShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: dagspec history show ID")
		return 1
	}

	ctx := context.Background()
	store, closeFn, err := openHistory(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeFn()

	sub, err := store.Get(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	data, _ := json.MarshalIndent(newSubmissionView(*sub, true), "", "  ")
	fmt.Println(string(data))
	return 0
}
