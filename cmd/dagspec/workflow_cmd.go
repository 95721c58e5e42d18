package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/mattjoyce/dagspec/internal/config"
	"github.com/mattjoyce/dagspec/internal/history"
	"github.com/mattjoyce/dagspec/internal/log"
	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/service"
	"github.com/mattjoyce/dagspec/internal/storage"
	"github.com/mattjoyce/dagspec/internal/tui/watch"
	"github.com/mattjoyce/dagspec/internal/workflow"
)

// waiter is implemented by services that can block until completion.
type waiter interface {
	WaitForCompletion(ctx context.Context, namespace, name string, opts service.WaitOptions) (*model.Workflow, error)
}

// newService builds the Argo Server client. Tests replace it.
var newService = func(cfg *config.Config, logger *slog.Logger) (workflow.Service, error) {
	if cfg.Server.URL == "" {
		return nil, errors.New("server.url is not configured")
	}
	return service.New(service.Config{
		BaseURL:            cfg.Server.URL,
		Token:              cfg.Server.Token,
		InsecureSkipVerify: cfg.Server.InsecureSkipVerify,
		Timeout:            cfg.Server.Timeout,
		Logger:             logger,
	})
}

// runWatchView shows the watch TUI. Tests replace it.
var runWatchView = watch.Run

func runWorkflowNoun(args []string) int {
	if len(args) < 1 {
		printWorkflowNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printWorkflowNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]
	if hasHelpFlag(actionArgs) {
		printWorkflowNounHelp(os.Stdout)
		return 0
	}

	switch action {
	case "submit":
		return runWorkflowSubmit(actionArgs)
	case "lint":
		return runWorkflowLint(actionArgs)
	case "get":
		return runWorkflowGet(actionArgs)
	case "wait":
		return runWorkflowWait(actionArgs)
	case "watch":
		return runWorkflowWatch(actionArgs)
	case "resubmit", "resume", "retry", "set", "stop", "suspend", "terminate", "delete":
		return runWorkflowAction(action, actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown workflow action: %s\n", action)
		return 1
	}
}

func printWorkflowNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: dagspec workflow <action> [flags]")
	fmt.Fprintln(w, "Actions: submit, lint, get, wait, watch, resubmit, resume, retry, set, stop, suspend, terminate, delete")
}

// session is the per-command state shared by workflow actions.
type session struct {
	cfg       *config.Config
	svc       workflow.Service
	logger    *slog.Logger
	namespace string
}

func openSession(configPath, namespace string) (*session, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := log.WithComponent("cli")
	svc, err := newService(cfg, logger)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = cfg.Defaults.Namespace
	}
	return &session{cfg: cfg, svc: svc, logger: logger, namespace: namespace}, nil
}

// byName addresses an existing workflow through the authoring object, so
// name-based calls share its transport checks.
func (s *session) byName(name string) (*workflow.Workflow, error) {
	return workflow.New(name, "", workflow.WithService(s.svc))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runWorkflowSubmit(args []string) int {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	file := fs.String("f", "", "Authoring file to submit")
	namespace := fs.String("n", "", "Namespace (default from config)")
	dryRun := fs.Bool("dry-run", false, "Ask the server to validate without persisting")
	wait := fs.Bool("wait", false, "Block until the workflow completes")
	watchFlag := fs.Bool("watch", false, "Open the watch view after submitting")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if *file == "" && fs.NArg() == 1 {
		*file = fs.Arg(0)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: dagspec workflow submit -f FILE [-n NAMESPACE] [--dry-run] [--wait|--watch]")
		return 1
	}

	s, err := openSession(*configPath, *namespace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	wf, err := compileAuthoring(s.cfg, *file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compile error: %v\n", err)
		return 1
	}
	m, err := wf.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compile error: %v\n", err)
		return 1
	}
	fp, err := workflow.Fingerprint(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if wf.Annotations == nil {
		wf.Annotations = map[string]string{}
	}
	wf.Annotations[workflow.FingerprintAnnotation] = fp
	wf.Service = s.svc

	ctx, cancel := signalContext()
	defer cancel()

	var store *history.Store
	if s.cfg.History.Enabled && !*dryRun {
		db, err := storage.OpenSQLite(ctx, s.cfg.History.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "History error: %v\n", err)
			return 1
		}
		defer db.Close()
		store = history.NewStore(db)

		prev, err := store.LatestByFingerprint(ctx, fp)
		switch {
		case err == nil:
			fmt.Fprintf(os.Stderr, "Warning: identical workflow already submitted as %s/%s at %s\n",
				prev.Namespace, prev.Name, prev.CreatedAt.Format("2006-01-02 15:04:05"))
		case !errors.Is(err, history.ErrNotFound):
			s.logger.Warn("history lookup failed", "error", err)
		}
	}

	var opts *model.CreateOptions
	if *dryRun {
		opts = &model.CreateOptions{DryRun: []string{"All"}}
	}
	// -n wins, then the document's namespace, then the configured default.
	created, err := wf.Create(ctx, *namespace, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Submit failed: %v\n", err)
		return 1
	}
	fmt.Printf("workflow/%s submitted (namespace %s, fingerprint %s)\n", created.Name, created.Namespace, shortenCommit(fp))

	var rec *history.Submission
	if store != nil {
		if _, err := workflow.Stamp(m); err != nil {
			s.logger.Warn("stamp manifest failed", "error", err)
		}
		manifest, err := json.Marshal(m)
		if err == nil {
			rec, err = store.Record(ctx, history.Submission{
				Name:         created.Name,
				GenerateName: wf.GenerateName,
				Namespace:    created.Namespace,
				Fingerprint:  fp,
				Server:       s.cfg.Server.URL,
				Phase:        string(model.PhasePending),
				Manifest:     manifest,
			})
		}
		if err != nil {
			s.logger.Warn("record submission failed", "error", err)
		}
	}

	if *dryRun || (!*wait && !*watchFlag) {
		return 0
	}

	var phase model.Phase
	if *watchFlag {
		phase, err = runWatchView(ctx, s.svc, created.Namespace, created.Name, watch.Options{Interval: s.cfg.Watch.Interval})
	} else {
		phase, err = waitFor(ctx, s, created.Namespace, created.Name)
	}
	if rec != nil && phase != "" {
		if uerr := store.UpdatePhase(context.WithoutCancel(ctx), rec.ID, string(phase)); uerr != nil {
			s.logger.Warn("update submission phase failed", "error", uerr)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return phaseExitCode(phase)
}

func runWorkflowLint(args []string) int {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	file := fs.String("f", "", "Authoring file to lint")
	namespace := fs.String("n", "", "Namespace (default from config)")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if *file == "" && fs.NArg() == 1 {
		*file = fs.Arg(0)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: dagspec workflow lint -f FILE [-n NAMESPACE]")
		return 1
	}

	s, err := openSession(*configPath, *namespace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	wf, err := compileAuthoring(s.cfg, *file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compile error: %v\n", err)
		return 1
	}
	wf.Service = s.svc

	ctx, cancel := signalContext()
	defer cancel()
	if _, err := wf.Lint(ctx, *namespace); err != nil {
		fmt.Fprintf(os.Stderr, "Lint failed: %v\n", err)
		return 1
	}
	fmt.Printf("%s: no linting errors found\n", *file)
	return 0
}

func runWorkflowGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	namespace := fs.String("n", "", "Namespace (default from config)")
	output := fs.String("o", "", "Output format: yaml or json (default: summary)")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: dagspec workflow get NAME [-n NAMESPACE] [-o yaml|json]")
		return 1
	}

	s, err := openSession(*configPath, *namespace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	wf, err := s.byName(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()
	m, err := wf.Get(ctx, s.namespace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	switch *output {
	case "":
		printWorkflowSummary(m)
	case "yaml", "json":
		data, err := renderManifest(m, *output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Render error: %v\n", err)
			return 1
		}
		os.Stdout.Write(data)
	default:
		fmt.Fprintf(os.Stderr, "Unsupported output format %q\n", *output)
		return 1
	}
	return 0
}

func printWorkflowSummary(m *model.Workflow) {
	fmt.Printf("Name:      %s\n", m.Metadata.Name)
	fmt.Printf("Namespace: %s\n", m.Metadata.Namespace)
	if m.Status == nil {
		fmt.Println("Phase:     (no status)")
		return
	}
	st := m.Status
	fmt.Printf("Phase:     %s\n", st.Phase)
	if st.Message != "" {
		fmt.Printf("Message:   %s\n", st.Message)
	}
	if st.Progress != "" {
		fmt.Printf("Progress:  %s\n", st.Progress)
	}
	if st.StartedAt != "" {
		fmt.Printf("Started:   %s\n", st.StartedAt)
	}
	if st.FinishedAt != "" {
		fmt.Printf("Finished:  %s\n", st.FinishedAt)
	}
	if len(st.Nodes) == 0 {
		return
	}

	nodes := make([]model.NodeStatus, 0, len(st.Nodes))
	for _, n := range st.Nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b model.NodeStatus) int {
		if c := strings.Compare(a.StartedAt, b.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	fmt.Println()
	fmt.Printf("%-40s %-10s %-10s\n", "NODE", "TYPE", "PHASE")
	for _, n := range nodes {
		label := n.DisplayName
		if label == "" {
			label = n.Name
		}
		fmt.Printf("%-40s %-10s %-10s\n", label, n.Type, n.Phase)
	}
}

func runWorkflowWait(args []string) int {
	fs := flag.NewFlagSet("wait", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	namespace := fs.String("n", "", "Namespace (default from config)")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: dagspec workflow wait NAME [-n NAMESPACE]")
		return 1
	}

	s, err := openSession(*configPath, *namespace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	ctx, cancel := signalContext()
	defer cancel()

	phase, err := waitFor(ctx, s, s.namespace, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("workflow/%s %s\n", fs.Arg(0), phase)
	return phaseExitCode(phase)
}

func waitFor(ctx context.Context, s *session, namespace, name string) (model.Phase, error) {
	w, ok := s.svc.(waiter)
	if !ok {
		return "", errors.New("configured service cannot wait for completion")
	}
	m, err := w.WaitForCompletion(ctx, namespace, name, service.WaitOptions{
		Interval:    s.cfg.Watch.Interval,
		MaxInterval: s.cfg.Watch.MaxInterval,
	})
	if err != nil {
		return "", err
	}
	return m.Status.Phase, nil
}

func runWorkflowWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	namespace := fs.String("n", "", "Namespace (default from config)")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: dagspec workflow watch NAME [-n NAMESPACE]")
		return 1
	}

	s, err := openSession(*configPath, *namespace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	ctx, cancel := signalContext()
	defer cancel()

	phase, err := runWatchView(ctx, s.svc, s.namespace, fs.Arg(0), watch.Options{Interval: s.cfg.Watch.Interval})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return phaseExitCode(phase)
}

// phaseExitCode maps a final phase to the process exit code; a view closed
// before completion is not a failure.
func phaseExitCode(phase model.Phase) int {
	switch phase {
	case model.PhaseFailed, model.PhaseError:
		return 1
	default:
		return 0
	}
}

func runWorkflowAction(action string, args []string) int {
	fs := flag.NewFlagSet(action, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	namespace := fs.String("n", "", "Namespace (default from config)")
	selector := fs.String("node-field-selector", "", "Restrict the action to matching nodes")
	message := fs.String("message", "", "Message recorded with stop or set")
	memoized := fs.Bool("memoized", false, "Resubmit reusing memoized results")
	restartSuccessful := fs.Bool("restart-successful", false, "Retry also re-runs successful nodes matching the selector")
	phase := fs.String("phase", "", "Node phase to set")
	outputParameters := fs.String("output-parameters", "", "Node output parameters to set (JSON)")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: dagspec workflow %s NAME [-n NAMESPACE]\n", action)
		return 1
	}
	name := fs.Arg(0)

	s, err := openSession(*configPath, *namespace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	wf, err := s.byName(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	var out *workflow.Workflow
	switch action {
	case "resubmit":
		out, err = wf.Resubmit(ctx, s.namespace, *memoized)
	case "resume":
		out, err = wf.Resume(ctx, s.namespace, *selector)
	case "retry":
		out, err = wf.Retry(ctx, s.namespace, *restartSuccessful, *selector)
	case "set":
		out, err = wf.Set(ctx, s.namespace, model.WorkflowSetRequest{
			NodeFieldSelector: *selector,
			Message:           *message,
			Phase:             *phase,
			OutputParameters:  *outputParameters,
		})
	case "stop":
		out, err = wf.Stop(ctx, s.namespace, *selector, *message)
	case "suspend":
		out, err = wf.Suspend(ctx, s.namespace)
	case "terminate":
		out, err = wf.Terminate(ctx, s.namespace)
	case "delete":
		_, err = wf.Delete(ctx, s.namespace)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if out != nil && out.Name != "" && out.Name != name {
		fmt.Printf("workflow/%s %s as workflow/%s\n", name, pastTense(action), out.Name)
		return 0
	}
	fmt.Printf("workflow/%s %s\n", name, pastTense(action))
	return 0
}

var actionPastTense = map[string]string{
	"resubmit":  "resubmitted",
	"resume":    "resumed",
	"retry":     "retried",
	"set":       "updated",
	"stop":      "stopped",
	"suspend":   "suspended",
	"terminate": "terminated",
	"delete":    "deleted",
}

func pastTense(action string) string {
	if s, ok := actionPastTense[action]; ok {
		return s
	}
	return action
}
