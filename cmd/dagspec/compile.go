package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mattjoyce/dagspec/internal/authoring"
	"github.com/mattjoyce/dagspec/internal/config"
	"github.com/mattjoyce/dagspec/internal/log"
	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/workflow"
)

func runCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	file := fs.String("f", "", "Authoring file to compile")
	output := fs.String("o", "yaml", "Output format: yaml or json")
	fingerprint := fs.Bool("fingerprint", false, "Print only the manifest fingerprint")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if *file == "" && fs.NArg() == 1 {
		*file = fs.Arg(0)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: dagspec compile -f FILE [-o yaml|json] [--fingerprint]")
		return 1
	}
	if *output != "yaml" && *output != "json" {
		fmt.Fprintf(os.Stderr, "Unsupported output format %q (want yaml or json)\n", *output)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	m, fp, err := compileManifest(cfg, *file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compile error: %v\n", err)
		return 1
	}
	if *fingerprint {
		fmt.Println(fp)
		return 0
	}

	data, err := renderManifest(m, *output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render error: %v\n", err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}

// compileAuthoring compiles file with the configured defaults.
func compileAuthoring(cfg *config.Config, file string) (*workflow.Workflow, error) {
	return authoring.CompileFile(file, authoring.Options{
		Defaults: cfg.WorkflowDefaults(),
		Logger:   log.WithComponent("compiler"),
	})
}

// compileManifest compiles file into a stamped engine workflow.
func compileManifest(cfg *config.Config, file string) (*model.Workflow, string, error) {
	wf, err := compileAuthoring(cfg, file)
	if err != nil {
		return nil, "", err
	}
	m, err := wf.Build()
	if err != nil {
		return nil, "", err
	}
	fp, err := workflow.Stamp(m)
	if err != nil {
		return nil, "", err
	}
	return m, fp, nil
}

func renderManifest(m *model.Workflow, format string) ([]byte, error) {
	if format == "json" {
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return workflow.EncodeYAML(m)
}
