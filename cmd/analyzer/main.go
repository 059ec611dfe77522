package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Defantinis/flowlens/internal/analysis"
	"github.com/Defantinis/flowlens/internal/workflow"
)

type report struct {
	File     string            `json:"file"`
	Workflow string            `json:"workflow"`
	Active   bool              `json:"active"`
	Metadata analysis.Metadata `json:"metadata"`
	Warnings []string          `json:"warnings,omitempty"`
}

func analyzeFile(analyzer *analysis.Analyzer, path string, asJSON bool) error {
	wf, err := workflow.Load(path)
	if err != nil {
		return err
	}

	g, err := workflow.NewGraph(wf)
	if err != nil {
		return err
	}

	var warnings []string
	for _, refErr := range g.CheckReferences() {
		warnings = append(warnings, refErr.Error())
	}

	md := analyzer.Analyze(g)

	if asJSON {
		out := report{
			File:     path,
			Workflow: wf.Name,
			Active:   wf.Active,
			Metadata: md,
			Warnings: warnings,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(analysis.Summary(wf.Name, wf.Active, md))
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return nil
}

func main() {
	asJSON := flag.Bool("json", false, "print the analysis as JSON instead of a text summary")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyzer [-json] workflow.json [workflow.json ...]")
		os.Exit(2)
	}

	analyzer := analysis.NewAnalyzer(nil)
	failed := false
	for _, path := range files {
		if err := analyzeFile(analyzer, path, *asJSON); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
