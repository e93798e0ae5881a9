package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/mholzen/guardstack/pkg/workbench"
)

func printJSONToWriter(w io.Writer, response interface{}) {
	prettyJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		log.Fatalf("cannot format JSON: %v", err)
	}
	fmt.Fprintf(w, "%s\n", prettyJSON)
}

type runReport struct {
	Steps []workbench.Step   `json:"steps"`
	Stack workbench.Snapshot `json:"stack"`
}

func printSteps(w io.Writer, steps []workbench.Step) {
	for i, step := range steps {
		fmt.Fprintf(w, "%3d  %s\n", i+1, step)
	}
}

type drillReport struct {
	Fault     string             `json:"fault"`
	Violation string             `json:"violation"`
	Detected  bool               `json:"detected"`
	Stack     workbench.Snapshot `json:"stack"`
}

func printDrill(w io.Writer, report drillReport) {
	if report.Detected {
		fmt.Fprintf(w, "fault %s detected: %s\n", report.Fault, report.Violation)
	} else {
		fmt.Fprintf(w, "fault %s not detected under protection %s\n", report.Fault, report.Stack.Protection)
	}
}
