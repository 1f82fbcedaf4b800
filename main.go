// Command gsn is a thin harness over the analysis and layout engines: it
// reads an argument diagram snapshot as JSON, runs the structural
// validator or the auto-layout, and writes the result back out. It is the
// same in-process contract the interactive editor uses; there is no
// persistence and no transport here.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gsn/diagram"
	"gsn/layout"
	"gsn/validation"
)

var (
	outputFormat string
	profilePath  string
)

var rootCmd = &cobra.Command{
	Use:   "gsn",
	Short: "Structural analysis and auto-layout for GSN argument diagrams",
	Long: `gsn analyses Goal Structuring Notation argument diagrams.

A diagram snapshot is a JSON document with "elements" and "relations"
lists. The check command reports structural diagnostics; the arrange
command recomputes every element's size and position.`,
	SilenceUsage: true,
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Report structural diagnostics for a diagram snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := readSnapshot(args)
		if err != nil {
			return err
		}
		result := validation.NewValidator().Validate(d.Elements, d.Relations)
		if err := emit(result); err != nil {
			return err
		}
		if !result.IsValid {
			os.Exit(1)
		}
		return nil
	},
}

var arrangeCmd = &cobra.Command{
	Use:   "arrange [file]",
	Short: "Recompute element sizes and positions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := readSnapshot(args)
		if err != nil {
			return err
		}
		engine := layout.NewEngine()
		if profilePath != "" {
			cfg, err := layout.LoadConfig(profilePath)
			if err != nil {
				return err
			}
			engine = layout.NewEngineWithConfig(cfg)
		}
		d.Elements = engine.AutoLayout(d.Elements, d.Relations, nil)
		return emit(d)
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Print a small example diagram snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return emit(demoDiagram())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "json", "Output format (json|yaml)")
	arrangeCmd.Flags().StringVar(&profilePath, "profile", "", "Path to a YAML layout profile")
	rootCmd.AddCommand(checkCmd, arrangeCmd, demoCmd)
}

// readSnapshot loads a diagram from the named file, or stdin when no
// argument (or "-") is given.
func readSnapshot(args []string) (*diagram.Diagram, error) {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var d diagram.Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &d, nil
}

func emit(v interface{}) error {
	switch outputFormat {
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}

// demoDiagram builds the usual first GSN example: a root goal argued
// over two sub-goals with context, evidence and an undeveloped leg.
func demoDiagram() *diagram.Diagram {
	ids := make(map[string]string)
	el := func(key string, kind diagram.Kind, content string) diagram.Element {
		id := diagram.NewID()
		ids[key] = id
		return diagram.Element{ID: id, Kind: kind, Content: content}
	}
	rel := func(src, tgt string, kind diagram.RelationKind) diagram.Relation {
		return diagram.Relation{ID: diagram.NewID(), Source: ids[src], Target: ids[tgt], Kind: kind}
	}
	d := &diagram.Diagram{}
	d.Elements = []diagram.Element{
		el("g1", diagram.KindGoal, "The control system is acceptably safe to operate"),
		el("c1", diagram.KindContext, "Operating role and context defined"),
		el("s1", diagram.KindStrategy, "Argument over each identified hazard"),
		el("g2", diagram.KindGoal, "Hazard H1 has been eliminated"),
		el("g3", diagram.KindGoal, "Hazard H2 occurrence rate is below target"),
		el("e1", diagram.KindEvidence, "Formal verification report"),
		el("u1", diagram.KindUndeveloped, ""),
		el("j1", diagram.KindJustification, "Hazard list is complete per HAZOP"),
	}
	d.Relations = []diagram.Relation{
		rel("g1", "c1", diagram.InContextOf),
		rel("g1", "s1", diagram.SupportedBy),
		rel("s1", "j1", diagram.InContextOf),
		rel("s1", "g2", diagram.SupportedBy),
		rel("s1", "g3", diagram.SupportedBy),
		rel("g2", "e1", diagram.SupportedBy),
		rel("g3", "u1", diagram.SupportedBy),
	}
	return d
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
