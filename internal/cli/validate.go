package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soochol/workbench/internal/designer"
)

// NewValidateCommand checks a process file against the structural invariants
// and reports the configuration errors of every step.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <process.json|process.yaml>",
		Short: "Validate a process definition file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			d, _, err := newDesigner(cfg)
			if err != nil {
				return err
			}
			report, err := validateFile(cmd, d, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd, report)
			if !report.Valid {
				return fmt.Errorf("%s: %d step(s) with configuration errors", args[0], len(report.Steps))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// Report is the result of validating a process file.
type Report struct {
	Valid bool         `json:"valid"`
	Name  string       `json:"name"`
	Steps []StepReport `json:"steps,omitempty"`
}

type StepReport struct {
	Key    int               `json:"key"`
	Name   string            `json:"name"`
	Errors map[string]string `json:"errors"`
}

func validateFile(cmd *cobra.Command, d *designer.Designer, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state *designer.State
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		state, err = designer.DecodeYAML(data)
	default:
		state, err = designer.DecodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	session := designer.NewSession(d, state, designer.SessionOptions{})
	session.Start(cmd.Context())
	defer session.Close()
	state, err = session.ValidateAll(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	report := &Report{Valid: true, Name: state.Name}
	for _, st := range state.Steps {
		if len(st.Errors) == 0 {
			continue
		}
		report.Valid = false
		report.Steps = append(report.Steps, StepReport{Key: int(st.Key), Name: st.Name, Errors: st.Errors})
	}
	return report, nil
}

func printReport(cmd *cobra.Command, r *Report) {
	out := cmd.OutOrStdout()
	if r.Valid {
		fmt.Fprintf(out, "%q is valid\n", r.Name)
		return
	}
	for _, st := range r.Steps {
		fmt.Fprintf(out, "step %d (%s):\n", st.Key, st.Name)
		fields := make([]string, 0, len(st.Errors))
		for f := range st.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(out, "  %s: %s\n", f, st.Errors[f])
		}
	}
}
