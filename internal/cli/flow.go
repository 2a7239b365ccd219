package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bizlab-kr/leadbot/internal/flow"
	"github.com/spf13/cobra"
)

// FlowReport is the compiled flow of a seed file.
type FlowReport struct {
	Start    string                 `json:"start"`
	Steps    []flow.StepDescription `json:"steps"`
	Warnings []string               `json:"warnings,omitempty"`
}

func newFlowCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Inspect compiled flows",
	}

	var verificationNext string
	printCmd := &cobra.Command{
		Use:   "print <seed.yaml>",
		Short: "Compile a seed file and print the resulting flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			questions, err := LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			next := flow.VerificationNext(verificationNext)
			if next != flow.VerificationNextComplete && next != flow.VerificationNextFollowing {
				return fmt.Errorf("invalid --verification-next %q", verificationNext)
			}

			graph := flow.Compile(questions, flow.Options{VerificationNext: next})
			report := &FlowReport{Start: graph.Start().ID, Steps: graph.Describe(), Warnings: graph.Warnings}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return writeFlowText(cmd.OutOrStdout(), report)
		},
	}
	printCmd.Flags().StringVar(&verificationNext, "verification-next", string(flow.VerificationNextComplete),
		"where phoneVerification leads (complete|following)")

	cmd.AddCommand(printCmd)
	return cmd
}

func writeFlowText(w io.Writer, report *FlowReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tTYPE\tROLE\tNEXT")
	for _, s := range report.Steps {
		id := s.ID
		if s.Synthetic {
			id += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, s.InputType, s.Role, s.Next)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
