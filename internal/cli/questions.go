package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizlab-kr/leadbot/internal/flow"
	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/services"
	"github.com/spf13/cobra"
)

// ImportReport lists what an import did per step.
type ImportReport struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
	DryRun  bool     `json:"dry_run"`
}

func newQuestionsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Question repository operations",
	}

	var replace, dryRun bool
	importCmd := &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Insert the questions of a seed file",
		Long: `Insert every question of the seed file into the configured store.

Existing steps are skipped unless --replace is given, in which case they are
overwritten with the seed definition. Order indexes stay dense.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			questions, err := LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			if dryRun {
				report := &ImportReport{DryRun: true}
				for _, q := range questions {
					report.Created = append(report.Created, q.Step)
				}
				return writeReport(cmd, opts.Format, report)
			}
			if opts.OpenStore == nil {
				return fmt.Errorf("no question store configured")
			}

			ctx := cmd.Context()
			s, release, err := opts.OpenStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			repo := services.NewQuestionRepository(s, flow.Options{}, logging.Logger)
			report, err := ImportQuestions(ctx, repo, questions, replace)
			if err != nil {
				return err
			}
			return writeReport(cmd, opts.Format, report)
		},
	}
	importCmd.Flags().BoolVar(&replace, "replace", false, "overwrite steps that already exist")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file and list the steps without writing")

	cmd.AddCommand(importCmd)
	return cmd
}

// ImportQuestions writes questions through the repository so every invariant it enforces
// applies to seeded data too.
func ImportQuestions(ctx context.Context, repo *services.QuestionRepository, questions []models.Question, replace bool) (*ImportReport, error) {
	report := &ImportReport{}
	for _, q := range questions {
		_, err := repo.Get(ctx, q.Step)
		switch {
		case errors.Is(err, models.ErrNotFound):
			if _, err := repo.Create(ctx, q); err != nil {
				return report, fmt.Errorf("create %s: %w", q.Step, err)
			}
			report.Created = append(report.Created, q.Step)

		case err != nil:
			return report, err

		case replace:
			if _, err := repo.Update(ctx, q.Step, updateFrom(q)); err != nil {
				return report, fmt.Errorf("update %s: %w", q.Step, err)
			}
			report.Updated = append(report.Updated, q.Step)

		default:
			report.Skipped = append(report.Skipped, q.Step)
		}
	}
	return report, nil
}

// updateFrom turns a full definition into an update that overwrites every field.
func updateFrom(q models.Question) models.QuestionUpdate {
	validation := q.Validation
	if validation == nil {
		validation = &models.Validation{}
	}
	options := append([]string{}, q.Options...)
	branches := append([]models.Branch{}, q.Branches...)
	return models.QuestionUpdate{
		Type:        &q.Type,
		Question:    &q.Question,
		Placeholder: &q.Placeholder,
		Options:     &options,
		Multiple:    &q.Multiple,
		Validation:  validation,
		OrderIndex:  &q.OrderIndex,
		IsActive:    &q.IsActive,
		NextStep:    &q.NextStep,
		Role:        &q.Role,
		Branches:    &branches,
	}
}

func writeReport(cmd *cobra.Command, format string, report *ImportReport) error {
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	w := cmd.OutOrStdout()
	verb := "created"
	if report.DryRun {
		verb = "would create"
	}
	fmt.Fprintf(w, "%s: %d, updated: %d, skipped: %d\n", verb, len(report.Created), len(report.Updated), len(report.Skipped))
	for _, s := range report.Created {
		fmt.Fprintf(w, "  + %s\n", s)
	}
	for _, s := range report.Updated {
		fmt.Fprintf(w, "  ~ %s\n", s)
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "  = %s\n", s)
	}
	return nil
}
