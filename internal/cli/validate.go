package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskrank/internal/config"
	"github.com/ppiankov/taskrank/internal/reporter"
	"github.com/ppiankov/taskrank/internal/scoring"
	"github.com/ppiankov/taskrank/internal/task"
)

func newValidateCmd() *cobra.Command {
	var (
		format    string
		sarifPath string
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check task files without ranking them",
		Long: `Validate loads task files, resolves depends_on ids and reports circular
dependencies, dependencies outside the list, unparseable due dates and
non-numeric fields. Non-numeric fields make analysis fail and exit with
code 2; the other issues are warnings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv("")
			if err != nil {
				return err
			}
			format, err := e.format(cmd, format)
			if err != nil {
				return err
			}

			tf, paths, err := config.LoadAll(taskFiles(args))
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			loc, err := e.settings.Location()
			if err != nil {
				return err
			}
			issues := scoring.Check(tf.Tasks, loc)

			if sarifPath != "" {
				source := ""
				if len(paths) == 1 {
					source = paths[0]
				}
				if err := reporter.WriteSARIFReport(issues, source, sarifPath); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				if issues == nil {
					issues = []scoring.Issue{}
				}
				if err := reporter.WriteJSON(out, issues); err != nil {
					return err
				}
			} else {
				reporter.NewTextReporter(out, useColor(out, noColor)).PrintValidation(reporter.ValidationSummary{
					Sources:      paths,
					Tasks:        len(tf.Tasks),
					Dependencies: countDependencies(tf.Tasks),
					Issues:       issues,
				})
			}

			blocking := 0
			for _, is := range issues {
				if is.Blocking() {
					blocking++
				}
			}
			if blocking > 0 {
				return &InvalidTasksError{Count: blocking}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().StringVar(&sarifPath, "sarif", "", "write issues as a SARIF log to this path")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func countDependencies(tasks []task.Task) int {
	n := 0
	for _, t := range tasks {
		n += len(t.Dependencies)
	}
	return n
}
