package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/catalogimport"
	"github.com/simon-dunk/Degree-Compass/internal/cliview"
	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/migrations"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the document tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := migrations.Applied(cmd.Context(), db)
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
			}
			return nil
		},
	}
}

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog, degree rules and students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, closeStore, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			result, err := application.DevTools.GenerateMassData(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message())
			return nil
		},
	}
}

func newImportCatalogCmd(c *cli) *cobra.Command {
	var file, url string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "import-catalog",
		Short: "Import courses from an HTML catalog page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (url == "") {
				return fmt.Errorf("exactly one of --file or --url is required")
			}

			var result catalogimport.Result
			var err error
			if file != "" {
				f, openErr := os.Open(file)
				if openErr != nil {
					return openErr
				}
				defer f.Close()
				result, err = catalogimport.Parse(f)
			} else {
				result, err = catalogimport.Fetch(cmd.Context(), &http.Client{Timeout: timeout}, url)
			}
			if err != nil {
				return err
			}
			if result.Skipped > 0 {
				c.logger.Warn("catalog blocks skipped", zap.Int("count", result.Skipped))
			}
			if len(result.Courses) == 0 {
				return fmt.Errorf("no courses found in catalog")
			}

			application, closeStore, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			count, err := application.Catalog.UpsertCourses(cmd.Context(), result.Courses)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d courses (%d skipped)\n", count, result.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog HTML file")
	cmd.Flags().StringVar(&url, "url", "", "catalog page URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "download timeout for --url")
	return cmd
}

func newAuditCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "audit <studentId>",
		Short: "Print a degree audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, closeStore, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			report, err := application.Audit.RunAudit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cliview.RenderAudit(cmd.OutOrStdout(), report)
		},
	}
}

func newPlanCmd(c *cli) *cobra.Command {
	var semesters int
	var pins []string

	cmd := &cobra.Command{
		Use:   "plan <studentId>",
		Short: "Print a semester-by-semester degree plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pinned, err := parsePins(pins)
			if err != nil {
				return err
			}

			application, closeStore, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			plan, err := application.Planner.GenerateDegreePlan(cmd.Context(), args[0], pinned, semesters)
			if err != nil {
				return err
			}
			return cliview.RenderPlan(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().IntVar(&semesters, "semesters", 0, "number of semesters to plan (0 uses the configured default)")
	cmd.Flags().StringArrayVar(&pins, "pin", nil, "course to schedule first, as SUBJ:NUM (repeatable)")
	return cmd
}

func parsePins(values []string) ([]domain.CourseRef, error) {
	refs := make([]domain.CourseRef, 0, len(values))
	for _, value := range values {
		ref, err := domain.ParseCourseRef(value)
		if err != nil {
			return nil, fmt.Errorf("--pin: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
