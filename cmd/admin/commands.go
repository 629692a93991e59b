package main

import (
	"fmt"
	"os"

	"github.com/programme-lv/autograde/migrate"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			version, err := migrate.UpPool(cmd.Context(), e.pool)
			if err != nil {
				return err
			}
			hash, err := migrate.Hash()
			if err != nil {
				return err
			}
			log.Info().Int64("version", version).Str("hash", hash[:12]).Msg("schema is up to date")
			return nil
		},
	}
}

func newBecomeInstructorCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "become-instructor",
		Short: "Give a user the instructor role",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			inst, err := e.srvcs.Courses.BecomeInstructor(cmd.Context(), userID)
			if err != nil {
				return err
			}
			log.Info().Int64("user_id", userID).Int64("instructor_id", inst.ID).Msg("user is an instructor")
			return nil
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newInstallRunnerCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "install-runner",
		Short: "Store the runner script template copied into every bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read runner template: %w", err)
			}
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.srvcs.Packager.InstallRunnerTemplate(cmd.Context(), content); err != nil {
				return err
			}
			log.Info().Str("file", file).Int("bytes", len(content)).Msg("runner template installed, run rebuild-bundles to apply it")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "runner script template (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newMossSubmitCmd() *cobra.Command {
	var assignmentID int64
	cmd := &cobra.Command{
		Use:   "moss-submit",
		Short: "Check the latest submissions of an assignment for similarity",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.srvcs.Plagiarism.Submit(cmd.Context(), assignmentID)
			if err != nil {
				return err
			}
			if !res.OK {
				log.Warn().Int("staged", res.Staged).Str("reason", res.Reason).Msg("no similarity report")
				return nil
			}
			log.Info().Int("staged", res.Staged).Str("url", res.ReportURL).Str("stored_at", res.ReportKey).Msg("similarity report ready")
			return nil
		},
	}
	cmd.Flags().Int64VarP(&assignmentID, "assignment", "a", 0, "assignment id (required)")
	_ = cmd.MarkFlagRequired("assignment")
	return cmd
}
