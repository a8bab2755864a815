package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hireline/internal/api"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply JOB_ID",
		Short: "Submit an application to a job as the acting candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.requireActor(); err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			app, err := client.Apply(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Application %s submitted at stage %s.\n", app.ID, stageLabel(app.Stage))
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var withHistory bool

	cmd := &cobra.Command{
		Use:   "show APPLICATION_ID",
		Short: "Show one application and optionally its audit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.requireActor(); err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			app, err := client.GetApplication(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				if !withHistory {
					return printJSON(out, app)
				}
				entries, err := client.History(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(out, struct {
					Application *api.Application   `json:"application"`
					History     []api.HistoryEntry `json:"history"`
				}{app, entries})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"ID", app.ID},
					{"Job", app.JobID},
					{"Candidate", app.CandidateID},
					{"Stage", stageLabel(app.Stage)},
					{"Created", app.CreatedAt},
					{"Updated", app.UpdatedAt},
				},
			))

			if !withHistory {
				return nil
			}
			entries, err := client.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No stage changes recorded.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.ChangedAt,
					stageLabel(entry.OldStage),
					stageLabel(entry.NewStage),
					entry.ChangedBy,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Changed At", "From", "To", "By"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withHistory, "history", false, "Include the stage change history")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jobID string
	var stages []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications (own for candidates, per job for staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.requireActor(); err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var apps []api.Application
			if strings.TrimSpace(jobID) != "" {
				apps, err = client.ListJobApplications(cmd.Context(), jobID, stages...)
			} else {
				apps, err = client.ListOwnApplications(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, apps)
			}
			if len(apps) == 0 {
				fmt.Fprintln(out, "No applications found.")
				return nil
			}
			rows := make([][]string, 0, len(apps))
			for _, app := range apps {
				rows = append(rows, []string{
					app.ID,
					app.JobID,
					app.CandidateID,
					stageLabel(app.Stage),
					app.UpdatedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Job", "Candidate", "Stage", "Updated"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "List a job's applications instead of your own")
	cmd.Flags().StringSliceVar(&stages, "stage", nil, "Filter by stage (repeatable)")
	return cmd
}

func newAdvanceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "advance APPLICATION_ID STAGE",
		Short: "Move an application to a new stage as a staff actor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.requireActor(); err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			app, err := client.ChangeStage(cmd.Context(), args[0], args[1])
			if err != nil {
				var apiErr *api.StatusError
				if errors.As(err, &apiErr) && apiErr.Body.CurrentStage != "" {
					return fmt.Errorf("%s is at stage %s; moving to %s is not allowed",
						args[0], stageLabel(apiErr.Body.CurrentStage), stageLabel(apiErr.Body.AttemptedStage))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Application %s is now at stage %s.\n", app.ID, stageLabel(app.Stage))
			return nil
		},
	}
}
