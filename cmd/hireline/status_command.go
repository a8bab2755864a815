package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiBlue  = "\x1b[34m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and application counts per stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, status)
			}
			colorize := shouldColorize(out)

			state := "stopped"
			color := ansiRed
			if status.Running {
				state = "running"
				color = ansiGreen
			}
			if colorize {
				fmt.Fprintf(out, "Daemon: %s%s%s (pid %d)\n", color, state, ansiReset, status.PID)
			} else {
				fmt.Fprintf(out, "Daemon: %s (pid %d)\n", state, status.PID)
			}
			fmt.Fprintf(out, "Database: %s\n", status.DatabasePath)
			fmt.Fprintf(out, "Lock: %s\n", status.LockFilePath)

			if len(status.StageCounts) == 0 {
				fmt.Fprintln(out, "No applications yet.")
				return nil
			}

			stages := make([]string, 0, len(status.StageCounts))
			for stage := range status.StageCounts {
				stages = append(stages, stage)
			}
			sort.Strings(stages)

			rows := make([][]string, 0, len(stages))
			for _, stage := range stages {
				rows = append(rows, []string{stageLabel(stage), fmt.Sprintf("%d", status.StageCounts[stage])})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Stage", "Applications"},
				rows,
				2,
			))
			return nil
		},
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
