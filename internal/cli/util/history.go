package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/toastkit/internal/cli/shared"
	"github.com/ariel-frischer/toastkit/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "history",
		Short:        "List shown toasts and their events",
		Long:         `List recorded toasts, newest first, with their final status and every event they produced.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := shared.LoadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runHistoryWithStateDir(cmd, rt.Config.StateDir)
		},
	}
	cmd.GroupID = shared.GroupConfiguration
	cmd.Flags().IntP("limit", "n", 0, "Limit to the last N entries (most recent)")
	cmd.Flags().Bool("clear", false, "Clear all history")
	cmd.Flags().String("status", "", "Filter by status (submitted, rejected, activated, dismissed, failed)")
	cmd.Flags().Bool("events", false, "Also list each entry's events")
	return cmd
}

// runHistoryWithStateDir runs the history command with a custom state directory.
func runHistoryWithStateDir(cmd *cobra.Command, stateDir string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	statusFilter, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	showEvents, _ := cmd.Flags().GetBool("events")

	if limit < 0 {
		return shared.InvalidArgs("limit must be positive, got %d", limit)
	}

	if clearFlag {
		if err := history.ClearHistory(stateDir); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	all, err := history.Recent(stateDir, 0)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	entries := filterEntries(all, statusFilter, limit)

	if len(entries) == 0 {
		if statusFilter != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No matching entries for status '%s'.\n", statusFilter)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		}
		return nil
	}

	displayEntries(cmd.OutOrStdout(), entries, showEvents)
	return nil
}

// filterEntries keeps entries matching status, newest first, up to limit.
func filterEntries(entries []history.HistoryEntry, statusFilter string, limit int) []history.HistoryEntry {
	var result []history.HistoryEntry
	for _, entry := range entries {
		if statusFilter != "" && !strings.EqualFold(entry.Status, statusFilter) {
			continue
		}
		result = append(result, entry)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}

func displayEntries(out io.Writer, entries []history.HistoryEntry, showEvents bool) {
	colors := shared.NewColors()

	for _, entry := range entries {
		title := entry.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(out, "%s  %s  %s  %-11s  %s\n",
			colors.Cyan(entry.Timestamp.Format("2006-01-02 15:04:05")),
			formatID(entry.ID),
			formatStatus(colors, entry.Status),
			entry.Backend,
			title,
		)
		if entry.Error != "" {
			fmt.Fprintf(out, "    %s\n", colors.Red(entry.Error))
		}
		if !showEvents {
			continue
		}
		for _, ev := range entry.Events {
			fmt.Fprintf(out, "    %s %-9s %s\n", colors.Dim(ev.At.Format("15:04:05.000")), ev.Slot, ev.Detail)
		}
	}
}

func formatStatus(colors *shared.Colors, status string) string {
	padded := fmt.Sprintf("%-9s", status)
	switch status {
	case history.StatusActivated:
		return colors.Green(padded)
	case history.StatusSubmitted, history.StatusDismissed:
		return colors.Yellow(padded)
	case history.StatusFailed, history.StatusRejected:
		return colors.Red(padded)
	default:
		if status == "" {
			return fmt.Sprintf("%-9s", "-")
		}
		return padded
	}
}

// formatID shows the first block of a request UUID.
func formatID(id string) string {
	if id == "" {
		return fmt.Sprintf("%-8s", "-")
	}
	if len(id) > 8 {
		return id[:8]
	}
	return fmt.Sprintf("%-8s", id)
}
