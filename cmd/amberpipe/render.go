package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"amberpipe/internal/daemon"
	"amberpipe/internal/history"
	"amberpipe/internal/ipc"
)

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range header {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		configs = append(configs, table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// formatDetails flattens an outcome's detail map into "key=value" pairs,
// sorted so output stays stable.
func formatDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for key := range details {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, details[key]))
	}
	return strings.Join(pairs, " ")
}

func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusWord(w io.Writer, running bool) string {
	word := "stopped"
	color := text.FgRed
	if running {
		word = "running"
		color = text.FgGreen
	}
	if shouldColorize(w) {
		return color.Sprint(word)
	}
	return word
}

func renderStatus(w io.Writer, status daemon.Status) {
	fmt.Fprintf(w, "daemon: %s (pid %d)\n", statusWord(w, status.Running), status.PID)
	fmt.Fprintf(w, "history db: %s\n", status.HistoryDBPath)
	fmt.Fprintf(w, "socket: %s\n\n", status.SocketPath)

	wf := status.Workflow
	fmt.Fprintf(w, "processed: %d  failed: %d  total: %d  success rate: %.0f%%\n",
		wf.Processed, wf.Failed, wf.TotalFiles, wf.SuccessRate*100)
	fmt.Fprintf(w, "concurrency: %d running / limit %d\n", wf.BatchConfig.Running, wf.BatchConfig.Limit)

	if len(wf.Queue) == 0 {
		fmt.Fprintln(w, "\nno assets in flight")
		return
	}
	rows := make([][]string, 0, len(wf.Queue))
	for _, entry := range wf.Queue {
		rows = append(rows, []string{
			entry.Filename,
			entry.Category,
			time.Since(entry.StartedAt).Round(time.Second).String(),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Asset", "Category", "Elapsed"}, rows))
}

func renderRun(w io.Writer, run *history.Run) {
	fmt.Fprintf(w, "%s: %s (%s)\n", run.Filename, run.Status, run.Category)
	if run.ErrorMessage != "" {
		fmt.Fprintf(w, "error: %s\n", run.ErrorMessage)
	}
	if len(run.Outcomes) == 0 {
		return
	}
	rows := make([][]string, 0, len(run.Outcomes))
	for _, outcome := range run.Outcomes {
		detail := formatDetails(outcome.Details)
		if outcome.Error != "" {
			detail = outcome.Error
		}
		rows = append(rows, []string{outcome.Step, string(outcome.Status), detail})
	}
	fmt.Fprintln(w, renderTable([]string{"Step", "Status", "Detail"}, rows))
}

func renderHistory(w io.Writer, runs []*history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := ""
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			run.Filename,
			string(run.Status),
			run.Category,
			fmt.Sprintf("%d", len(run.Outcomes)),
			finished,
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Asset", "Status", "Category", "Steps", "Finished"}, rows))
}

func renderRules(w io.Writer, rules []ipc.RuleSpec) {
	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, []string{rule.Prefix, rule.Category, strings.Join(rule.Steps, ", ")})
	}
	fmt.Fprintln(w, renderTable([]string{"Prefix", "Category", "Steps"}, rows))
}
