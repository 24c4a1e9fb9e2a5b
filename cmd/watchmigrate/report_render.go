package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"watchmigrate/internal/report"
)

func renderReport(out io.Writer, rep report.Report, dryRun, colorize bool) {
	for _, line := range renderSectionHeader("Migration summary", colorize) {
		fmt.Fprintln(out, line)
	}
	lines := []string{
		renderStatusLine("Watched items", statusInfo, strconv.Itoa(rep.Total), colorize),
	}
	if dryRun {
		lines = append(lines, renderStatusLine("Would mark", statusInfo, strconv.Itoa(rep.WouldMark), colorize))
	} else {
		lines = append(lines, renderStatusLine("Marked watched", statusOK, strconv.Itoa(rep.Marked), colorize))
	}
	lines = append(lines,
		renderStatusLine("Already watched", statusInfo, strconv.Itoa(rep.AlreadyWatched), colorize),
		renderStatusLine("No match", countStatus(len(rep.NoMatch), statusWarn), strconv.Itoa(len(rep.NoMatch)), colorize),
		renderStatusLine("Malformed records", countStatus(len(rep.Malformed), statusWarn), strconv.Itoa(len(rep.Malformed)), colorize),
		renderStatusLine("Failed", countStatus(rep.Failed, statusError), strconv.Itoa(rep.Failed), colorize),
		renderStatusLine("Dropped IDs", countStatus(len(rep.Dropped), statusWarn), strconv.Itoa(len(rep.Dropped)), colorize),
		renderStatusLine("Elapsed", statusInfo, rep.Elapsed.Round(time.Millisecond).String(), colorize),
	)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}

	if len(rep.NoMatch) > 0 {
		rows := make([][]string, len(rep.NoMatch))
		for i, label := range rep.NoMatch {
			rows[i] = []string{strconv.Itoa(i + 1), label}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable("Unsuccessful imports", []string{"#", "Item"}, rows, []columnAlignment{alignRight, alignLeft}))
	}
	if len(rep.Malformed) > 0 {
		rows := make([][]string, len(rep.Malformed))
		for i, m := range rep.Malformed {
			rows[i] = []string{m.RecordID, m.Label, m.Reason}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable("Malformed target records", []string{"Record ID", "Record", "Reason"}, rows, nil))
	}
	if len(rep.Failures) > 0 {
		rows := make([][]string, len(rep.Failures))
		for i, f := range rep.Failures {
			rows[i] = []string{f.Item, f.RecordID, f.Reason}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable("Failed updates", []string{"Item", "Record ID", "Reason"}, rows, nil))
	}
	if len(rep.Dropped) > 0 {
		rows := make([][]string, len(rep.Dropped))
		for i, d := range rep.Dropped {
			rows[i] = []string{d.Library, d.Title, d.GUID, strings.TrimSpace(d.Reason)}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable("Dropped source identifiers", []string{"Library", "Title", "GUID", "Reason"}, rows, nil))
	}
}
