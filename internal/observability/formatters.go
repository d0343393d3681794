// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cold-outreach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content.
// Long lines are wrapped on word boundaries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, inner), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s to width runes. fmt's width counts bytes.
func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func wrap(line string, width int) []string {
	if len([]rune(line)) <= width {
		return []string{line}
	}

	var lines []string
	var current string
	for _, word := range strings.Fields(line) {
		if len([]rune(word)) > width {
			word = truncate(word, width)
		}
		switch {
		case current == "":
			current = word
		case len([]rune(current))+1+len([]rune(word)) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// PrintJobRecords lists the extracted postings.
func (p *Printer) PrintJobRecords(jobs []types.JobRecord) {
	if len(jobs) == 0 {
		p.printBox("EXTRACTED JOB POSTINGS", "No job postings found on the page.")
		return
	}

	var sb strings.Builder
	for i, job := range jobs {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, job.Role))
		if exp := job.ExperienceOrEmpty(); exp != "" {
			sb.WriteString(fmt.Sprintf("   Experience: %s\n", exp))
		}
		if len(job.Skills) > 0 {
			count := min(len(job.Skills), maxItemsToShow)
			sb.WriteString(fmt.Sprintf("   Skills: %s", strings.Join(job.Skills[:count], ", ")))
			if len(job.Skills) > maxItemsToShow {
				sb.WriteString(fmt.Sprintf(" (+%d more)", len(job.Skills)-maxItemsToShow))
			}
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("EXTRACTED JOB POSTINGS (%d)", len(jobs)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRetrieval shows the portfolio links matched for a role.
func (p *Printer) PrintRetrieval(role string, result types.RetrievalResult) {
	if result.Empty() {
		p.printBox("PORTFOLIO MATCHES: "+role, "No matching portfolio entries.")
		return
	}

	var sb strings.Builder
	for _, m := range result.Matches {
		sb.WriteString(fmt.Sprintf("%.2f  %s\n", m.Score, m.Link))
		if len(m.Skills) > 0 {
			sb.WriteString(fmt.Sprintf("      shared: %s\n", strings.Join(m.Skills, ", ")))
		}
	}
	if len(result.Matches) == 0 {
		for _, link := range result.Links {
			sb.WriteString(link + "\n")
		}
	}

	p.printBox("PORTFOLIO MATCHES: "+role, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEmail outputs one composed email in full.
func (p *Printer) PrintEmail(email types.OutreachEmail) {
	var sb strings.Builder
	if email.Subject != "" {
		sb.WriteString(fmt.Sprintf("Subject: %s\n\n", email.Subject))
	}
	sb.WriteString(email.Body)

	p.printBox("EMAIL: "+email.Role, sb.String())
}

// PrintFailures outputs the jobs that produced no email.
func (p *Printer) PrintFailures(failures []types.JobFailure) {
	if len(failures) == 0 {
		return
	}

	var sb strings.Builder
	for i, f := range failures {
		label := f.Stage
		if f.Kind != "" {
			label += ", " + f.Kind
		}
		sb.WriteString(fmt.Sprintf("⚠ %s (%s)\n", f.Role, label))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(f.Reason, boxWidth-8)))
		if i < len(failures)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("FAILED JOBS (%d)", len(failures)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs every email followed by the failures.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResult(result *types.PipelineResult) {
	if result == nil {
		return
	}

	fmt.Fprintf(p.out, "Run %s: %d job(s), %d email(s), %d failure(s)\n",
		result.RunID, result.JobsFound, len(result.Emails), len(result.Failures))
	for _, email := range result.Emails {
		p.PrintEmail(email)
	}
	p.PrintFailures(result.Failures)
}

// PrintProgress writes a one-line progress update.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(step, role, message string) {
	if role != "" {
		fmt.Fprintf(p.out, "[%s] %s: %s\n", step, role, message)
		return
	}
	fmt.Fprintf(p.out, "[%s] %s\n", step, message)
}
