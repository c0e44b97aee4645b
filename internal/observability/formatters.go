// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/intake"
	"github.com/jonathan/cv-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
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

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRecord outputs the header, summary and per-section entry counts of a record.
func (p *Printer) PrintRecord(rec *types.Record) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	name := rec.PersonalInfo.FullName
	if name == "" {
		name = "(no name)"
	}
	sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	for _, f := range types.PersonalFields[1:] {
		if v := rec.PersonalInfo.Get(f); v != "" {
			sb.WriteString(fmt.Sprintf("%-9s %s\n", string(f)+":", v))
		}
	}
	sb.WriteString("\n")

	if rec.ProfileSummary != "" {
		sb.WriteString("Summary:\n")
		sb.WriteString(fmt.Sprintf("  %s\n\n", truncate(strings.ReplaceAll(rec.ProfileSummary, "\n", " "), 50)))
	}

	sb.WriteString("Sections:\n")
	counts := []struct {
		name string
		n    int
	}{
		{"workExperience", len(rec.WorkExperience)},
		{"education", len(rec.Education)},
		{"projects", len(rec.Projects)},
		{"certifications", len(rec.Certifications)},
		{"languages", len(rec.Languages)},
		{"organizations", len(rec.Organizations)},
		{"references", len(rec.References)},
		{"hardSkills", len(rec.HardSkills)},
		{"softSkills", len(rec.SoftSkills)},
	}
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("  • %-16s %d\n", c.name, c.n))
	}

	p.printBox("CV RECORD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs a skill group, listing at most maxItemsToShow skills.
func (p *Printer) PrintSkills(group string, skills []string) {
	if len(skills) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(skills), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("• %s\n", skills[i]))
	}
	if len(skills) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more", len(skills)-maxItemsToShow))
	}

	p.printBox(strings.ToUpper(group), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIntakeAnswers outputs the answers sent to the AI intake.
func (p *Printer) PrintIntakeAnswers(a *intake.Answers) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", a.FullName))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", a.Email))
	sb.WriteString(fmt.Sprintf("Position: %s\n\n", a.Position))
	sb.WriteString("Background:\n")
	sb.WriteString(fmt.Sprintf("  %s", truncate(strings.ReplaceAll(a.Background, "\n", " "), 50)))

	p.printBox("AI INTAKE ANSWERS", sb.String())
}

// PrintExport outputs the result of a PDF export.
func (p *Printer) PrintExport(doc *export.Document, path string) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:   %s\n", doc.FileName))
	if path != "" {
		sb.WriteString(fmt.Sprintf("Path:   %s\n", path))
	}
	sb.WriteString(fmt.Sprintf("Size:   %d bytes\n", len(doc.Data)))
	sb.WriteString(fmt.Sprintf("Pages:  %d", doc.Pages))

	p.printBox("PDF EXPORT", sb.String())
}

// PrintProblems outputs validation problems, or a success line when there are none.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProblems(problems []string) {
	if len(problems) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ RECORD IS VALID")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problems:\n\n", len(problems)))
	for i, problem := range problems {
		sb.WriteString(fmt.Sprintf("⚠ %s", truncate(problem, 50)))
		if i < len(problems)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("VALIDATION PROBLEMS", sb.String())
}
