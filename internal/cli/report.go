package cli

import (
	"fmt"
	"io"

	"github.com/nauticalab/propbind/internal/catalog"
	"github.com/nauticalab/propbind/pkg/problems"
)

var errorLabels = map[problems.Kind]string{
	problems.KindDefunct:     "Defunct Property",
	problems.KindConflict:    "Conflicting Property",
	problems.KindInvalid:     "Invalid Value",
	problems.KindConstraint:  "Constraint Violation",
	problems.KindInvalidType: "Invalid Configuration",
	problems.KindUnused:      "Unused Property",
}

// printReport prints a check report in a user-friendly format
func printReport(out io.Writer, report *catalog.Report, target string, verbose bool) {
	// Print warnings first
	for _, warning := range report.Warnings {
		fmt.Fprintf(out, "⚠️  Warning: %s\n", warning.Text)
		if verbose && warning.Class != "" {
			fmt.Fprintf(out, "   Class: %s\n", warning.Class)
		}
	}

	for _, err := range report.Errors {
		label, ok := errorLabels[err.Kind]
		if !ok {
			label = "Error"
		}
		fmt.Fprintf(out, "❌ %s: %s\n", label, err.Text)
		if verbose && err.Class != "" {
			fmt.Fprintf(out, "   Class: %s\n", err.Class)
		}
	}

	if verbose {
		fmt.Fprintf(out, "   Used properties: %d, unused: %d\n", len(report.UsedProperties), len(report.UnusedProperties))
		if report.Revision != "" {
			fmt.Fprintf(out, "   Revision: %s\n", report.Revision)
		}
	}

	switch {
	case len(report.Errors) == 0 && len(report.Warnings) == 0:
		fmt.Fprintf(out, "✅ %s is valid!\n", target)
	case report.Valid:
		fmt.Fprintf(out, "✅ %s is valid (%d warnings)\n", target, len(report.Warnings))
	default:
		fmt.Fprintf(out, "❌ Validation failed with %d errors and %d warnings\n", len(report.Errors), len(report.Warnings))
		printSuggestions(out, report)
	}
}

// printSuggestions prints one hint per kind of problem found
func printSuggestions(out io.Writer, report *catalog.Report) {
	seen := make(map[problems.Kind]bool)
	for _, m := range report.Warnings {
		seen[m.Kind] = true
	}
	for _, m := range report.Errors {
		seen[m.Kind] = true
	}

	fmt.Fprintln(out, "\n💡 Suggestions:")
	if seen[problems.KindDefunct] {
		fmt.Fprintln(out, "   • Remove defunct properties; they are no longer read")
	}
	if seen[problems.KindConflict] || seen[problems.KindReplaced] {
		fmt.Fprintln(out, "   • Rename legacy properties to the names shown and keep only one of them")
	}
	if seen[problems.KindInvalid] || seen[problems.KindConstraint] {
		fmt.Fprintln(out, "   • Run 'propbind describe' to see each property's type and default")
	}
	if seen[problems.KindUnused] {
		fmt.Fprintln(out, "   • Check unused property names for typos, or drop --strict")
	}
}
