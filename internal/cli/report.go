package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"accessor-compiler/internal/diagnostic"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	titleColor   = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.Faint)
)

func severityColor(s diagnostic.DiagnosticSeverity) *color.Color {
	switch s {
	case diagnostic.DiagnosticError:
		return errorColor
	case diagnostic.DiagnosticWarning:
		return warningColor
	default:
		return infoColor
	}
}

// printReport writes one line per diagnostic followed by a summary.
func printReport(w io.Writer, res *Result) {
	for _, d := range res.Diagnostics.All() {
		severityColor(d.Severity).Fprintf(w, "%-7s ", d.Severity)
		fmt.Fprintln(w, d.String())

		if len(d.Suggestions) > 0 {
			dimColor.Fprintf(w, "        did you mean: %s\n", strings.Join(d.Suggestions, ", "))
		}
	}

	errs, warns := len(res.Diagnostics.Errors), len(res.Diagnostics.Warnings)

	summary := fmt.Sprintf("%d bindings checked, %d errors, %d warnings", res.Checked, errs, warns)
	if errs > 0 {
		errorColor.Fprintln(w, summary)

		return
	}

	successColor.Fprintln(w, summary)
}
