// Package presenter renders estimates and failures for people.
package presenter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mimir-aip/carprice/pkg/models"
)

// DebugTitle heads the technical detail panel
const DebugTitle = "Technical Debug Info"

// Tip returns extra guidance for a failure kind, or "" when there is none
func Tip(kind models.FailureKind) string {
	switch kind {
	case models.FailureTypeMismatch, models.FailurePrediction:
		return "Tip: this usually means the input structure does not match the data the model was trained on."
	case models.FailureModelUnavailable:
		return "Place the model file at the configured path and restart the service."
	case models.FailureSchemaUnavailable:
		return "Export the model with its feature names or configure model.fallback_schema."
	default:
		return ""
	}
}

// Headline returns the one-line summary of a result
func Headline(result *models.PredictionResult) string {
	return "Estimated Price: " + result.Display()
}

// DebugRows returns the aligned row as name/value pairs in model order
func DebugRows(row *models.AlignedRow) [][2]string {
	if row == nil {
		return nil
	}
	columns := row.Columns()
	values := row.Values()
	out := make([][2]string, len(columns))
	for i, c := range columns {
		out[i] = [2]string{c, strconv.FormatFloat(values[i], 'g', -1, 64)}
	}
	return out
}

var (
	priceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 2)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	setupStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	tipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Terminal writes styled output to a terminal
type Terminal struct {
	out   io.Writer
	debug bool
}

// NewTerminal creates a terminal presenter. With debug set, results include
// the aligned row and failures include their technical detail.
func NewTerminal(out io.Writer, debug bool) *Terminal {
	return &Terminal{out: out, debug: debug}
}

// Result prints a successful estimate
func (t *Terminal) Result(result *models.PredictionResult) error {
	var b strings.Builder
	b.WriteString(priceStyle.Render(Headline(result)))
	b.WriteString("\n")

	if t.debug {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s (model %s, id %s)", DebugTitle, result.ModelType, result.ID)))
		b.WriteString("\n")
		b.WriteString(renderRows(DebugRows(result.Row)))
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}

// Failure prints a classified failure
func (t *Terminal) Failure(failure *models.Failure) error {
	style := errorStyle
	kind := "This input could not be scored"
	if failure.Kind.Setup() {
		style = setupStyle
		kind = "Setup problem"
	}

	var b strings.Builder
	b.WriteString(style.Render(fmt.Sprintf("%s: %s", kind, failure.Kind.Title())))
	b.WriteString("\n")
	b.WriteString(failure.Message)
	b.WriteString("\n")
	if tip := Tip(failure.Kind); tip != "" {
		b.WriteString(tipStyle.Render(tip))
		b.WriteString("\n")
	}
	if t.debug && failure.Detail != "" {
		b.WriteString(dimStyle.Render(DebugTitle + ": " + failure.Detail))
		b.WriteString("\n")
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}

// Schema prints the expected columns and brand options
func (t *Terminal) Schema(columns []string, source string, brands []string, discovered bool) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Expected schema (%s, %d columns)\n", source, len(columns)))
	for i, c := range columns {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%3d", i)))
		b.WriteString(" ")
		b.WriteString(c)
		b.WriteString("\n")
	}

	origin := "fallback list"
	if discovered {
		origin = "model columns"
	}
	b.WriteString(fmt.Sprintf("Brands (%s): %s\n", origin, strings.Join(brands, ", ")))

	_, err := io.WriteString(t.out, b.String())
	return err
}

func renderRows(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-*s  %s\n", width, r[0], r[1]))
	}
	return b.String()
}
