package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/voicecheck/mastering"
	"github.com/cwbudde/voicecheck/measure/level"
	"github.com/cwbudde/voicecheck/report"
)

// Color palette
var (
	goodColor  = lipgloss.Color("#2E8B57")
	warnColor  = lipgloss.Color("#B8860B")
	poorColor  = lipgloss.Color("#A40000")
	mutedColor = lipgloss.Color("#888888")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	goodStyle = lipgloss.NewStyle().
			Foreground(goodColor)

	warnStyle = lipgloss.NewStyle().
			Foreground(warnColor)

	poorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(poorColor)
)

func ratingStyle(r report.Rating) lipgloss.Style {
	switch r {
	case report.RatingGood:
		return goodStyle
	case report.RatingAcceptable:
		return warnStyle
	default:
		return poorStyle
	}
}

// renderReport formats a rated document as an aligned terminal table.
func renderReport(path string, doc *report.Document) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("voicecheck report: "+path) + "\n")

	rows := []struct {
		label string
		m     report.RatedMeasurement
	}{
		{"noise floor", doc.NoiseFloor},
		{"voice loudness", doc.VoiceLoudness},
		{"peak", doc.Peak},
		{"signal-to-noise", doc.SNR},
	}

	labelWidth := 0
	for _, r := range rows {
		if len(r.label) > labelWidth {
			labelWidth = len(r.label)
		}
	}

	for _, r := range rows {
		value := fmt.Sprintf("%7.1f %-4s", r.m.Value, r.m.Unit)

		fmt.Fprintf(&b, "  %s  %s  %s\n",
			labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, r.label)),
			valueStyle.Render(value),
			ratingStyle(r.m.Rating).Render(string(r.m.Rating)))
	}

	if doc.Stereo != nil {
		b.WriteString("\n")

		for i, ch := range doc.Stereo.Channels {
			fmt.Fprintf(&b, "  %s  %s\n",
				labelStyle.Render(fmt.Sprintf("channel %d", i)),
				valueStyle.Render(fmt.Sprintf("avg %6.1f dB  peak %6.1f dB", ch.AverageDB, ch.PeakDB)))
		}

		fmt.Fprintf(&b, "  %s  %s\n",
			labelStyle.Render("imbalance"),
			valueStyle.Render(fmt.Sprintf("%.1f dB", doc.Stereo.ImbalanceDB)))
	}

	b.WriteString("\n")

	if doc.Overall.Pass {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("overall:"), goodStyle.Render("PASS"))
	} else {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("overall:"), poorStyle.Render("FAIL"))
	}

	for _, issue := range doc.Overall.Issues {
		fmt.Fprintf(&b, "  %s %s\n", warnStyle.Render("!"), issue)
	}

	return b.String()
}

// renderMastering formats the before/after summary of a mastering run.
func renderMastering(in, out string, res mastering.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("voicecheck master: "+in+" -> "+out) + "\n")

	row := func(label string, before, after float64, unit string) {
		fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
			labelStyle.Render(fmt.Sprintf("%-10s", label)),
			valueStyle.Render(fmt.Sprintf("%7.1f", before)),
			labelStyle.Render("->"),
			valueStyle.Render(fmt.Sprintf("%7.1f %s", after, unit)))
	}

	row("loudness", res.InputLUFS, res.OutputLUFS, "LUFS")
	row("true peak", level.DB(res.InputPeak), level.DB(res.OutputPeak), "dBTP")

	fmt.Fprintf(&b, "  %s  %s\n",
		labelStyle.Render(fmt.Sprintf("%-10s", "gain")),
		valueStyle.Render(fmt.Sprintf("%+7.1f dB", res.GainAppliedDB)))

	return b.String()
}
