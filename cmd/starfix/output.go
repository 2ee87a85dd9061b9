package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/star/starfix/internal/observe"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60")).Width(6)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// positionJSON uses the same keys as the HTTP responses.
type positionJSON struct {
	RA   float64  `json:"ra"`
	Dec  float64  `json:"dec"`
	Dist float64  `json:"dist"`
	Mag  *float64 `json:"mag,omitempty"`
}

type brightStarJSON struct {
	HIP  int     `json:"hip"`
	RA   float64 `json:"ra"`
	Dec  float64 `json:"dec"`
	Dist float64 `json:"dist"`
	Mag  float64 `json:"mag"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResult(w io.Writer, format, title string, r observe.Result) error {
	if format == "json" {
		return writeJSON(w, positionJSON{RA: r.RAHours, Dec: r.DecDegrees, Dist: r.DistanceMeters, Mag: r.Magnitude})
	}

	lines := []string{
		titleStyle.Render(title),
		row("RA", fmt.Sprintf("%s  (%.6f h)", formatHours(r.RAHours), r.RAHours)),
		row("Dec", fmt.Sprintf("%s  (%.6f°)", formatDegrees(r.DecDegrees), r.DecDegrees)),
		row("Dist", formatDistance(r.DistanceMeters)),
	}
	if r.Magnitude != nil {
		lines = append(lines, row("Mag", fmt.Sprintf("%.2f", *r.Magnitude)))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

func writeBrightStars(w io.Writer, format string, rows []observe.StarResult) error {
	if format == "json" {
		out := make([]brightStarJSON, len(rows))
		for i, r := range rows {
			out[i] = brightStarJSON{HIP: r.HIP, RA: r.RAHours, Dec: r.DecDegrees, Dist: r.DistanceMeters}
			if r.Magnitude != nil {
				out[i].Mag = *r.Magnitude
			}
		}
		return writeJSON(w, out)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d stars", len(rows))))
	b.WriteByte('\n')
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%8s  %-13s  %-14s  %6s", "HIP", "RA", "Dec", "Mag")))
	b.WriteByte('\n')
	for _, r := range rows {
		mag := math.NaN()
		if r.Magnitude != nil {
			mag = *r.Magnitude
		}
		fmt.Fprintf(&b, "%8d  %-13s  %-14s  %6.2f\n", r.HIP, formatHours(r.RAHours), formatDegrees(r.DecDegrees), mag)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeGHA(w io.Writer, format string, gha float64) error {
	if format == "json" {
		return writeJSON(w, gha)
	}
	_, err := fmt.Fprintln(w, row("GHA♈", fmt.Sprintf("%s  (%.6f°)", formatDegrees(gha), gha)))
	return err
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

// formatHours renders decimal hours as 06h45m09.25s.
func formatHours(h float64) string {
	total := math.Round(h*3600*100) / 100
	hh := math.Floor(total / 3600)
	mm := math.Floor((total - hh*3600) / 60)
	ss := total - hh*3600 - mm*60
	return fmt.Sprintf("%02.0fh%02.0fm%05.2fs", hh, mm, ss)
}

// formatDegrees renders signed decimal degrees as -16°42'47.3".
func formatDegrees(d float64) string {
	sign := "+"
	if d < 0 {
		sign = "-"
	}
	total := math.Round(math.Abs(d)*3600*10) / 10
	dd := math.Floor(total / 3600)
	mm := math.Floor((total - dd*3600) / 60)
	ss := total - dd*3600 - mm*60
	return fmt.Sprintf("%s%02.0f°%02.0f'%04.1f\"", sign, dd, mm, ss)
}

func formatDistance(m float64) string {
	const (
		au = 149597870700.0
		pc = 3.0856775814913673e16
	)
	switch {
	case m >= 0.1*pc:
		return fmt.Sprintf("%.3f pc", m/pc)
	case m >= 0.01*au:
		return fmt.Sprintf("%.6f au", m/au)
	}
	return fmt.Sprintf("%.1f km", m/1000)
}
