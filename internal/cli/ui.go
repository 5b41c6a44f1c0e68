package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
)

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", styleSuccess.Render("✓"), msg)
}

func printFile(w io.Writer, path string) {
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("File:"), styleValue.Render(path))
}

func printStats(w io.Writer, nodes, edges int, ticks uint64) {
	fmt.Fprintf(w, "  %s %s nodes, %s edges, %s ticks\n",
		styleLabel.Render("Graph:"),
		styleNumber.Render(fmt.Sprint(nodes)),
		styleNumber.Render(fmt.Sprint(edges)),
		styleNumber.Render(fmt.Sprint(ticks)),
	)
}
