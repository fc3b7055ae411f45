// Package ui provides styled CLI output for tantoc using lipgloss.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.Color("#7D56F4")
	colorSecondary = lipgloss.Color("#56C3F4")
	colorSuccess   = lipgloss.Color("#5AF78E")
	colorWarning   = lipgloss.Color("#F7DC6F")
	colorError     = lipgloss.Color("#FF6B9D")
	colorMuted     = lipgloss.Color("#6C7086")
	colorText      = lipgloss.Color("#CDD6F4")
	colorHighlight = lipgloss.Color("#F5E0DC")
)

var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	styleVersion = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	styleSection = lipgloss.NewStyle().Bold(true).Foreground(colorSecondary).MarginTop(1)

	styleFileInput  = lipgloss.NewStyle().Foreground(colorText)
	styleFileOutput = lipgloss.NewStyle().Foreground(colorSuccess)
	styleFilePath   = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)

	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	styleStepLabel = lipgloss.NewStyle().Foreground(colorText).Width(14)
	styleStepTime  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	styleSummary = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorMuted).
			MarginTop(1).
			PaddingTop(1)

	styleIndent = lipgloss.NewStyle().PaddingLeft(2)
)

// BuildOutput renders a running tantoc build's progress to stdout, one
// kernel translation unit at a time.
type BuildOutput struct {
	startTime time.Time
}

// NewBuildOutput starts a new build output session.
func NewBuildOutput() *BuildOutput {
	return &BuildOutput{startTime: time.Now()}
}

// PrintHeader prints the tool's banner.
func (b *BuildOutput) PrintHeader(version string) {
	fmt.Println(styleHeader.Render("tantoc") + " " + styleVersion.Render("v"+version))
}

// PrintBuildStart announces how many kernel files this build covers.
func (b *BuildOutput) PrintBuildStart(fileCount int) {
	noun := "files"
	if fileCount == 1 {
		noun = "file"
	}
	fmt.Println(styleSection.Render(fmt.Sprintf("Compiling %d kernel %s", fileCount, noun)))
	fmt.Println()
}

// PrintFileStart announces one input/output kernel file pair.
func (b *BuildOutput) PrintFileStart(inputPath, outputPath string) {
	fmt.Printf("  %s %s %s\n",
		styleFileInput.Render(inputPath), styleMuted.Render("->"), styleFileOutput.Render(outputPath))
}

// StepStatus is the outcome of one pipeline stage (parse, dead-code
// elimination, math-init, rule lowering, finalize).
type StepStatus int

const (
	StepSuccess StepStatus = iota
	StepSkipped
	StepWarning
	StepError
)

// Step is one reported pipeline stage.
type Step struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Message  string
}

// PrintStep reports one pipeline stage's outcome.
func (b *BuildOutput) PrintStep(step Step) {
	var icon, rendered string
	switch step.Status {
	case StepSuccess:
		icon, rendered = "+", styleSuccess.Render("ok")
	case StepSkipped:
		icon, rendered = "-", styleMuted.Render("skipped")
	case StepWarning:
		icon, rendered = "!", styleWarning.Render("warning")
	case StepError:
		icon, rendered = "x", styleError.Render("failed")
	}

	line := fmt.Sprintf("  %s %s %s", icon, styleStepLabel.Render(step.Name), rendered)
	if step.Duration > 0 {
		line += " " + styleStepTime.Render("("+formatDuration(step.Duration)+")")
	}
	fmt.Println(line)
	if step.Message != "" {
		fmt.Println(styleMuted.Render("    " + step.Message))
	}
}

// PrintSummary reports the build's overall outcome.
func (b *BuildOutput) PrintSummary(success bool, errorMsg string) {
	elapsed := time.Since(b.startTime)
	fmt.Println()

	var line string
	if success {
		line = fmt.Sprintf("%s Built in %s", styleSuccess.Render("Success"), styleStepTime.Render(formatDuration(elapsed)))
	} else {
		line = styleError.Render("Build failed")
		if errorMsg != "" {
			line += "\n" + styleError.Render("  Error: ") + errorMsg
		}
	}
	fmt.Println(styleSummary.Render(line))
}

// PrintError prints a standalone error line.
func (b *BuildOutput) PrintError(msg string) {
	fmt.Println(styleIndent.Render(styleError.Render("x Error: ") + msg))
}

// PrintWarning prints a standalone warning line.
func (b *BuildOutput) PrintWarning(msg string) {
	fmt.Println(styleIndent.Render(styleWarning.Render("! Warning: ") + msg))
}

// PrintInfo prints a standalone informational line.
func (b *BuildOutput) PrintInfo(msg string) {
	fmt.Println(styleIndent.Render(styleMuted.Render(msg)))
}

// PrintVersionInfo prints tantoc's version banner for "tantoc version".
func PrintVersionInfo(version string) {
	fmt.Println(styleHeader.Render("tantoc") + " " + styleVersion.Render("v"+version))
	fmt.Println(styleMuted.Render("Tanto tile-kernel compiler frontend"))
}

// PrintHelp prints tantoc's top-level help screen.
func PrintHelp(version string) {
	fmt.Println(styleHeader.Render("tantoc") + " " + styleVersion.Render("v"+version))
	fmt.Println()
	fmt.Println(styleSection.Render("Usage"))
	fmt.Println("  tantoc build <file.tanto>...   Lower kernel sources to C++")
	fmt.Println("  tantoc build --watch <file.tanto>...   Rebuild on source changes")
	fmt.Println("  tantoc map <file.cpp> <line> <col>   Resolve a generated position back to source")
	fmt.Println("  tantoc serve                    Run the tantoc-lsp language server over stdio")
	fmt.Println("  tantoc version                  Print version information")
	fmt.Println()
	fmt.Println(styleSection.Render("Modes"))
	fmt.Println(Table([][]string{
		{"compute", "default; math/pack/unpack kernel lowering"},
		{"read", "dataflow reader kernel lowering (suffix _read.tanto)"},
		{"write", "dataflow writer kernel lowering (suffix _write.tanto)"},
	}))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// Table renders a simple two-column label/value table.
func Table(rows [][]string) string {
	maxWidth := 0
	for _, row := range rows {
		if len(row) > 0 && len(row[0]) > maxWidth {
			maxWidth = len(row[0])
		}
	}
	var lines []string
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		label := styleMuted.Render(fmt.Sprintf("%-*s", maxWidth, row[0]))
		lines = append(lines, fmt.Sprintf("  %s  %s", label, row[1]))
	}
	return strings.Join(lines, "\n")
}

// Divider renders a horizontal rule.
func Divider() string {
	return styleMuted.Render(strings.Repeat("-", 60))
}
