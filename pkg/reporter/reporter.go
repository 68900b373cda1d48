// Package reporter renders hook execution results to the terminal and
// gates debug/trace tracing behind process-wide atomic flags.
package reporter

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tftio/peter-hook/pkg/executor"
)

var (
	debugEnabled atomic.Bool
	traceEnabled atomic.Bool
)

// EnableDebug flips the process-wide debug flag. Call only at startup.
func EnableDebug() { debugEnabled.Store(true) }

// EnableTrace flips the process-wide trace flag. Call only at startup.
func EnableTrace() { traceEnabled.Store(true) }

// DebugEnabled reports the current debug flag; safe to call from any thread.
func DebugEnabled() bool { return debugEnabled.Load() }

// TraceEnabled reports the current trace flag; safe to call from any thread.
func TraceEnabled() bool { return traceEnabled.Load() }

// Debugf writes to stderr iff the debug flag is set.
func Debugf(format string, args ...any) {
	if debugEnabled.Load() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// Tracef writes to stderr iff the trace flag is set.
func Tracef(format string, args ...any) {
	if traceEnabled.Load() {
		fmt.Fprintf(os.Stderr, "[TRACE] "+format+"\n", args...)
	}
}

var (
	passedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2dd4bf"))
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f87171"))
	timedOutStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff7f50"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Reporter prints per-hook status lines for a finished group, followed by a
// per-group summary; PrintOverallSummary adds the overall tally. Lines are
// printed from the collected results once the hooks have run, not streamed
// while they run.
type Reporter struct {
	Verbose bool
	Color   bool
}

func New(verbose, color bool) *Reporter {
	return &Reporter{Verbose: verbose, Color: color}
}

const lineWidth = 79

// PrintGroup prints every hook result in gr, in the order they appear, and a
// per-group summary line, then returns whether the group passed (so callers
// can fold it into an overall exit code without re-deriving Success()).
func (r *Reporter) PrintGroup(gr *executor.GroupResult) bool {
	passed, failed := 0, 0
	for _, hr := range gr.Hooks {
		r.printHookLine(hr)
		if hr.Success() {
			passed++
		} else {
			failed++
		}
	}
	label := gr.ConfigPath
	if label == "" {
		label = "group"
	}
	fmt.Printf("%s: %d passed, %d failed\n", label, passed, failed)
	return gr.Success()
}

func (r *Reporter) printHookLine(hr *executor.Result) {
	status, style := r.statusFor(hr)
	dots := dotFill(hr.HookName, len(status))

	if r.Color {
		fmt.Printf("%s%s%s\n", hr.HookName, dots, style.Render(status))
	} else {
		fmt.Printf("%s%s%s\n", hr.HookName, dots, status)
	}

	if hr.Success() && !r.Verbose {
		return
	}

	r.printDetail(fmt.Sprintf("- duration: %s", formatDuration(hr.Duration)))
	if hr.State == executor.Exited {
		r.printDetail(fmt.Sprintf("- exit code: %d", hr.ExitCode))
	}
	if hr.Partial {
		r.printDetail("- output truncated by timeout")
	}
	if hr.Err != nil {
		r.printDetail(fmt.Sprintf("- error: %s", hr.Err))
	}

	if out := strings.TrimSpace(hr.Stdout); out != "" {
		fmt.Printf("\n%s\n", out)
	}
	if errOut := strings.TrimSpace(hr.Stderr); errOut != "" {
		fmt.Printf("\n%s\n", errOut)
	}
	fmt.Println()
}

func (r *Reporter) printDetail(s string) {
	if r.Color {
		fmt.Println(detailStyle.Render(s))
	} else {
		fmt.Println(s)
	}
}

func (r *Reporter) statusFor(hr *executor.Result) (string, lipgloss.Style) {
	switch {
	case hr.Success():
		return "Passed", passedStyle
	case hr.State == executor.TimedOut:
		return "Failed (timeout)", timedOutStyle
	default:
		return "Failed", failedStyle
	}
}

func dotFill(name string, statusWidth int) string {
	n := lineWidth - len(name) - statusWidth
	if n < 1 {
		n = 1
	}
	return strings.Repeat(".", n)
}

// formatDuration mirrors the teacher's rounding: sub-5ms rounds to "0s",
// sub-second shows two decimals, sub-minute shows one, otherwise m/s.
func formatDuration(d time.Duration) string {
	seconds := d.Seconds()
	switch {
	case seconds < 0.005:
		return "0s"
	case seconds < 1.0:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 60.0:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		minutes := int(seconds) / 60
		remaining := int(seconds) % 60
		return fmt.Sprintf("%dm%ds", minutes, remaining)
	}
}

// PrintOverallSummary prints the final pass/fail tally across every group.
func PrintOverallSummary(groups []*executor.GroupResult) bool {
	overall := true
	passed, failed := 0, 0
	for _, g := range groups {
		for _, h := range g.Hooks {
			if h.Success() {
				passed++
			} else {
				failed++
				overall = false
			}
		}
	}
	if failed == 0 {
		fmt.Printf("%d hook(s) passed\n", passed)
	} else {
		fmt.Printf("%d hook(s) passed, %d hook(s) failed\n", passed, failed)
	}
	return overall
}
