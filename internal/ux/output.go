package ux

import (
	"fmt"
	"time"

	"github.com/jorge-barreto/pipecraft/internal/simulate"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// StepHeader prints a timestamped step header.
func StepHeader(index, total int, step simulate.Step) {
	fmt.Printf("\n%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
	fmt.Printf("%s[%s]%s  %sStep %d/%d: %s (%s)%s\n",
		Dim, timestamp(), Reset, Bold, index+1, total, step.Name, step.ID, Reset)
	fmt.Printf("%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
}

// StepLog prints one line of step output.
func StepLog(line string) {
	fmt.Printf("%s[%s]%s    %s\n", Dim, timestamp(), Reset, line)
}

// StepComplete prints a step completion message with its simulated duration.
func StepComplete(index int, step simulate.Step) {
	fmt.Printf("%s[%s]%s  %s✓ Step %d complete (%s)%s\n",
		Dim, timestamp(), Reset, Green, index+1, formatSeconds(step.Duration), Reset)
}

// StepFail prints a step failure message.
func StepFail(index int, step simulate.Step) {
	fmt.Printf("%s[%s]%s  %s✗ Step %d (%s) failed after %s%s\n",
		Dim, timestamp(), Reset, Red, index+1, step.Name, formatSeconds(step.Duration), Reset)
}

// Success prints a final success message.
func Success(total int) {
	fmt.Printf("\n%s[%s]%s  %s%s══ All %d steps complete ══%s\n\n",
		Dim, timestamp(), Reset, Bold, Green, total, Reset)
}

// Interrupted prints a message for a run stopped by the user.
func Interrupted(run *simulate.Run) {
	fmt.Printf("\n%s[%s]%s  %s– Run %s interrupted%s\n",
		Dim, timestamp(), Reset, Yellow, run.ID, Reset)
}

// Failed prints the final message for a run that stopped on a failed step.
func Failed(run *simulate.Run) {
	fmt.Printf("\n%s[%s]%s  %s%s══ Pipeline failed at step: %s ══%s\n\n",
		Dim, timestamp(), Reset, Bold, Red, run.FailedStep, Reset)
}

// ReportHint prints where a run report was written.
func ReportHint(path string) {
	fmt.Printf("%sReport:%s %s\n", Yellow, Reset, path)
}

func formatSeconds(secs int) string {
	d := time.Duration(secs) * time.Second
	return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
}

// Printer implements simulate.Observer by printing progress to stdout.
type Printer struct{}

func (Printer) StepStarted(index, total int, step simulate.Step) {
	StepHeader(index, total, step)
}

func (Printer) StepLog(index int, line string) {
	StepLog(line)
}

func (Printer) StepFinished(index int, step simulate.Step) {
	if step.Status == simulate.StepSuccess {
		StepComplete(index, step)
		return
	}
	StepFail(index, step)
}
