package ui

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleReporter prints build progress lines. It is safe for use by
// several builds at once; each line is written whole.
type ConsoleReporter struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewConsoleReporter creates a reporter writing to out. Per-entry lines are
// only printed when verbose is set.
func NewConsoleReporter(out io.Writer, verbose bool) *ConsoleReporter {
	return &ConsoleReporter{out: out, verbose: verbose}
}

func (r *ConsoleReporter) ProjectStarted(project string) {
	r.println(FormatInfo("Building " + project))
}

func (r *ConsoleReporter) EntryAdded(project, logicalPath string) {
	if !r.verbose {
		return
	}
	r.println(FormatMuted(fmt.Sprintf("  Adding %s", logicalPath)))
}

func (r *ConsoleReporter) ProjectFinished(project, outputPath string, err error) {
	if err != nil {
		r.println(FormatError(fmt.Sprintf("%s failed: %v", project, err)))
		return
	}
	r.println(FormatPackage(fmt.Sprintf("%s -> %s", project, outputPath)))
}

func (r *ConsoleReporter) println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, line)
}
