package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTable_Render(t *testing.T) {
	SetTheme("none")

	tbl := NewTable([]TableColumn{
		{Header: "Project"},
		{Header: "Entries", Align: AlignRight},
	})
	tbl.AddRow("Alpha", "12")
	tbl.AddRow("Beta")

	out := tbl.Render()
	for _, want := range []string{"PROJECT", "ENTRIES", "Alpha", "12", "Beta"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}

	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("empty table rendered %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShouldColorize_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	if ShouldColorize(&buf) {
		t.Error("ShouldColorize(buffer) = true, want false")
	}
}

func TestConfigure_PlainForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	Configure("dark", &buf)
	defer SetTheme("auto")

	if got := FormatSuccess("done"); got != IconSuccess+" done" {
		t.Errorf("FormatSuccess() = %q, want plain text", got)
	}
}

func TestConsoleReporter(t *testing.T) {
	SetTheme("none")
	defer SetTheme("auto")

	tests := []struct {
		name    string
		verbose bool
		want    []string
		notWant []string
	}{
		{
			name:    "quiet",
			verbose: false,
			want:    []string{"Building Alpha", "Alpha -> out/Alpha.1.0.unitypackage", "Beta failed: boom"},
			notWant: []string{"Adding"},
		},
		{
			name:    "verbose",
			verbose: true,
			want:    []string{"Building Alpha", "Adding Scripts/Foo.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewConsoleReporter(&buf, tt.verbose)
			r.ProjectStarted("Alpha")
			r.EntryAdded("Alpha", "Scripts/Foo.txt")
			r.ProjectFinished("Alpha", "out/Alpha.1.0.unitypackage", nil)
			r.ProjectFinished("Beta", "", errors.New("boom"))

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output unexpectedly contains %q:\n%s", w, out)
				}
			}
		})
	}
}
