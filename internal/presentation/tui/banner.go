package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the datadesk banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.Profile
	lines := []struct {
		text  string
		color string
	}{
		{"      _       _           _           _    ", "#34d399"},
		{"   __| | __ _| |_ __ _  __| | ___  ___| | __", "#2dd4bf"},
		{"  / _` |/ _` | __/ _` |/ _` |/ _ \\/ __| |/ /", "#22d3ee"},
		{" | (_| | (_| | || (_| | (_| |  __/\\__ \\   < ", "#38bdf8"},
		{"  \\__,_|\\__,_|\\__\\__,_|\\__,_|\\___||___/_|\\_\\", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  "+v).Faint())
	}
	fmt.Fprintln(w)
}
