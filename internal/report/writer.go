package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fileops/attnmon/internal/detector"
)

const reportPrefix = "attention_leaks_"

// Writer persists rendered markdown reports to a directory.
type Writer struct {
	dir string
}

// NewWriter creates the report directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the report directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write renders the markdown report and stores it, returning the path of the
// written file as its identifier.
func (w *Writer) Write(res *detector.Result) (string, error) {
	short := res.RunID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("%s%s_%s.md",
		reportPrefix, res.GeneratedAt.Format("20060102_150405"), short)
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(RenderMarkdown(res)), 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Latest returns the path of the most recent report, or an empty string when
// none exist. Report names embed the generation timestamp, so lexical order
// is chronological order.
func (w *Writer) Latest() (string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return "", fmt.Errorf("listing reports: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), reportPrefix) && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(w.dir, names[len(names)-1]), nil
}
