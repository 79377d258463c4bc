package export

import (
	"fmt"
	"os"
	"path/filepath"

	"memorygram/utils"
)

// CSVSink appends each run's samples to <Dir>/<site>.csv, one decimal
// integer per line with no header. Rounds of the same site accumulate in
// one file.
type CSVSink struct {
	Dir string
}

// NewCSV returns a sink writing under dir, creating it if needed.
func NewCSV(dir string) (*CSVSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: csv dir: %w", err)
	}
	return &CSVSink{Dir: dir}, nil
}

// Path returns the CSV file for site.
func (c *CSVSink) Path(site string) string {
	return filepath.Join(c.Dir, site+".csv")
}

// Truncate empties the site's file, creating it if absent.
func (c *CSVSink) Truncate(site string) error {
	f, err := os.OpenFile(c.Path(site), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("export: truncate %s: %w", site, err)
	}
	return f.Close()
}

// Export appends the run's samples in order.
func (c *CSVSink) Export(r *Run) error {
	buf := make([]byte, 0, len(r.Samples)*8)
	for _, v := range r.Samples {
		buf = utils.AppendUint(buf, v)
		buf = append(buf, '\n')
	}

	f, err := os.OpenFile(c.Path(r.Site), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("export: open csv for %s: %w", r.Site, err)
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("export: write csv for %s: %w", r.Site, err)
	}
	return f.Close()
}

// Close is a no-op; files are closed after every export.
func (c *CSVSink) Close() error { return nil }
