package export

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"memorygram/geometry"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/blake2b"
)

// Manifest describes one run without its samples. The digest identifies
// the exact sample sequence.
type Manifest struct {
	ID             string            `json:"id"`
	Site           string            `json:"site"`
	URL            string            `json:"url"`
	Round          int               `json:"round"`
	Started        time.Time         `json:"started"`
	ElapsedNs      int64             `json:"elapsed_ns"`
	IntervalCycles uint64            `json:"interval_cycles"`
	DurationCycles uint64            `json:"duration_cycles"`
	Nodes          int               `json:"nodes"`
	Seed           uint64            `json:"seed"`
	Overruns       int               `json:"overruns"`
	Samples        int               `json:"samples"`
	Digest         string            `json:"blake2b_256"`
	Geometry       geometry.Geometry `json:"geometry"`
}

// Digest returns the hex BLAKE2b-256 of samples encoded as little-endian
// 64-bit words.
func Digest(samples []uint64) string {
	h, _ := blake2b.New256(nil)
	var word [8]byte
	for _, v := range samples {
		binary.LittleEndian.PutUint64(word[:], v)
		h.Write(word[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ManifestOf builds the manifest of r.
func ManifestOf(r *Run) Manifest {
	return Manifest{
		ID:             r.ID,
		Site:           r.Site,
		URL:            r.URL,
		Round:          r.Round,
		Started:        r.Started,
		ElapsedNs:      int64(r.Elapsed),
		IntervalCycles: r.IntervalCycles,
		DurationCycles: r.DurationCycles,
		Nodes:          r.Nodes,
		Seed:           r.Seed,
		Overruns:       r.Overruns,
		Samples:        len(r.Samples),
		Digest:         Digest(r.Samples),
		Geometry:       r.Geometry,
	}
}

// ManifestSink appends one JSON object per run to a file.
type ManifestSink struct {
	f *os.File
}

// OpenManifest opens path for appending.
func OpenManifest(path string) (*ManifestSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("export: open manifest: %w", err)
	}
	return &ManifestSink{f: f}, nil
}

// Export writes the run's manifest line.
func (m *ManifestSink) Export(r *Run) error {
	line, err := sonnet.Marshal(ManifestOf(r))
	if err != nil {
		return fmt.Errorf("export: encode manifest %s: %w", r.ID, err)
	}
	line = append(line, '\n')
	if _, err := m.f.Write(line); err != nil {
		return fmt.Errorf("export: write manifest %s: %w", r.ID, err)
	}
	return nil
}

// Close syncs and closes the file.
func (m *ManifestSink) Close() error {
	if err := m.f.Sync(); err != nil {
		m.f.Close()
		return err
	}
	return m.f.Close()
}

// ReadManifests decodes every manifest line of path.
func ReadManifests(path string) ([]Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Manifest
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var m Manifest
		if err := sonnet.Unmarshal(sc.Bytes(), &m); err != nil {
			return out, fmt.Errorf("export: manifest line %d: %w", len(out)+1, err)
		}
		out = append(out, m)
	}
	return out, sc.Err()
}
