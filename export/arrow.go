package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowSink writes each run to <Dir>/<site>-<round>-<id>.arrow as an Arrow
// IPC file with a single non-nullable uint64 "cycles" column. Run context
// travels in the schema metadata.
type ArrowSink struct {
	Dir       string
	allocator memory.Allocator
}

// NewArrow returns a sink writing under dir, creating it if needed.
func NewArrow(dir string) (*ArrowSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: arrow dir: %w", err)
	}
	return &ArrowSink{Dir: dir, allocator: memory.DefaultAllocator}, nil
}

// Path returns the file a run is written to.
func (a *ArrowSink) Path(r *Run) string {
	return filepath.Join(a.Dir, r.Site+"-"+strconv.Itoa(r.Round)+"-"+r.ID+".arrow")
}

// runSchema returns the sample schema carrying r's context.
func runSchema(r *Run) *arrow.Schema {
	md := arrow.NewMetadata(
		[]string{"run_id", "site", "url", "round", "interval_cycles", "duration_cycles", "nodes", "seed", "overruns"},
		[]string{
			r.ID, r.Site, r.URL,
			strconv.Itoa(r.Round),
			strconv.FormatUint(r.IntervalCycles, 10),
			strconv.FormatUint(r.DurationCycles, 10),
			strconv.Itoa(r.Nodes),
			strconv.FormatUint(r.Seed, 10),
			strconv.Itoa(r.Overruns),
		},
	)
	return arrow.NewSchema(
		[]arrow.Field{{Name: "cycles", Type: arrow.PrimitiveTypes.Uint64, Nullable: false}},
		&md,
	)
}

// Export writes one record batch holding every sample.
func (a *ArrowSink) Export(r *Run) error {
	schema := runSchema(r)

	builder := array.NewRecordBuilder(a.allocator, schema)
	defer builder.Release()
	builder.Field(0).(*array.Uint64Builder).AppendValues(r.Samples, nil)
	record := builder.NewRecord()
	defer record.Release()

	path := a.Path(r)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(a.allocator))
	if err != nil {
		return fmt.Errorf("export: arrow writer: %w", err)
	}
	if err := w.Write(record); err != nil {
		w.Close()
		return fmt.Errorf("export: write record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("export: close arrow writer: %w", err)
	}
	return f.Sync()
}

// Close is a no-op; every file is closed after its run.
func (a *ArrowSink) Close() error { return nil }

// ReadArrow returns the samples and schema metadata of an Arrow file
// written by ArrowSink.
func ReadArrow(path string) ([]uint64, map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, nil, fmt.Errorf("export: arrow reader: %w", err)
	}
	defer r.Close()

	md := r.Schema().Metadata()
	meta := make(map[string]string, md.Len())
	for i, k := range md.Keys() {
		meta[k] = md.Values()[i]
	}

	var samples []uint64
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, nil, fmt.Errorf("export: record %d: %w", i, err)
		}
		col, ok := rec.Column(0).(*array.Uint64)
		if !ok {
			return nil, nil, fmt.Errorf("export: column 0 is %s, not uint64", rec.Column(0).DataType())
		}
		samples = append(samples, col.Uint64Values()...)
	}
	return samples, meta, nil
}
