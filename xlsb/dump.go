package xlsb

import (
	"fmt"
	"io"
	"sort"
)

// DumpRecords walks a BIFF12 record stream and writes one line per record
// to outfile: offset, record name and payload length. Cell value records are
// indented beneath their ROW.
//
// unnumbered: if true, omit offsets (for meaningful diffs).
func DumpRecords(stream io.Reader, outfile io.Writer, unnumbered bool) error {
	r := NewRecordReader(stream)
	for {
		offset := r.Tell()
		id, data, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name := RecordName(id)
		if IsCellRecord(id) {
			name = "  " + name
		}
		if unnumbered {
			if _, err := fmt.Fprintf(outfile, "%-20s len=%d\n", name, len(data)); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(outfile, "%08d  %-20s len=%d\n", offset, name, len(data)); err != nil {
			return err
		}
	}
}

// CountRecords summarises a stream's records. It produces a sorted list of
// (record_name, count) lines.
func CountRecords(stream io.Reader, outfile io.Writer) error {
	r := NewRecordReader(stream)
	counts := make(map[string]int)
	for {
		id, _, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		counts[RecordName(id)]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(outfile, "%-20s %d\n", name, counts[name]); err != nil {
			return err
		}
	}
	return nil
}
