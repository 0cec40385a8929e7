package xlsb

import (
	"bytes"
	"io"
)

// StringTable holds the workbook's deduplicated text values. Cell records
// carry indices into this table instead of literal text. Count tracks every
// reference handed out, UniqueCount the distinct strings stored.
type StringTable struct {
	strings     []string
	index       map[string]int
	count       int
	uniqueCount int
}

// NewStringTable creates an empty shared string table.
func NewStringTable() *StringTable {
	return &StringTable{index: make(map[string]int)}
}

// Add records one reference to s and returns its index, storing the string
// on first sight.
func (st *StringTable) Add(s string) SharedStringRef {
	st.count++
	if idx, ok := st.index[s]; ok {
		return SharedStringRef(idx)
	}
	idx := len(st.strings)
	st.strings = append(st.strings, s)
	st.index[s] = idx
	st.uniqueCount++
	return SharedStringRef(idx)
}

// Get returns the string at the given index.
func (st *StringTable) Get(idx int) (string, error) {
	if idx < 0 || idx >= len(st.strings) {
		return "", NewXLSBError("shared string index %d out of range (%d strings)", idx, len(st.strings))
	}
	return st.strings[idx], nil
}

// Len returns the number of distinct strings stored.
func (st *StringTable) Len() int {
	return len(st.strings)
}

// Count returns the total number of references recorded.
func (st *StringTable) Count() int {
	return st.count
}

// UniqueCount returns the number of distinct strings recorded.
func (st *StringTable) UniqueCount() int {
	return st.uniqueCount
}

// WriteTo writes the table as an SST record stream: the SST header with the
// reference and unique counts, one SI record per string, then SST_END.
func (st *StringTable) WriteTo(w *RecordWriter) error {
	if err := w.WriteRecordID(BIFF_SST); err != nil {
		return err
	}
	if err := w.WriteLen(8); err != nil { // always two 32-bit counts
		return err
	}
	if err := w.WriteUint32(uint32(st.count)); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(st.uniqueCount)); err != nil {
		return err
	}
	for _, s := range st.strings {
		err := w.composeRecord(BIFF_SI, func(sw *RecordWriter) error {
			if err := sw.WriteUint8(0); err != nil { // plain string, no rich text
				return err
			}
			return sw.WriteText(s)
		})
		if err != nil {
			return err
		}
	}
	if err := w.WriteRecordID(BIFF_SST_END); err != nil {
		return err
	}
	return w.WriteLen(0)
}

// ReadFrom parses an SST record stream produced by WriteTo (or by another
// conforming writer), replacing the table's contents.
func (st *StringTable) ReadFrom(r *RecordReader) error {
	st.strings = st.strings[:0]
	st.index = make(map[string]int)
	st.count = 0
	st.uniqueCount = 0
	for {
		id, data, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch id {
		case BIFF_SST:
			pr := NewRecordReader(bytes.NewReader(data))
			count, err := pr.ReadUint32()
			if err != nil {
				return err
			}
			unique, err := pr.ReadUint32()
			if err != nil {
				return err
			}
			st.count = int(count)
			st.uniqueCount = int(unique)
		case BIFF_SI:
			pr := NewRecordReader(bytes.NewReader(data))
			if _, err := pr.ReadUint8(); err != nil {
				return err
			}
			s, err := pr.ReadString()
			if err != nil {
				return err
			}
			st.index[s] = len(st.strings)
			st.strings = append(st.strings, s)
		case BIFF_SST_END:
			return nil
		}
	}
}
