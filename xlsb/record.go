package xlsb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"reflect"

	"golang.org/x/text/encoding/unicode"
)

// maxLen is the largest length representable by the 7-bit group length
// encoding (4 groups of 7 bits).
const maxLen = 1<<28 - 1

var (
	utf16le  = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	utf16BOM = []byte{0xFF, 0xFE}
)

// encodeUTF16 encodes a string as UTF-16LE code units with any leading
// byte-order mark stripped. The result always has an even byte count.
func encodeUTF16(s string) ([]byte, error) {
	data, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	return bytes.TrimPrefix(data, utf16BOM), nil
}

// RecordWriter writes BIFF12 records to a byte sink. It exclusively owns the
// write position of its sink; it is not safe for concurrent use, and no two
// writers may share one sink.
//
// Records are written as a variable-length record ID followed by a
// length-prefixed payload. Sink failures propagate unchanged and abort the
// current write operation.
type RecordWriter struct {
	w       io.Writer
	table   *DispatchTable
	pos     int64
	scratch bytes.Buffer
	buf     [8]byte
}

// NewRecordWriter creates a RecordWriter bound to the given sink. The
// dispatch table resolves record IDs and encoders for values passed to
// WriteRecord; a nil table gets a fresh one. Seek and Skip are only available
// when the sink also implements io.Seeker.
func NewRecordWriter(w io.Writer, table *DispatchTable) *RecordWriter {
	if table == nil {
		table = NewDispatchTable()
	}
	return &RecordWriter{w: w, table: table}
}

// Write writes raw bytes to the sink, advancing the position.
func (w *RecordWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}

// Tell returns the current write position.
func (w *RecordWriter) Tell() int64 {
	return w.pos
}

// Seek repositions the sink, for patching previously written placeholder
// fields. It fails if the sink does not support seeking.
func (w *RecordWriter) Seek(offset int64, whence int) (int64, error) {
	s, ok := w.w.(io.Seeker)
	if !ok {
		return 0, NewXLSBError("sink of type %T does not support seeking", w.w)
	}
	pos, err := s.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	w.pos = pos
	return pos, nil
}

// Skip advances the write position by size bytes.
func (w *RecordWriter) Skip(size int64) error {
	_, err := w.Seek(size, io.SeekCurrent)
	return err
}

func (w *RecordWriter) writeByte(b byte) error {
	w.buf[0] = b
	_, err := w.Write(w.buf[:1])
	return err
}

// WriteUint8 writes an 8-bit integer.
func (w *RecordWriter) WriteUint8(v uint8) error {
	return w.writeByte(v)
}

// WriteUint16 writes a 16-bit little-endian integer.
func (w *RecordWriter) WriteUint16(v uint16) error {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	_, err := w.Write(w.buf[:2])
	return err
}

// WriteUint32 writes a 32-bit little-endian integer.
func (w *RecordWriter) WriteUint32(v uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	_, err := w.Write(w.buf[:4])
	return err
}

// WriteFloat32 writes a 32-bit little-endian IEEE-754 value.
func (w *RecordWriter) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes a 64-bit little-endian IEEE-754 value.
func (w *RecordWriter) WriteFloat64(v float64) error {
	binary.LittleEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	_, err := w.Write(w.buf[:8])
	return err
}

// WriteRecordID writes a record type identifier. The low 8 bits of the value
// are emitted first; the top bit of each emitted byte signals that another
// byte follows, up to 4 bytes. This is distinct from the length encoding:
// every byte carries a full 8 bits of the value.
func (w *RecordWriter) WriteRecordID(id uint32) error {
	for i := 0; i < 4; i++ {
		b := byte(id >> (8 * i))
		if err := w.writeByte(b); err != nil {
			return err
		}
		if b&0x80 == 0 {
			break
		}
	}
	return nil
}

// WriteLen writes a record or string byte count as up to four little-endian
// 7-bit groups, with the top bit set on every group except the last. Lengths
// outside the 28-bit range fail with ErrLengthOverflow.
func (w *RecordWriter) WriteLen(n int) error {
	if n < 0 || n > maxLen {
		return ErrLengthOverflow
	}
	v := uint32(n)
	for i := 0; i < 4; i++ {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if err := w.writeByte(b); err != nil {
			return err
		}
		if v == 0 {
			break
		}
	}
	return nil
}

// WriteText writes a string as a 32-bit code unit count followed by UTF-16LE
// code units. A leading byte-order mark is stripped and excluded from both
// the count and the payload.
func (w *RecordWriter) WriteText(s string) error {
	data, err := encodeUTF16(s)
	if err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(data) / 2)); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err = w.Write(data)
	return err
}

// WriteTextOrRef writes either literal text or a resolved shared-string
// index. Integer values (including SharedStringRef) are taken to be indices
// into the shared string table and are written as a bare 32-bit integer;
// strings are written via WriteText; anything else is written as its text
// representation.
func (w *RecordWriter) WriteTextOrRef(v interface{}) error {
	switch val := v.(type) {
	case SharedStringRef:
		return w.WriteUint32(uint32(val))
	case string:
		return w.WriteText(val)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.WriteUint32(uint32(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return w.WriteUint32(uint32(rv.Uint()))
	case reflect.String:
		return w.WriteText(rv.String())
	}
	return w.WriteText(fmt.Sprint(v))
}

// WriteBlob writes a length followed by raw bytes. Nothing beyond the length
// is written for an empty blob.
func (w *RecordWriter) WriteBlob(data []byte) error {
	if err := w.WriteLen(len(data)); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err := w.Write(data)
	return err
}

// WriteRecord resolves the record ID and encoder for v through the dispatch
// table and writes a full record: ID, payload length, payload.
func (w *RecordWriter) WriteRecord(v interface{}) error {
	h := w.table.Resolve(v)
	return w.composeRecord(h.ID, func(sw *RecordWriter) error {
		return h.Encode(sw, v)
	})
}

// composeRecord buffers the payload produced by fn through the writer's
// scratch buffer and emits it as a full record, so the declared length is
// exact. The sub-writer shares the dispatch table; its sink is the scratch
// buffer, so fn must not write records through w itself.
func (w *RecordWriter) composeRecord(id uint32, fn func(*RecordWriter) error) error {
	w.scratch.Reset()
	sw := &RecordWriter{w: &w.scratch, table: w.table}
	if err := fn(sw); err != nil {
		return err
	}
	return w.writeRecordBlob(id, w.scratch.Bytes())
}

// writeRecordBlob writes a full record whose payload is already composed.
func (w *RecordWriter) writeRecordBlob(id uint32, payload []byte) error {
	if err := w.WriteRecordID(id); err != nil {
		return err
	}
	return w.WriteBlob(payload)
}
