package xlsb

import (
	"encoding/binary"
	"io"
	"math"
)

// RecordReader reads BIFF12 records from a byte source. It is the decode
// counterpart of RecordWriter and is not safe for concurrent use.
type RecordReader struct {
	r   io.Reader
	pos int64
	buf [8]byte
}

// NewRecordReader creates a RecordReader bound to the given source.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: r}
}

// Tell returns the current read position.
func (r *RecordReader) Tell() int64 {
	return r.pos
}

func (r *RecordReader) read(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.pos += int64(n)
	return err
}

func (r *RecordReader) readByte() (byte, error) {
	if err := r.read(r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// ReadRecordID reads a record type identifier: little-endian full-byte
// groups, continuing while the just-read byte has its top bit set, up to 4
// bytes. io.EOF is returned only at a clean record boundary.
func (r *RecordReader) ReadRecordID() (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := r.readByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v |= uint32(b) << (8 * i)
		if b&0x80 == 0 {
			break
		}
	}
	return v, nil
}

// ReadLen reads a record or string byte count: little-endian 7-bit groups,
// continuing while the raw byte has its top bit set, up to 4 groups.
func (r *RecordReader) ReadLen() (int, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := r.readByte()
		if err != nil {
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int(v), nil
		}
	}
	return 0, NewXLSBError("length encoding continues past 4 bytes")
}

// ReadUint8 reads an 8-bit integer.
func (r *RecordReader) ReadUint8() (uint8, error) {
	return r.readByte()
}

// ReadUint16 reads a 16-bit little-endian integer.
func (r *RecordReader) ReadUint16() (uint16, error) {
	if err := r.read(r.buf[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.buf[:2]), nil
}

// ReadUint32 reads a 32-bit little-endian integer.
func (r *RecordReader) ReadUint32() (uint32, error) {
	if err := r.read(r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[:4]), nil
}

// ReadFloat32 reads a 32-bit little-endian IEEE-754 value.
func (r *RecordReader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads a 64-bit little-endian IEEE-754 value.
func (r *RecordReader) ReadFloat64() (float64, error) {
	if err := r.read(r.buf[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[:8])), nil
}

// ReadString reads a 32-bit code unit count followed by UTF-16LE code units.
// Counts beyond the 28-bit record length ceiling mark a corrupt stream and
// fail without allocating.
func (r *RecordReader) ReadString() (string, error) {
	units, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if units == 0 {
		return "", nil
	}
	if units > maxLen/2 {
		return "", NewXLSBError("string unit count %d exceeds the record size limit", units)
	}
	raw := make([]byte, int(units)*2)
	if err := r.read(raw); err != nil {
		return "", err
	}
	decoded, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// Next reads the next record, returning its type and payload. io.EOF marks
// the clean end of the stream.
func (r *RecordReader) Next() (uint32, []byte, error) {
	id, err := r.ReadRecordID()
	if err != nil {
		return 0, nil, err
	}
	n, err := r.ReadLen()
	if err != nil {
		if err == io.EOF {
			return 0, nil, io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}
	if n == 0 {
		return id, nil, nil
	}
	payload := make([]byte, n)
	if err := r.read(payload); err != nil {
		if err == io.EOF {
			return 0, nil, io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}
	return id, payload, nil
}
