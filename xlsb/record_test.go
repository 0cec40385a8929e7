package xlsb

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteRecordID(t *testing.T) {
	tests := []struct {
		id       uint32
		expected []byte
	}{
		{0x00, []byte{0x00}},
		{0x05, []byte{0x05}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x80, 0x00}},
		{BIFF_SHEET, []byte{0x9C, 0x01}},
		{BIFF_SST, []byte{0x9F, 0x01}},
		{0xFFFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		w := NewRecordWriter(&buf, nil)
		if err := w.WriteRecordID(test.id); err != nil {
			t.Fatalf("WriteRecordID(0x%X) failed: %v", test.id, err)
		}
		if !bytes.Equal(buf.Bytes(), test.expected) {
			t.Errorf("WriteRecordID(0x%X) = % X, expected % X", test.id, buf.Bytes(), test.expected)
		}

		r := NewRecordReader(&buf)
		got, err := r.ReadRecordID()
		if err != nil {
			t.Fatalf("ReadRecordID() failed: %v", err)
		}
		if got != test.id {
			t.Errorf("ReadRecordID() = 0x%X, expected 0x%X", got, test.id)
		}
	}
}

func TestWriteLen(t *testing.T) {
	tests := []struct {
		n        int
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x80, 0x01}},
		{0x3FFF, []byte{0xFF, 0x7F}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{maxLen, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		w := NewRecordWriter(&buf, nil)
		if err := w.WriteLen(test.n); err != nil {
			t.Fatalf("WriteLen(%d) failed: %v", test.n, err)
		}
		if !bytes.Equal(buf.Bytes(), test.expected) {
			t.Errorf("WriteLen(%d) = % X, expected % X", test.n, buf.Bytes(), test.expected)
		}

		r := NewRecordReader(&buf)
		got, err := r.ReadLen()
		if err != nil {
			t.Fatalf("ReadLen() failed: %v", err)
		}
		if got != test.n {
			t.Errorf("ReadLen() = %d, expected %d", got, test.n)
		}
	}
}

func TestWriteLenOverflow(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, nil)

	for _, n := range []int{maxLen + 1, -1} {
		err := w.WriteLen(n)
		if !errors.Is(err, ErrLengthOverflow) {
			t.Errorf("WriteLen(%d) = %v, expected ErrLengthOverflow", n, err)
		}
	}
	if buf.Len() != 0 {
		t.Errorf("WriteLen overflow wrote %d bytes, expected none", buf.Len())
	}
}

func TestReadLenMalformed(t *testing.T) {
	r := NewRecordReader(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80}))
	if _, err := r.ReadLen(); err == nil {
		t.Error("ReadLen() on 4 continuation bytes should fail")
	}
}

func TestScalarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, nil)

	u8s := []uint8{0, 1, 0x7F, 0xFF}
	u16s := []uint16{0, 1, 0x8000, 0xFFFF}
	u32s := []uint32{0, 1, 0x80000000, 0xFFFFFFFF}
	f32s := []float32{0, 1.5, -3.25, math.MaxFloat32, math.SmallestNonzeroFloat32}
	f64s := []float64{0, 3.14, -2.718281828, math.MaxFloat64, math.SmallestNonzeroFloat64}

	for _, v := range u8s {
		if err := w.WriteUint8(v); err != nil {
			t.Fatalf("WriteUint8(%d) failed: %v", v, err)
		}
	}
	for _, v := range u16s {
		if err := w.WriteUint16(v); err != nil {
			t.Fatalf("WriteUint16(%d) failed: %v", v, err)
		}
	}
	for _, v := range u32s {
		if err := w.WriteUint32(v); err != nil {
			t.Fatalf("WriteUint32(%d) failed: %v", v, err)
		}
	}
	for _, v := range f32s {
		if err := w.WriteFloat32(v); err != nil {
			t.Fatalf("WriteFloat32(%g) failed: %v", v, err)
		}
	}
	for _, v := range f64s {
		if err := w.WriteFloat64(v); err != nil {
			t.Fatalf("WriteFloat64(%g) failed: %v", v, err)
		}
	}

	r := NewRecordReader(&buf)
	for _, v := range u8s {
		got, err := r.ReadUint8()
		if err != nil || got != v {
			t.Errorf("ReadUint8() = %d, %v, expected %d", got, err, v)
		}
	}
	for _, v := range u16s {
		got, err := r.ReadUint16()
		if err != nil || got != v {
			t.Errorf("ReadUint16() = %d, %v, expected %d", got, err, v)
		}
	}
	for _, v := range u32s {
		got, err := r.ReadUint32()
		if err != nil || got != v {
			t.Errorf("ReadUint32() = %d, %v, expected %d", got, err, v)
		}
	}
	for _, v := range f32s {
		got, err := r.ReadFloat32()
		if err != nil || got != v {
			t.Errorf("ReadFloat32() = %g, %v, expected %g", got, err, v)
		}
	}
	for _, v := range f64s {
		got, err := r.ReadFloat64()
		if err != nil || got != v {
			t.Errorf("ReadFloat64() = %g, %v, expected %g", got, err, v)
		}
	}
}

func TestWriteTextRoundTrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Hello", "Hello"},
		{"héllo wörld", "héllo wörld"},
		{"日本語", "日本語"},
		{"\U00010437", "\U00010437"}, // surrogate pair
		{"\uFEFFHello", "Hello"},     // leading byte-order mark is stripped
	}

	for _, test := range tests {
		var buf bytes.Buffer
		w := NewRecordWriter(&buf, nil)
		if err := w.WriteText(test.input); err != nil {
			t.Fatalf("WriteText(%q) failed: %v", test.input, err)
		}
		if (buf.Len()-4)%2 != 0 {
			t.Errorf("WriteText(%q) payload has odd byte count %d", test.input, buf.Len()-4)
		}

		r := NewRecordReader(&buf)
		got, err := r.ReadString()
		if err != nil {
			t.Fatalf("ReadString() failed: %v", err)
		}
		if got != test.expected {
			t.Errorf("ReadString() = %q, expected %q", got, test.expected)
		}
	}
}

func TestWriteTextOrRef(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, nil)
	if err := w.WriteTextOrRef(SharedStringRef(7)); err != nil {
		t.Fatalf("WriteTextOrRef(SharedStringRef) failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x07, 0x00, 0x00, 0x00}) {
		t.Errorf("WriteTextOrRef(SharedStringRef(7)) = % X, expected the bare index", buf.Bytes())
	}

	buf.Reset()
	if err := w.WriteTextOrRef(12); err != nil {
		t.Fatalf("WriteTextOrRef(int) failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x0C, 0x00, 0x00, 0x00}) {
		t.Errorf("WriteTextOrRef(12) = % X, expected the bare integer", buf.Bytes())
	}

	buf.Reset()
	if err := w.WriteTextOrRef("ab"); err != nil {
		t.Fatalf("WriteTextOrRef(string) failed: %v", err)
	}
	expected := []byte{0x02, 0x00, 0x00, 0x00, 'a', 0x00, 'b', 0x00}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("WriteTextOrRef(\"ab\") = % X, expected % X", buf.Bytes(), expected)
	}
}

func TestWriteBlob(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, nil)
	if err := w.WriteBlob(nil); err != nil {
		t.Fatalf("WriteBlob(nil) failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x00}) {
		t.Errorf("WriteBlob(nil) = % X, expected just the zero length", buf.Bytes())
	}

	buf.Reset()
	if err := w.WriteBlob([]byte{0xAA, 0xBB}); err != nil {
		t.Fatalf("WriteBlob failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x02, 0xAA, 0xBB}) {
		t.Errorf("WriteBlob = % X, expected length then raw bytes", buf.Bytes())
	}
}

func TestComposeRecordReusesScratch(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, nil)
	payloads := [][]byte{{0xAA, 0xBB, 0xCC}, {0x01}, nil}
	for _, p := range payloads {
		err := w.composeRecord(BIFF_ROW, func(sw *RecordWriter) error {
			_, err := sw.Write(p)
			return err
		})
		if err != nil {
			t.Fatalf("composeRecord failed: %v", err)
		}
	}

	r := NewRecordReader(&buf)
	for i, p := range payloads {
		id, data, err := r.Next()
		if err != nil {
			t.Fatalf("Next() failed: %v", err)
		}
		if id != BIFF_ROW || !bytes.Equal(data, p) {
			t.Errorf("record %d = (0x%02X, % X), expected (0x%02X, % X)", i, id, data, BIFF_ROW, p)
		}
	}
}

func TestTellSeekSkip(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "records.bin"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := NewRecordWriter(f, nil)
	if err := w.WriteUint32(0); err != nil { // placeholder
		t.Fatal(err)
	}
	patchAt := w.Tell() - 4
	if err := w.WriteFloat64(3.14); err != nil {
		t.Fatal(err)
	}
	end := w.Tell()
	if end != 12 {
		t.Errorf("Tell() = %d, expected 12", end)
	}

	if _, err := w.Seek(patchAt, 0); err != nil {
		t.Fatalf("Seek() failed: %v", err)
	}
	if err := w.WriteUint32(42); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Seek(end, 0); err != nil {
		t.Fatal(err)
	}
	if w.Tell() != end {
		t.Errorf("Tell() after patch = %d, expected %d", w.Tell(), end)
	}
	if err := w.Skip(4); err != nil {
		t.Fatalf("Skip() failed: %v", err)
	}
	if w.Tell() != end+4 {
		t.Errorf("Tell() after Skip(4) = %d, expected %d", w.Tell(), end+4)
	}
	if _, err := w.Seek(end, 0); err != nil {
		t.Fatal(err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	r := NewRecordReader(f)
	patched, err := r.ReadUint32()
	if err != nil || patched != 42 {
		t.Errorf("patched field = %d, %v, expected 42", patched, err)
	}
	v, err := r.ReadFloat64()
	if err != nil || v != 3.14 {
		t.Errorf("payload after patch = %g, %v, expected 3.14", v, err)
	}
}

func TestSeekUnseekableSink(t *testing.T) {
	w := NewRecordWriter(&bytes.Buffer{}, nil)
	if _, err := w.Seek(0, 0); err == nil {
		t.Error("Seek() on a plain buffer should fail")
	}
}
