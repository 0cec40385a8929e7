package xlsb

import "reflect"

// EncodeFunc writes the payload of one record. The surrounding record ID and
// payload length are written by RecordWriter.WriteRecord.
type EncodeFunc func(w *RecordWriter, v interface{}) error

// Handler pairs a record type with the encoder for its payload. Once
// resolved for a concrete type, the same Handler is returned for the
// lifetime of the dispatch table.
type Handler struct {
	ID     uint32
	Encode EncodeFunc
}

// SharedStringRef is a resolved index into the shared string table. It is
// serialized in place of literal text: same record type as a string, but the
// payload is the index rather than the characters.
type SharedStringRef uint32

var (
	intType     = reflect.TypeOf(int(0))
	float64Type = reflect.TypeOf(float64(0))
	boolType    = reflect.TypeOf(false)
	stringType  = reflect.TypeOf("")
)

// DispatchTable maps the concrete type of a value to the record type and
// encoder used to serialize it. Unregistered types are classified by kind
// into one of the base categories (whole number, real number, boolean, text)
// and the result is cached keyed by the concrete type; anything else falls
// back to text conversion. A table is reusable across sequential writers but
// is not safe for concurrent mutation.
type DispatchTable struct {
	entries map[reflect.Type]Handler
	misses  int // classifications performed outside the registered set
}

// NewDispatchTable creates a dispatch table preloaded with entries for Go's
// numeric, boolean and string types and for SharedStringRef.
func NewDispatchTable() *DispatchTable {
	t := &DispatchTable{entries: make(map[reflect.Type]Handler)}
	t.Register(int(0), BIFF_FLOAT, writeFloat64Payload)
	t.Register(int64(0), BIFF_FLOAT, writeFloat64Payload)
	t.Register(uint(0), BIFF_FLOAT, writeFloat64Payload)
	t.Register(uint64(0), BIFF_FLOAT, writeFloat64Payload)
	t.Register(int32(0), BIFF_NUM, writeNum32Payload)
	t.Register(int16(0), BIFF_NUM, writeNum16Payload)
	t.Register(int8(0), BIFF_NUM, writeNum8Payload)
	t.Register(uint32(0), BIFF_NUM, writeNum32Payload)
	t.Register(uint16(0), BIFF_NUM, writeNum16Payload)
	t.Register(uint8(0), BIFF_NUM, writeNum8Payload)
	t.Register(float64(0), BIFF_FLOAT, writeFloat64Payload)
	t.Register(float32(0), BIFF_FLOAT, writeFloat32Payload)
	t.Register(false, BIFF_BOOL, writeBoolPayload)
	t.Register("", BIFF_STRING, writeTextPayload)
	t.Register(SharedStringRef(0), BIFF_STRING, writeRefPayload)
	return t
}

// Register associates the concrete type of proto with a record type and
// payload encoder, replacing any previous entry for that type.
func (t *DispatchTable) Register(proto interface{}, id uint32, fn EncodeFunc) {
	t.entries[reflect.TypeOf(proto)] = Handler{ID: id, Encode: fn}
}

// Resolve returns the handler for the concrete type of v. Resolution never
// fails: unknown types classify into a base category or fall back to text
// conversion, and the outcome is cached for the concrete type.
func (t *DispatchTable) Resolve(v interface{}) Handler {
	if v == nil {
		return Handler{ID: BIFF_BLANK, Encode: writeBlankPayload}
	}
	rt := reflect.TypeOf(v)
	if h, ok := t.entries[rt]; ok {
		return h
	}
	t.misses++
	h := t.classify(rt)
	t.entries[rt] = h
	return h
}

func (t *DispatchTable) classify(rt reflect.Type) Handler {
	switch rt.Kind() {
	case reflect.Bool:
		return t.entries[boolType]
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return t.entries[intType]
	case reflect.Float32, reflect.Float64:
		return t.entries[float64Type]
	case reflect.String:
		return t.entries[stringType]
	}
	return Handler{ID: BIFF_STRING, Encode: writeAnyPayload}
}

// numFloat64 extracts any numeric value as a float64. Resolution guarantees
// the value has a numeric kind when this is called.
func numFloat64(v interface{}) float64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	}
	return rv.Float()
}

func numInt64(v interface{}) int64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float())
	}
	return rv.Int()
}

func writeFloat64Payload(w *RecordWriter, v interface{}) error {
	return w.WriteFloat64(numFloat64(v))
}

func writeFloat32Payload(w *RecordWriter, v interface{}) error {
	return w.WriteFloat32(float32(numFloat64(v)))
}

func writeNum32Payload(w *RecordWriter, v interface{}) error {
	return w.WriteUint32(uint32(numInt64(v)))
}

func writeNum16Payload(w *RecordWriter, v interface{}) error {
	return w.WriteUint16(uint16(numInt64(v)))
}

func writeNum8Payload(w *RecordWriter, v interface{}) error {
	return w.WriteUint8(uint8(numInt64(v)))
}

func writeBoolPayload(w *RecordWriter, v interface{}) error {
	if reflect.ValueOf(v).Bool() {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

func writeTextPayload(w *RecordWriter, v interface{}) error {
	return w.WriteText(reflect.ValueOf(v).String())
}

func writeRefPayload(w *RecordWriter, v interface{}) error {
	return w.WriteUint32(uint32(numInt64(v)))
}

// writeAnyPayload is the fallback for unclassifiable types: the value's text
// representation, with integer passthrough for shared-string indices.
func writeAnyPayload(w *RecordWriter, v interface{}) error {
	return w.WriteTextOrRef(v)
}

func writeBlankPayload(w *RecordWriter, v interface{}) error {
	return nil
}
