package xlsb

import (
	"io"
)

// rowTail is the fixed remainder of a ROW record after the 32-bit row index
// (heights, flags and span bookkeeping at their defaults).
var rowTail = []byte{
	0x00, 0x00, 0x00, 0x00, 0x2C, 0x01, 0x00, 0x00,
	0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x02, 0x00, 0x00, 0x00,
}

// WorksheetWriter emits the record stream of one xl/worksheets/sheetN.bin
// entry: WORKSHEET and DIMENSION headers, SHEETDATA with ROW and cell value
// records, then the closing records.
//
// When the sink is seekable the DIMENSION record starts as a placeholder and
// is patched on Close once the row and column counts are known; non-seekable
// sinks must declare the dimensions upfront via SetDimension.
//
// With a shared string table attached, text cells are deduplicated into it
// and written as index references; without one they are written as literal
// text.
type WorksheetWriter struct {
	w        *RecordWriter
	strings  *StringTable
	dimPatch int64
	rowIndex int
	rows     int
	cols     int
	fixed    bool
	started  bool
	closed   bool
}

// NewWorksheetWriter creates a worksheet writer over w. strings may be nil.
func NewWorksheetWriter(w *RecordWriter, strings *StringTable) *WorksheetWriter {
	return &WorksheetWriter{w: w, strings: strings, dimPatch: -1}
}

// SetDimension declares the sheet dimensions before any row is written,
// avoiding the seek-back patch on Close. Required for non-seekable sinks.
func (ws *WorksheetWriter) SetDimension(rows, cols int) error {
	if ws.started {
		return NewXLSBError("dimension must be set before the first row")
	}
	ws.rows = rows
	ws.cols = cols
	ws.fixed = true
	return nil
}

func (ws *WorksheetWriter) begin() error {
	if err := ws.w.writeRecordBlob(BIFF_WORKSHEET, nil); err != nil {
		return err
	}
	if err := ws.w.WriteRecordID(BIFF_DIMENSION); err != nil {
		return err
	}
	if err := ws.w.WriteLen(16); err != nil { // always four 32-bit bounds
		return err
	}
	if ws.fixed {
		if err := ws.writeDimension(ws.rows, ws.cols); err != nil {
			return err
		}
	} else {
		ws.dimPatch = ws.w.Tell()
		if _, err := ws.w.Write(make([]byte, 16)); err != nil {
			return err
		}
	}
	if err := ws.w.writeRecordBlob(BIFF_SHEETDATA, nil); err != nil {
		return err
	}
	ws.started = true
	return nil
}

func (ws *WorksheetWriter) writeDimension(rows, cols int) error {
	r2, c2 := rows-1, cols-1
	if r2 < 0 {
		r2 = 0
	}
	if c2 < 0 {
		c2 = 0
	}
	for _, v := range []uint32{0, uint32(r2), 0, uint32(c2)} {
		if err := ws.w.WriteUint32(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow writes one ROW record followed by a cell record per value. nil
// values become BLANK cells.
func (ws *WorksheetWriter) WriteRow(values []interface{}) error {
	if ws.closed {
		return NewXLSBError("worksheet already closed")
	}
	if !ws.started {
		if err := ws.begin(); err != nil {
			return err
		}
	}
	err := ws.w.composeRecord(BIFF_ROW, func(sw *RecordWriter) error {
		if err := sw.WriteUint32(uint32(ws.rowIndex)); err != nil {
			return err
		}
		_, err := sw.Write(rowTail)
		return err
	})
	if err != nil {
		return err
	}
	for col, v := range values {
		if err := ws.writeCell(col, v); err != nil {
			return err
		}
	}
	ws.rowIndex++
	if !ws.fixed {
		ws.rows = ws.rowIndex
		if len(values) > ws.cols {
			ws.cols = len(values)
		}
	}
	return nil
}

// writeCell writes one cell record: column, style, then the typed value
// payload, composed in the writer's scratch buffer so the record length is
// exact.
func (ws *WorksheetWriter) writeCell(col int, v interface{}) error {
	if s, ok := v.(string); ok && ws.strings != nil {
		v = ws.strings.Add(s)
	}
	h := ws.w.table.Resolve(v)
	return ws.w.composeRecord(h.ID, func(sw *RecordWriter) error {
		if err := sw.WriteUint32(uint32(col)); err != nil {
			return err
		}
		if err := sw.WriteUint32(0); err != nil { // default style
			return err
		}
		return h.Encode(sw, v)
	})
}

// Close writes the closing records and, for seekable sinks, patches the
// DIMENSION placeholder with the observed row and column counts.
func (ws *WorksheetWriter) Close() error {
	if ws.closed {
		return nil
	}
	if !ws.started {
		if err := ws.begin(); err != nil {
			return err
		}
	}
	if err := ws.w.writeRecordBlob(BIFF_SHEETDATA_END, nil); err != nil {
		return err
	}
	if err := ws.w.writeRecordBlob(BIFF_WORKSHEET_END, nil); err != nil {
		return err
	}
	if ws.dimPatch >= 0 && (ws.rows > 0 || ws.cols > 0) {
		end := ws.w.Tell()
		if _, err := ws.w.Seek(ws.dimPatch, io.SeekStart); err != nil {
			return err
		}
		if err := ws.writeDimension(ws.rows, ws.cols); err != nil {
			return err
		}
		if _, err := ws.w.Seek(end, io.SeekStart); err != nil {
			return err
		}
	}
	ws.closed = true
	return nil
}

// WriteTable writes a full table of rows and closes the worksheet. The
// dimensions are computed upfront, so any sink works.
func (ws *WorksheetWriter) WriteTable(rows [][]interface{}) error {
	if ws.started {
		return NewXLSBError("worksheet already started")
	}
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if err := ws.SetDimension(len(rows), cols); err != nil {
		return err
	}
	for _, row := range rows {
		if err := ws.WriteRow(row); err != nil {
			return err
		}
	}
	return ws.Close()
}
