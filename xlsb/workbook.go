package xlsb

import (
	"fmt"
	"io"
)

// Container abstracts the package layer that holds the workbook's binary
// entries. Entries must be written sequentially: each returned writer is
// valid until the next Create call. Assembling the surrounding archive and
// its XML manifests is the container implementation's concern, not the
// codec's.
type Container interface {
	Create(name string) (io.Writer, error)
}

// workbookViewPayload is the default WORKBOOKVIEW record payload (window
// geometry and active-tab defaults).
var workbookViewPayload = []byte{
	0xE0, 0x01, 0x00, 0x00, 0x78, 0x00, 0x00, 0x00,
	0x13, 0x92, 0x00, 0x00, 0x23, 0x46, 0x00, 0x00,
	0x58, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x00, 0x00, 0x78,
}

// Workbook writes the binary entries of one workbook into a Container: one
// worksheet stream per sheet, then xl/workbook.bin and xl/sharedStrings.bin
// on Close. One dispatch table and one shared string table are used for the
// life of the workbook.
type Workbook struct {
	c       Container
	table   *DispatchTable
	strings *StringTable
	sheets  []string
	sheet   *WorksheetWriter
	closed  bool
}

// NewWorkbook creates a workbook writing into the given container.
func NewWorkbook(c Container) *Workbook {
	return &Workbook{
		c:       c,
		table:   NewDispatchTable(),
		strings: NewStringTable(),
	}
}

// Sheets returns the names of the sheets created so far, in order.
func (wb *Workbook) Sheets() []string {
	return wb.sheets
}

// Strings returns the workbook's shared string table.
func (wb *Workbook) Strings() *StringTable {
	return wb.strings
}

// CreateSheet starts a new worksheet entry. Any worksheet still open is
// closed first, since container entries are sequential. Sheet names must be
// unique within the workbook.
func (wb *Workbook) CreateSheet(name string) (*WorksheetWriter, error) {
	if wb.closed {
		return nil, NewXLSBError("workbook already closed")
	}
	for _, s := range wb.sheets {
		if s == name {
			return nil, NewXLSBError("duplicate sheet name %q", name)
		}
	}
	if wb.sheet != nil {
		if err := wb.sheet.Close(); err != nil {
			return nil, err
		}
	}
	entry := fmt.Sprintf("xl/worksheets/sheet%d.bin", len(wb.sheets)+1)
	w, err := wb.c.Create(entry)
	if err != nil {
		return nil, err
	}
	wb.sheets = append(wb.sheets, name)
	wb.sheet = NewWorksheetWriter(NewRecordWriter(w, wb.table), wb.strings)
	return wb.sheet, nil
}

// Close finishes any open worksheet and writes the workbook and shared
// string entries.
func (wb *Workbook) Close() error {
	if wb.closed {
		return nil
	}
	if wb.sheet != nil {
		if err := wb.sheet.Close(); err != nil {
			return err
		}
	}
	if err := wb.writeWorkbookEntry(); err != nil {
		return err
	}
	if err := wb.writeSharedStringsEntry(); err != nil {
		return err
	}
	wb.closed = true
	return nil
}

func (wb *Workbook) writeWorkbookEntry() error {
	w, err := wb.c.Create("xl/workbook.bin")
	if err != nil {
		return err
	}
	rw := NewRecordWriter(w, wb.table)

	if err := rw.writeRecordBlob(BIFF_WORKBOOK, nil); err != nil {
		return err
	}
	err = rw.composeRecord(BIFF_FILEVERSION, func(sw *RecordWriter) error {
		if _, err := sw.Write(make([]byte, 16)); err != nil { // reserved
			return err
		}
		for _, s := range []string{"xl", "5", "5", "9303"} {
			if err := sw.WriteText(s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	err = rw.composeRecord(BIFF_WORKBOOKPR, func(sw *RecordWriter) error {
		if err := sw.WriteUint32(0x00010020); err != nil { // flags
			return err
		}
		if err := sw.WriteUint32(0x0001E542); err != nil { // default theme version
			return err
		}
		return sw.WriteUint32(0) // no codename
	})
	if err != nil {
		return err
	}

	records := []struct {
		id      uint32
		payload []byte
	}{
		{BIFF_BOOKVIEWS, nil},
		{BIFF_WORKBOOKVIEW, workbookViewPayload},
		{BIFF_BOOKVIEWS_END, nil},
		{BIFF_SHEETS, nil},
	}
	for _, rec := range records {
		if err := rw.writeRecordBlob(rec.id, rec.payload); err != nil {
			return err
		}
	}
	for i, name := range wb.sheets {
		sheetID := i + 1
		err := rw.composeRecord(BIFF_SHEET, func(sw *RecordWriter) error {
			if _, err := sw.Write(make([]byte, 4)); err != nil { // visible state
				return err
			}
			if err := sw.WriteUint32(uint32(sheetID)); err != nil {
				return err
			}
			if err := sw.WriteText(fmt.Sprintf("rId%d", sheetID)); err != nil {
				return err
			}
			return sw.WriteText(name)
		})
		if err != nil {
			return err
		}
	}
	if err := rw.writeRecordBlob(BIFF_SHEETS_END, nil); err != nil {
		return err
	}
	return rw.writeRecordBlob(BIFF_WORKBOOK_END, nil)
}

func (wb *Workbook) writeSharedStringsEntry() error {
	w, err := wb.c.Create("xl/sharedStrings.bin")
	if err != nil {
		return err
	}
	return wb.strings.WriteTo(NewRecordWriter(w, wb.table))
}
