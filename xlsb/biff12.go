package xlsb

import "fmt"

// BIFF12 record type constants. Record IDs are encoded as variable-length
// integers inside the binary stream; the values below match the constants
// defined by the ECMA-376 specification.
const (
	// Worksheet cell records
	BIFF_ROW             = 0x00
	BIFF_BLANK           = 0x01
	BIFF_NUM             = 0x02
	BIFF_BOOLERR         = 0x03
	BIFF_BOOL            = 0x04
	BIFF_FLOAT           = 0x05
	BIFF_STRING          = 0x07
	BIFF_FORMULA_STRING  = 0x08
	BIFF_FORMULA_FLOAT   = 0x09
	BIFF_FORMULA_BOOL    = 0x0A
	BIFF_FORMULA_BOOLERR = 0x0B

	// Shared string table records
	BIFF_SI      = 0x13
	BIFF_SST     = 0x019F
	BIFF_SST_END = 0x01A0

	// Workbook records
	BIFF_FILEVERSION   = 0x0180
	BIFF_WORKBOOK      = 0x0183
	BIFF_WORKBOOK_END  = 0x0184
	BIFF_BOOKVIEWS     = 0x0187
	BIFF_BOOKVIEWS_END = 0x0188
	BIFF_SHEETS        = 0x018F
	BIFF_SHEETS_END    = 0x0190
	BIFF_WORKBOOKPR    = 0x0199
	BIFF_SHEET         = 0x019C
	BIFF_WORKBOOKVIEW  = 0x019E

	// Worksheet structure records
	BIFF_WORKSHEET      = 0x0181
	BIFF_WORKSHEET_END  = 0x0182
	BIFF_SHEETDATA      = 0x0191
	BIFF_SHEETDATA_END  = 0x0192
	BIFF_DIMENSION      = 0x0194
	BIFF_COL            = 0x3C
	BIFF_COLS           = 0x0386
	BIFF_COLS_END       = 0x0387
	BIFF_HYPERLINK      = 0x03EE
	BIFF_MERGECELL      = 0x01B0
	BIFF_MERGECELLS     = 0x01B1
	BIFF_MERGECELLS_END = 0x01B2
)

var recordNames = map[uint32]string{
	BIFF_ROW:             "ROW",
	BIFF_BLANK:           "BLANK",
	BIFF_NUM:             "NUM",
	BIFF_BOOLERR:         "BOOLERR",
	BIFF_BOOL:            "BOOL",
	BIFF_FLOAT:           "FLOAT",
	BIFF_STRING:          "STRING",
	BIFF_FORMULA_STRING:  "FORMULA_STRING",
	BIFF_FORMULA_FLOAT:   "FORMULA_FLOAT",
	BIFF_FORMULA_BOOL:    "FORMULA_BOOL",
	BIFF_FORMULA_BOOLERR: "FORMULA_BOOLERR",
	BIFF_SI:              "SI",
	BIFF_SST:             "SST",
	BIFF_SST_END:         "SST_END",
	BIFF_FILEVERSION:     "FILEVERSION",
	BIFF_WORKBOOK:        "WORKBOOK",
	BIFF_WORKBOOK_END:    "WORKBOOK_END",
	BIFF_BOOKVIEWS:       "BOOKVIEWS",
	BIFF_BOOKVIEWS_END:   "BOOKVIEWS_END",
	BIFF_SHEETS:          "SHEETS",
	BIFF_SHEETS_END:      "SHEETS_END",
	BIFF_WORKBOOKPR:      "WORKBOOKPR",
	BIFF_SHEET:           "SHEET",
	BIFF_WORKBOOKVIEW:    "WORKBOOKVIEW",
	BIFF_WORKSHEET:       "WORKSHEET",
	BIFF_WORKSHEET_END:   "WORKSHEET_END",
	BIFF_SHEETDATA:       "SHEETDATA",
	BIFF_SHEETDATA_END:   "SHEETDATA_END",
	BIFF_DIMENSION:       "DIMENSION",
	BIFF_COL:             "COL",
	BIFF_COLS:            "COLS",
	BIFF_COLS_END:        "COLS_END",
	BIFF_HYPERLINK:       "HYPERLINK",
	BIFF_MERGECELL:       "MERGECELL",
	BIFF_MERGECELLS:      "MERGECELLS",
	BIFF_MERGECELLS_END:  "MERGECELLS_END",
}

// RecordName returns a text representation of a BIFF12 record type.
func RecordName(id uint32) string {
	if name, ok := recordNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%04X)", id)
}

// IsCellRecord checks if the given record type carries a cell value.
func IsCellRecord(id uint32) bool {
	return id >= BIFF_BLANK && id <= BIFF_FORMULA_BOOLERR
}
