package cmd

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yamitzky/xlsb-go/xlsb"
)

var (
	sheetName  string
	rawStrings bool
)

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.bin"/>
</Relationships>`

// zipContainer adapts an archive writer to the codec's Container interface.
// The archive's XML manifests are the converter's concern, not the codec's.
type zipContainer struct {
	zw  *zip.Writer
	log *zap.Logger
}

func (c *zipContainer) Create(name string) (io.Writer, error) {
	c.log.Debug("creating container entry", zap.String("name", name))
	return c.zw.Create(name)
}

func contentTypesXML(sheets int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` + "\n")
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` + "\n")
	b.WriteString(`<Default Extension="bin" ContentType="application/vnd.ms-excel.sheet.binary.macroEnabled.main"/>` + "\n")
	b.WriteString(`<Override PartName="/xl/workbook.bin" ContentType="application/vnd.ms-excel.workbook"/>` + "\n")
	b.WriteString(`<Override PartName="/xl/sharedStrings.bin" ContentType="application/vnd.ms-excel.sharedStrings"/>` + "\n")
	for i := 1; i <= sheets; i++ {
		fmt.Fprintf(&b, `<Override PartName="/xl/worksheets/sheet%d.bin" ContentType="application/vnd.ms-excel.worksheet"/>`+"\n", i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func workbookRelsXML(sheets int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + "\n")
	for i := 1; i <= sheets; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.bin"/>`+"\n", i, i)
	}
	fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.bin"/>`+"\n", sheets+1)
	b.WriteString(`</Relationships>`)
	return b.String()
}

// cellValue infers a typed cell from CSV text: numbers and booleans are
// detected, empty fields become blank cells, everything else stays text.
func cellValue(field string) interface{} {
	if rawStrings {
		return field
	}
	if field == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return f
	}
	switch strings.ToLower(field) {
	case "true":
		return true
	case "false":
		return false
	}
	return field
}

// convertCmd represents the convert command.
var convertCmd = &cobra.Command{
	Use:   "convert <input.csv> <output.xlsb>",
	Short: "Convert a CSV file into an XLSB workbook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		reader := csv.NewReader(in)
		reader.FieldsPerRecord = -1
		raw, err := reader.ReadAll()
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		rows := make([][]interface{}, len(raw))
		for i, record := range raw {
			row := make([]interface{}, len(record))
			for j, field := range record {
				row[j] = cellValue(field)
			}
			rows[i] = row
		}

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		zw := zip.NewWriter(out)
		c := &zipContainer{zw: zw, log: logger}

		// Manifests first, then the binary entries through the codec.
		manifests := []struct {
			name, body string
		}{
			{"[Content_Types].xml", contentTypesXML(1)},
			{"_rels/.rels", relsXML},
			{"xl/_rels/workbook.bin.rels", workbookRelsXML(1)},
		}
		for _, m := range manifests {
			w, err := c.Create(m.name)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, m.body); err != nil {
				return err
			}
		}

		wb := xlsb.NewWorkbook(c)
		ws, err := wb.CreateSheet(sheetName)
		if err != nil {
			return err
		}
		if err := ws.WriteTable(rows); err != nil {
			return err
		}
		if err := wb.Close(); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}

		logger.Info("converted",
			zap.String("input", args[0]),
			zap.String("output", args[1]),
			zap.Int("rows", len(rows)),
			zap.Int("shared_strings", wb.Strings().UniqueCount()),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&sheetName, "sheet-name", "Sheet1", "Name of the generated worksheet")
	convertCmd.Flags().BoolVar(&rawStrings, "raw-strings", false, "Keep every CSV field as text instead of inferring numbers and booleans")
}
