package cmd

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yamitzky/xlsb-go/xlsb"
)

var (
	entryName  string
	counts     bool
	unnumbered bool
)

// dumpCmd represents the dump command.
var dumpCmd = &cobra.Command{
	Use:   "dump <workbook.xlsb>",
	Short: "List the BIFF12 records of one entry in an XLSB workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		zr, err := zip.OpenReader(args[0])
		if err != nil {
			return err
		}
		defer zr.Close()

		for _, f := range zr.File {
			logger.Debug("container entry", zap.String("name", f.Name), zap.Uint64("size", f.UncompressedSize64))
		}

		var entry *zip.File
		for _, f := range zr.File {
			if f.Name == entryName {
				entry = f
				break
			}
		}
		if entry == nil {
			var bins []string
			for _, f := range zr.File {
				if strings.HasSuffix(f.Name, ".bin") {
					bins = append(bins, f.Name)
				}
			}
			return fmt.Errorf("no entry %q in %s (binary entries: %s)", entryName, args[0], strings.Join(bins, ", "))
		}

		rc, err := entry.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		if counts {
			return xlsb.CountRecords(rc, os.Stdout)
		}
		return xlsb.DumpRecords(rc, os.Stdout, unnumbered)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVar(&entryName, "entry", "xl/worksheets/sheet1.bin", "Container entry to dump")
	dumpCmd.Flags().BoolVar(&counts, "counts", false, "Summarise record counts instead of listing records")
	dumpCmd.Flags().BoolVar(&unnumbered, "unnumbered", false, "Omit offsets for meaningful diffs")
}
