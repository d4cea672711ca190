package lib

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver"
	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the header row followed by every data row.
func WriteCSV(w io.Writer, table *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return err
	}

	if err := writer.WriteAll(table.Rows); err != nil {
		return err
	}

	return writer.Error()
}

/*
	WriteXLSX writes the table to a single sheet workbook at dst.
*/
func WriteXLSX(dst, sheet string, table *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	return f.SaveAs(dst)
}

// WriteFile writes the table to dst, choosing xlsx or csv by extension. A
// dst of "-" or "" writes csv to stdout.
func WriteFile(dst, sheet string, table *Table) error {
	if dst == "" || dst == "-" {
		return WriteCSV(os.Stdout, table)
	}

	switch strings.ToLower(filepath.Ext(dst)) {
	case ".xlsx", ".xlsm":
		return WriteXLSX(dst, sheet, table)
	}

	fp, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer fp.Close()

	if err := WriteCSV(fp, table); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}

	return fp.Close()
}

// Bundle archives files into dst. The format follows the dst extension
// (.zip, .tar.gz, ...).
func Bundle(dst string, files []string) error {
	if Exists(dst) {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}

	return archiver.Archive(files, dst)
}
