/*
Copyright © 2020 Mars Galactic <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xoviat/jbom/lib"
	"github.com/xuri/excelize/v2"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import the association library.",
	Long: `Erase the association library and import it from an xlsx file.

	The first sheet must be named component-associations and hold rows of
	prefix, value, footprint and part number. A header row is skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		if !strings.HasSuffix(strings.ToLower(src), ".xlsx") {
			return fmt.Errorf("association file must be an excel spreadsheet")
		}

		f, err := excelize.OpenFile(src)
		if err != nil {
			return fmt.Errorf("failed to open excel file %s: %w", src, err)
		}
		defer f.Close()

		if f.GetSheetName(0) != string(lib.COMPONENTS_ASC_BKT) {
			return fmt.Errorf("%s sheet must be present", lib.COMPONENTS_ASC_BKT)
		}

		erows, err := f.Rows(f.GetSheetName(0))
		if err != nil {
			return fmt.Errorf("failed to read sheet: %w", err)
		}

		library, err := openLibrary()
		if err != nil {
			erows.Close()
			return fmt.Errorf("failed to open library: %w", err)
		}
		defer library.Close()

		done := make(chan struct{})
		rows := streamAssociationRows(done, erows)

		err = library.ImportAssociations(rows)

		// stop the reader and wait for it to release the sheet
		close(done)
		for range rows {
		}

		if err != nil {
			return fmt.Errorf("failed to import library: %w", err)
		}

		return nil
	},
}

// sheetRows is the subset of *excelize.Rows read during import.
type sheetRows interface {
	Next() bool
	Columns(opts ...excelize.Options) ([]string, error)
	Close() error
}

/*
	streamAssociationRows sends the association rows of sheet, skipping short
	rows and a leading header row. The channel is closed and the sheet released
	once the rows run out or done is closed.
*/
func streamAssociationRows(done <-chan struct{}, sheet sheetRows) <-chan []string {
	rows := make(chan []string, 100)
	go func() {
		defer close(rows)
		defer sheet.Close()

		first := true
		for sheet.Next() {
			row, err := sheet.Columns()
			if err != nil || len(row) < 4 {
				continue
			}

			if first {
				first = false
				if strings.EqualFold(row[0], "prefix") {
					continue
				}
			}

			select {
			case rows <- row:
			case <-done:
				return
			}
		}
	}()

	return rows
}

func init() {
	rootCmd.AddCommand(importCmd)
}
