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
	"go.uber.org/zap"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export the association library.",
	Long:  `Export the component association library in the xlsx format.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dst := args[0]
		if !strings.HasSuffix(dst, "xlsx") {
			return fmt.Errorf("export file name must be an excel file")
		}

		library, err := openLibrary()
		if err != nil {
			return fmt.Errorf("failed to open library: %w", err)
		}
		defer library.Close()

		associations, err := library.ExportAssociations()
		if err != nil {
			return err
		}

		table := &lib.Table{
			Headers: []string{"Prefix", "Value", "Footprint", "Part Number"},
		}
		for _, association := range associations {
			table.Rows = append(table.Rows, association.Row())
		}

		if err := lib.WriteXLSX(dst, string(lib.COMPONENTS_ASC_BKT), table); err != nil {
			return err
		}

		logger.Info("exported associations", zap.Int("count", len(associations)), zap.String("path", dst))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
