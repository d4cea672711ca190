/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xoviat/jbom/lib"
	"go.uber.org/zap"
)

var (
	genBOM    bomOptions
	genPOS    posOptions
	genDir    string
	genFormat string
	genBundle string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <project>",
	Short: "Generate the BOM and CPL for a project.",
	Long: `Generate both assembly files for a KiCad project.

	Writes <name>_bom.<ext> and <name>_cpl.<ext> into the output directory,
	optionally archived together for upload:

		- jbom generate ./board -f jlc --bundle board-jlc.zip
	`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]

		fab, err := loadFabricator()
		if err != nil {
			return err
		}

		loader := newLoader()

		/*
			The schematic drives the BOM and the board drives placement
		*/
		components, err := loader.LoadComponents(cmd.Context(), project)
		if err != nil {
			return fmt.Errorf("load components: %w", err)
		}

		placements, err := loader.LoadPlacements(cmd.Context(), project)
		if err != nil {
			return fmt.Errorf("load placements: %w", err)
		}

		bom, err := buildBOM(components, fab, genBOM)
		if err != nil {
			return err
		}

		genPOS.includeDNP = genBOM.includeDNP
		genPOS.includeExcluded = genBOM.includeExcluded
		cpl, err := buildPOS(placements, fab, genPOS)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(genDir, 0755); err != nil {
			return err
		}

		name := projectName(project)
		if fab != nil {
			name += "_" + fab.ID
		}

		ext := "." + strings.TrimPrefix(genFormat, ".")
		bomPath := filepath.Join(genDir, name+"_bom"+ext)
		cplPath := filepath.Join(genDir, name+"_cpl"+ext)

		if err := lib.WriteFile(bomPath, "BOM", bom); err != nil {
			return err
		}
		if err := lib.WriteFile(cplPath, "CPL", cpl); err != nil {
			return err
		}
		logger.Info("wrote outputs", zap.String("bom", bomPath), zap.String("cpl", cplPath))

		if genBundle != "" {
			if err := lib.Bundle(genBundle, []string{bomPath, cplPath}); err != nil {
				return fmt.Errorf("bundle %s: %w", genBundle, err)
			}
			logger.Info("wrote bundle", zap.String("path", genBundle))
		}

		return nil
	},
}

// projectName is the base name of a project file or directory.
func projectName(project string) string {
	abs, err := filepath.Abs(project)
	if err != nil {
		abs = project
	}

	base := filepath.Base(abs)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func init() {
	rootCmd.AddCommand(generateCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports Persistent Flags which will work for this command
	// and all subcommands, e.g.:
	// generateCmd.PersistentFlags().String("foo", "", "A help for foo")

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	addBOMFlags(generateCmd, &genBOM, "bom-")
	addPOSFlags(generateCmd, &genPOS, "pos-")
	generateCmd.Flags().StringVarP(&genDir, "dir", "d", ".", "output directory")
	generateCmd.Flags().StringVar(&genFormat, "format", "csv", "output format: csv or xlsx")
	generateCmd.Flags().StringVar(&genBundle, "bundle", "", "archive both outputs into this file (.zip, .tar.gz)")
}
