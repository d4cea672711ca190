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
	"github.com/spf13/cobra"
	"github.com/xoviat/jbom/lib"
	"go.uber.org/zap"
)

type bomOptions struct {
	fields          string
	includeDNP      bool
	includeExcluded bool
	noLibrary       bool
}

var (
	bomOpts   bomOptions
	bomOutput string
)

// bomCmd represents the bom command
var bomCmd = &cobra.Command{
	Use:   "bom <input>",
	Short: "Generate a bill of materials.",
	Long: `Generate a bill of materials from a schematic or component CSV.

	Input may be a .kicad_sch (requires kicad-cli), a legacy .sch, a
	component CSV, a .kicad_pro or a project directory.

	Fields are a comma separated mix of presets and field names:
		--fields +jlc,Tolerance,i:Voltage
	`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fab, err := loadFabricator()
		if err != nil {
			return err
		}

		components, err := newLoader().LoadComponents(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		table, err := buildBOM(components, fab, bomOpts)
		if err != nil {
			return err
		}

		return lib.WriteFile(bomOutput, "BOM", table)
	},
}

func partNumberFields(fab *lib.Fabricator) []string {
	fields := []string{}
	if fab != nil {
		fields = append(fields, fab.PartNumberFields...)
	}

	return append(fields, lib.PartNumberFields...)
}

/*
	buildBOM filters, aggregates and enriches components, then resolves the
	requested fields into a table.
*/
func buildBOM(components []lib.Component, fab *lib.Fabricator, opts bomOptions) (*lib.Table, error) {
	filter := lib.BOMFilter{
		ExcludeDNP:     !opts.includeDNP,
		ExcludeFromBOM: !opts.includeExcluded,
	}
	generator := lib.NewBOMGenerator(components, filter, &lib.Aggregator{
		PartNumberFields: partNumberFields(fab),
	})

	if !opts.noLibrary {
		library, err := openLibrary()
		if err != nil {
			logger.Warn("association library unavailable", zap.Error(err))
		} else {
			n := lib.Enrich(generator.Entries, library)
			library.Close()
			logger.Debug("enriched entries from library", zap.Int("count", n))
		}
	}

	table, err := lib.BuildTable(generator, lib.BOMPresets(), fab, opts.fields)
	if err != nil {
		return nil, err
	}

	logger.Info("generated bom",
		zap.Int("components", len(components)),
		zap.Int("entries", len(generator.Entries)),
		zap.Strings("fields", table.Fields))

	return table, nil
}

func addBOMFlags(cmd *cobra.Command, opts *bomOptions, prefix string) {
	cmd.Flags().StringVar(&opts.fields, prefix+"fields", "", "fields and +presets to output (default is the fabricator preset)")
	cmd.Flags().BoolVar(&opts.includeDNP, "include-dnp", false, "keep do-not-populate components")
	cmd.Flags().BoolVar(&opts.includeExcluded, "include-excluded", false, "keep components marked exclude from BOM")
	cmd.Flags().BoolVar(&opts.noLibrary, "no-library", false, "do not fill part numbers from the association library")
}

func init() {
	rootCmd.AddCommand(bomCmd)

	// Here you will define your flags and configuration settings.
	addBOMFlags(bomCmd, &bomOpts, "")
	bomCmd.Flags().StringVarP(&bomOutput, "output", "o", "-", "output file (.csv or .xlsx), - for stdout")
}
