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
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xoviat/jbom/lib"
)

// fieldsCmd represents the fields command
var fieldsCmd = &cobra.Command{
	Use:   "fields <bom|pos> [input]",
	Short: "List presets and available fields.",
	Long: `List the presets usable with --fields and, when an input is given,
	every field available from it with the header it will be written under.
	`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := lib.ParseOutputKind(args[0])
		if err != nil {
			return err
		}

		fab, err := loadFabricator()
		if err != nil {
			return err
		}

		var generator lib.Generator
		switch {
		case len(args) < 2 && kind == lib.BOM:
			generator = lib.NewBOMGenerator(nil, lib.BOMFilter{}, nil)
		case len(args) < 2:
			generator = lib.NewPOSGenerator(nil, lib.POSFilter{}, lib.Millimeters)
		case kind == lib.BOM:
			components, err := newLoader().LoadComponents(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			generator = lib.NewBOMGenerator(components, lib.BOMFilter{}, nil)
		default:
			placements, err := newLoader().LoadPlacements(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			generator = lib.NewPOSGenerator(placements, lib.POSFilter{}, lib.Millimeters)
		}

		return printFields(cmd.OutOrStdout(), generator, fab)
	},
}

func printFields(out io.Writer, generator lib.Generator, fab *lib.Fabricator) error {
	kind := generator.Kind()
	resolver := lib.NewResolver(lib.PresetsFor(kind), fab.Presets(kind), lib.DefaultPresetName(fab, kind))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Presets (default +%s):\n", resolver.Default)
	for _, name := range resolver.PresetNames() {
		preset, err := resolver.Preset(name)
		if err != nil {
			return err
		}

		fields := "(all available fields)"
		if !preset.All() {
			fields = strings.Join(preset.Fields, ",")
		}
		fmt.Fprintf(w, "  +%s\t%s\t%s\n", name, preset.Description, fields)
	}

	var columns lib.ColumnMap
	if fab != nil {
		var err error
		if columns, err = fab.Columns(kind); err != nil {
			return err
		}

		fmt.Fprintf(w, "\nColumns (%s):\n", fab.ID)
		reverse := columns.Reverse()
		for _, field := range columns.Fields() {
			fmt.Fprintf(w, "  %s\t%s\n", field, reverse[field])
		}
	}

	available := generator.AvailableFields()
	keys := available.Keys()
	headers := lib.MapHeaders(columns, keys)

	fmt.Fprintln(w, "\nFields:")
	for i, field := range keys {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", field, lib.ToHeader(field), headers[i], available.Description(field))
	}

	return w.Flush()
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
