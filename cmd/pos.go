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

type posOptions struct {
	fields          string
	layer           string
	units           string
	smdOnly         bool
	includeDNP      bool
	includeExcluded bool
	noRotations     bool
}

var (
	posOpts   posOptions
	posOutput string
)

// posCmd represents the pos command
var posCmd = &cobra.Command{
	Use:     "pos <input>",
	Aliases: []string{"cpl"},
	Short:   "Generate a component placement file.",
	Long: `Generate a component placement (CPL) file from a board or position export.

	Input may be a .kicad_pcb (requires kicad-cli), a KiCad position file
	(.csv or .pos), a .kicad_pro or a project directory.
	`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fab, err := loadFabricator()
		if err != nil {
			return err
		}

		placements, err := newLoader().LoadPlacements(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		table, err := buildPOS(placements, fab, posOpts)
		if err != nil {
			return err
		}

		return lib.WriteFile(posOutput, "CPL", table)
	},
}

func buildPOS(placements []lib.Placement, fab *lib.Fabricator, opts posOptions) (*lib.Table, error) {
	filter := lib.POSFilter{
		SMDOnly:        opts.smdOnly,
		ExcludeDNP:     !opts.includeDNP,
		ExcludeFromPOS: !opts.includeExcluded,
	}
	if opts.layer != "" {
		layer, err := lib.ParseLayer(opts.layer)
		if err != nil {
			return nil, err
		}
		filter.Layer = &layer
	}

	units := lib.Millimeters
	if fab != nil {
		units = fab.POSUnits
	}
	if opts.units != "" {
		var err error
		if units, err = lib.ParseUnits(opts.units); err != nil {
			return nil, err
		}
	}

	generator := lib.NewPOSGenerator(placements, filter, units)
	if !opts.noRotations {
		library, err := openLibrary()
		if err != nil {
			logger.Warn("association library unavailable", zap.Error(err))
		} else {
			generator.RotationOffsets, err = library.Rotations()
			library.Close()
			if err != nil {
				return nil, err
			}
		}
	}

	table, err := lib.BuildTable(generator, lib.POSPresets(), fab, opts.fields)
	if err != nil {
		return nil, err
	}

	logger.Info("generated placements",
		zap.Int("placements", len(placements)),
		zap.Int("rows", len(table.Rows)),
		zap.Stringer("units", units),
		zap.Strings("fields", table.Fields))

	return table, nil
}

func addPOSFlags(cmd *cobra.Command, opts *posOptions, prefix string) {
	cmd.Flags().StringVar(&opts.fields, prefix+"fields", "", "fields and +presets to output (default is the fabricator preset)")
	cmd.Flags().StringVar(&opts.layer, "layer", "", "only place components on this side (top or bottom)")
	cmd.Flags().StringVar(&opts.units, "units", "", "coordinate units, mm or in (default is the fabricator units)")
	cmd.Flags().BoolVar(&opts.smdOnly, "smd-only", false, "skip through-hole components")
	cmd.Flags().BoolVar(&opts.noRotations, "no-rotations", false, "do not apply footprint rotation offsets from the library")
}

func init() {
	rootCmd.AddCommand(posCmd)

	// Here you will define your flags and configuration settings.
	addPOSFlags(posCmd, &posOpts, "")
	posCmd.Flags().BoolVar(&posOpts.includeDNP, "include-dnp", false, "keep do-not-populate components")
	posCmd.Flags().BoolVar(&posOpts.includeExcluded, "include-excluded", false, "keep components marked exclude from position files")
	posCmd.Flags().StringVarP(&posOutput, "output", "o", "-", "output file (.csv or .xlsx), - for stdout")
}
