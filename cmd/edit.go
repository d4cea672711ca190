/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>

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

	"github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"
	"github.com/xoviat/jbom/lib"
	"go.uber.org/zap"
)

var (
	editAll bool
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:     "edit <input>",
	Aliases: []string{"associate"},
	Short:   "Edit component part number associations.",
	Long: `Edit walks the BOM lines of a design and asks for the fabricator part
	number of every line that has none, storing the answer in the library so
	later runs fill it in automatically.

	Example:
		- jbom edit board.kicad_sch       : ask for missing part numbers
		- jbom edit board.kicad_sch --all : ask for every line
		- jbom export <file.xlsx>         : export all component associations
		- jbom import <file.xlsx>         : erase and import all component associations
	`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		library, err := openLibrary()
		if err != nil {
			return fmt.Errorf("failed to open library: %w", err)
		}
		defer library.Close()

		fab, err := loadFabricator()
		if err != nil {
			return err
		}

		components, err := newLoader().LoadComponents(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		entries := (&lib.Aggregator{PartNumberFields: partNumberFields(fab)}).Aggregate(
			lib.DefaultBOMFilter().Apply(components),
		)

		suggestions := []prompt.Suggest{}
		for _, part := range library.PartNumbers() {
			suggestions = append(suggestions, prompt.Suggest{Text: part})
		}

		n := 0
		for _, entry := range entries {
			prefix := lib.Prefix(entry.FirstReference())
			current, found := library.FindMatching(prefix, entry.Value, entry.Footprint)
			if !editAll && (entry.FabricatorPartNumber != "" || found) {
				continue
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Enter part number for %s, %s, %s (current: %q)\n",
				strings.Join(entry.References(), ","), entry.Value, lib.FootprintName(entry.Footprint), current)

			id := prompt.Input("> ", func(d prompt.Document) []prompt.Suggest {
				return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
			})

			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}

			if err := library.Associate(prefix, entry.Value, entry.Footprint, id); err != nil {
				return err
			}
			suggestions = append(suggestions, prompt.Suggest{Text: id})
			n++
		}

		logger.Info("updated associations", zap.Int("count", n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports Persistent Flags which will work for this command
	// and all subcommands, e.g.:
	// editCmd.PersistentFlags().String("foo", "", "A help for foo")

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	editCmd.Flags().BoolVarP(&editAll, "all", "a", false, "ask for every line, not only those without a part number")
}
