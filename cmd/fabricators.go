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
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// fabricatorsCmd represents the fabricators command
var fabricatorsCmd = &cobra.Command{
	Use:   "fabricators",
	Short: "List known fabricators.",
	Long:  `List the built-in fabricators and those loaded from --fabricators-dir.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadFabricators()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tUNITS\tBOM COLUMNS\tCPL COLUMNS")
		for _, id := range registry.IDs() {
			fab, err := registry.Get(id)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
				fab.ID, fab.Name, fab.POSUnits, len(fab.BOMColumns), len(fab.POSColumns))
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(fabricatorsCmd)
}
