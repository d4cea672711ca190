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
	"strconv"

	"github.com/spf13/cobra"
)

// setRotationCmd represents the setRotation command
var setRotationCmd = &cobra.Command{
	Use:   "set-rotation <footprint> <degrees>",
	Short: "Set the rotation offset of a footprint.",
	Long: `Store a rotation offset for a footprint. The offset is added to the
rotation of every placement using that footprint, which corrects footprints
whose zero orientation differs from the assembly house's.

	Example:
		- jbom set-rotation SOT-23 180
		- jbom set-rotation Package_TO_SOT_SMD:SOT-223-3_TabPin2 -90`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		footprint := args[0]
		rotation, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("failed to parse rotation: %w", err)
		}

		library, err := openLibrary()
		if err != nil {
			return fmt.Errorf("failed to open library: %w", err)
		}
		defer library.Close()

		return library.SetRotation(footprint, rotation)
	},
}

func init() {
	rootCmd.AddCommand(setRotationCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports Persistent Flags which will work for this command
	// and all subcommands, e.g.:
	// setRotationCmd.PersistentFlags().String("foo", "", "A help for foo")

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	// setRotationCmd.Flags().BoolP("toggle", "t", false, "Help message for toggle")
}
