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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xoviat/jbom/lib"
	"go.uber.org/zap"
)

var (
	cfgFile string
	logger  = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jbom",
	Short: "Generate BOM and placement files for PCB assembly from KiCad designs.",
	Long: `jbom turns KiCad schematics and boards into the bill of materials and
component placement (CPL) files that assembly houses expect.

	Example:
		- jbom bom board.kicad_sch --fabricator jlc -o bom.csv
		- jbom pos board.kicad_pcb --fields +minimal,Value
		- jbom generate ./board --fabricator jlc --bundle upload.zip
	`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}

		logger = l.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.jbom.yaml)")
	flags.StringP("fabricator", "f", "", "fabricator id (jlc, pcbway, seeed, generic)")
	flags.String("fabricators-dir", "", "directory of additional *.fab.yaml fabricator definitions")
	flags.String("library", "", "association database (default is jbom/jbom.db in the user config dir)")
	flags.String("kicad-cli", "", "path to the kicad-cli executable")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-format", "console", "log format: console, json")

	viper.BindPFlag("fabricator", flags.Lookup("fabricator"))
	viper.BindPFlag("fabricators_dir", flags.Lookup("fabricators-dir"))
	viper.BindPFlag("library", flags.Lookup("library"))
	viper.BindPFlag("kicad.cli", flags.Lookup("kicad-cli"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))

	viper.SetDefault("kicad.fields", lib.DefaultKiCadFields)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".jbom")
	}

	viper.SetEnvPrefix("JBOM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "failed to read config: %s\n", err)
		}
	}
}

func loadFabricators() (*lib.FabricatorRegistry, error) {
	return lib.LoadFabricators(viper.GetString("fabricators_dir"))
}

/*
	loadFabricator returns the configured fabricator, or nil when none is
	selected so only the default headers apply.
*/
func loadFabricator() (*lib.Fabricator, error) {
	id := viper.GetString("fabricator")
	if id == "" {
		return nil, nil
	}

	registry, err := loadFabricators()
	if err != nil {
		return nil, err
	}

	fab, err := registry.Get(id)
	if err != nil {
		return nil, err
	}

	logger.Debug("selected fabricator", zap.String("id", fab.ID), zap.String("name", fab.Name))
	return fab, nil
}

func libraryPath() (string, error) {
	if path := viper.GetString("library"); path != "" {
		return path, nil
	}

	return lib.DefaultLibraryPath()
}

func openLibrary() (*lib.Library, error) {
	path, err := libraryPath()
	if err != nil {
		return nil, err
	}

	return lib.OpenLibrary(path, logger)
}

/*
	newLoader wires kicad-cli when it can be found. CSV and legacy inputs do
	not need it, so a missing kicad-cli is only logged here.
*/
func newLoader() *lib.Loader {
	kicad, err := lib.NewKiCad(viper.GetString("kicad.cli"), viper.GetStringSlice("kicad.fields"), logger)
	if err != nil {
		logger.Debug("kicad-cli unavailable", zap.Error(err))
		return &lib.Loader{}
	}

	logger.Debug("found kicad-cli", zap.String("path", kicad.GetBinPath()))
	return &lib.Loader{KiCad: kicad}
}
