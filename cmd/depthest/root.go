package cmd

import (
	"fmt"
	"os"

	// Subcommands
	download "github.com/cyfeng16/depth-estimator/cmd/depthest/download"
	run "github.com/cyfeng16/depth-estimator/cmd/depthest/run"
	"github.com/cyfeng16/depth-estimator/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = &cobra.Command{
	Use:   "depthest",
	Short: "Depth estimation server",
	Long:  "A web server that turns uploaded images into colorized depth maps using Depth Anything models",

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		return config.InitConfig()
	},
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("home-dir", "", "Path to the depth-estimator home directory")
	pflags.String("config-file", "", "Path to the config file")
	pflags.String("env-file", "", "Path to the env file")

	viper.BindPFlag("home_dir", pflags.Lookup("home-dir"))
	viper.BindPFlag("config_file", pflags.Lookup("config-file"))
	viper.BindPFlag("env_file", pflags.Lookup("env-file"))

	Cmd.AddCommand(run.Cmd, download.Cmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}
