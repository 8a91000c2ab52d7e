package main

import (
	"fmt"
	"os"

	"deeprag/cmd/deeprag/commands"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	server  string
)

var rootCmd = &cobra.Command{
	Use:   "deeprag",
	Short: "deeprag CLI - Hierarchical document network orchestrator",
	Long: `deeprag partitions a document collection into groups, builds a
network of document agents for each group from a YAML template, and
deploys them behind a single entry-point network.`,
}

func main() {
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.DeployCmd)
	rootCmd.AddCommand(commands.ReservationsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.deeprag.yaml)")
	rootCmd.PersistentFlags().StringVar(&server, "server", "http://localhost:8080", "deployment server URL")

	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".deeprag")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		// fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
