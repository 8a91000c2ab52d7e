package commands

import (
	"fmt"
	"os"

	"deeprag/engine/server"

	"github.com/spf13/cobra"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the deployment server",
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		debug, _ := cmd.Flags().GetBool("debug")
		lifetime, _ := cmd.Flags().GetFloat64("default-lifetime")

		srv := server.New(server.Config{
			Host:                   host,
			Port:                   port,
			Debug:                  debug,
			DefaultLifetimeSeconds: lifetime,
		})

		if err := srv.Start(); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	ServeCmd.Flags().String("host", "localhost", "Host to bind to")
	ServeCmd.Flags().Int("port", 8080, "Port to listen on")
	ServeCmd.Flags().Bool("debug", false, "Enable debug logging")
	ServeCmd.Flags().Float64("default-lifetime", 3600, "Default reservation lifetime in seconds")
}
