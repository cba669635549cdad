/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/usermgmt/apiserver/internal/server"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the user management server",
	Long: `Starts the user management server. Usage:

	usermgmt server

The server stops gracefully on SIGINT or SIGTERM.
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log, err := loadConfig("server")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
			os.Exit(1)
		}

		srv, err := server.New(cmd.Context(), cfg, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
		if err := srv.Run(cmd.Context()); err != nil {
			log.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
		log.Info().Msg("server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
