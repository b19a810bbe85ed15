package cmd

import (
	"fmt"
	"log"
	"os"

	"StoryFM/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storyfm_server",
	Short: "StoryFM is an album recording and on-chain publishing service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting StoryFM server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
