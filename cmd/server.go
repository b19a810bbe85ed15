package cmd

import (
	"StoryFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动StoryFM服务器",
	Long:  `启动StoryFM录音发布系统的HTTP服务器，提供专辑草稿、采集和上链API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
