package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"StoryFM/config"
	"StoryFM/core/story"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "链上连接测试",
	Long:  `测试与Story链服务的连接，读取合约发行量和首个资产信息。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始测试链上连接...")

		// 加载配置
		cfg := config.Load()
		fmt.Printf("链配置: %s, ChainID: %s, 合约: %s\n", cfg.StoryAPIURL, cfg.StoryChainID, cfg.NFTContractAddress)

		client := story.NewClient(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		total, err := client.TotalSupply(ctx)
		if err != nil {
			log.Fatalf("查询totalSupply失败: %v", err)
		}
		fmt.Printf("合约发行量: %d\n", total)

		if total > 0 {
			uri, err := client.TokenURI(ctx, 1)
			if err != nil {
				log.Printf("查询tokenURI失败: %v", err)
			} else {
				fmt.Printf("Token #1 URI: %s\n", uri)
			}
			if ipID, err := story.DeriveIPID(cfg.NFTContractAddress, 1); err == nil {
			fmt.Printf("Token #1 推导IP资产ID: %s\n", ipID)
		}
		}

		if client.Connected() {
			fmt.Printf("签名地址: %s\n", cfg.SignerAddress)
		} else {
			fmt.Println("未配置签名地址，只能进行只读操作。")
		}
		fmt.Println("链上连接测试完成。")
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
}
