package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"StoryFM/config"
	"StoryFM/storage"

	"github.com/spf13/cobra"
)

var storagePrefix string

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "内容寻址存储管理",
	Long:  `查看MinIO存储桶中的内容寻址对象，按CID前缀过滤。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始连接MinIO服务器...")

		// 加载配置
		cfg := config.Load()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}
		fmt.Println("MinIO连接成功！")

		objects, err := store.ListObjects(context.Background())
		if err != nil {
			log.Fatalf("列出对象失败: %v", err)
		}

		var count int
		var totalSize int64
		for _, obj := range objects {
			cid := strings.TrimPrefix(obj.Key, "content/")
			if storagePrefix != "" && !strings.HasPrefix(cid, storagePrefix) {
				continue
			}
			fmt.Printf("  %s  %d bytes\n", obj.Key, obj.Size)
			count++
			totalSize += obj.Size
		}
		fmt.Printf("\n共 %d 个对象，%d 字节\n", count, totalSize)
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)

	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "按CID前缀过滤对象")

	storageCmd.Example = `  # 列出所有对象
  storyfm_server storage

  # 按CID前缀过滤
  storyfm_server storage -p "a1b2"`
}
