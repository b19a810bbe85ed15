package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"StoryFM/config"
	"StoryFM/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 基于 MinIO 的自托管内容寻址存储。
// 对象键由内容摘要推导，同样的字节永远得到同样的标识符。
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore 创建并验证 MinIO 存储后端
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	logger.Info("[MinIO] 正在连接存储服务器",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{
			Region: cfg.MinioRegion,
		}); err != nil {
			return nil, fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("[MinIO] 已创建存储桶", logger.String("bucket", cfg.MinioBucket))
	}

	return &MinioStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Upload 按内容摘要存储对象并返回内容标识符
func (s *MinioStore) Upload(ctx context.Context, filename string, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyPayload, filename)
	}

	digest := sha256.Sum256(payload)
	cid := hex.EncodeToString(digest[:])
	objectName := "content/" + cid + filepath.Ext(filename)

	contentType := http.DetectContentType(payload)
	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		logger.Error("[MinIO] 上传失败",
			logger.String("object", objectName),
			logger.ErrorField(err))
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	logger.Info("[MinIO] 上传成功",
		logger.String("object", objectName),
		logger.Int("size", len(payload)))
	return cid, nil
}

// Stat 返回对象的大小，用于存储管理命令
func (s *MinioStore) Stat(ctx context.Context, cid, ext string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, "content/"+cid+ext, minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("查询对象失败: %w", err)
	}
	return info.Size, nil
}

// ListObjects 列出已存储的内容对象，供 storage 子命令使用
func (s *MinioStore) ListObjects(ctx context.Context) ([]minio.ObjectInfo, error) {
	var objects []minio.ObjectInfo
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    "content/",
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象失败: %w", object.Err)
		}
		objects = append(objects, object)
	}
	return objects, nil
}
