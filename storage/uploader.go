package storage

import (
	"context"
	"errors"
)

var (
	// ErrEmptyPayload 上传内容为空
	ErrEmptyPayload = errors.New("upload payload is empty")
	// ErrUploadFailed 存储服务返回非2xx或响应缺少CID
	ErrUploadFailed = errors.New("upload failed")
	// ErrNetwork 传输层失败
	ErrNetwork = errors.New("network error")
)

// Uploader 将一个文件推送到内容寻址存储并返回其内容标识符(CID)。
// 实现必须是无状态的，可以安全地重复调用；调用方负责重试策略。
type Uploader interface {
	Upload(ctx context.Context, filename string, payload []byte) (string, error)
}
