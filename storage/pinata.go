package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"StoryFM/logger"
)

// PinataClient 通过 Pinata pinning API 将文件上传到IPFS
type PinataClient struct {
	apiURL     string
	jwt        string
	httpClient *http.Client
}

// NewPinataClient 创建新的 Pinata 客户端。
// 不设置超时：上传耗时由调用方的UI反馈，见不重试的约定。
func NewPinataClient(apiURL, jwt string) *PinataClient {
	return &PinataClient{
		apiURL:     apiURL,
		jwt:        jwt,
		httpClient: &http.Client{},
	}
}

// pinataResponse Pinata pinning API 的响应体
type pinataResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Upload 以 multipart 形式上传单个文件，返回其CID
func (c *PinataClient) Upload(ctx context.Context, filename string, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyPayload, filename)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("构建表单失败: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return "", fmt.Errorf("写入表单失败: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("关闭表单失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &buf)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("[Pinata] 请求失败",
			logger.String("filename", filename),
			logger.ErrorField(err))
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Error("[Pinata] 上传被拒绝",
			logger.String("filename", filename),
			logger.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, string(body))
	}

	var result pinataResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: 解析响应失败: %v", ErrUploadFailed, err)
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("%w: 响应缺少IpfsHash", ErrUploadFailed)
	}

	logger.Info("[Pinata] 上传成功",
		logger.String("filename", filename),
		logger.String("cid", result.IpfsHash),
		logger.Int("size", len(payload)))
	return result.IpfsHash, nil
}
