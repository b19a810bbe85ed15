package story

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"StoryFM/config"
	"StoryFM/logger"
)

var (
	// ErrNotConnected 没有可用的签名会话
	ErrNotConnected = errors.New("no signer session: connect a wallet first")
	// ErrMintFailed 铸造调用被传输层或合约拒绝
	ErrMintFailed = errors.New("mint failed")
	// ErrLicenseRegistration 许可条款注册或挂接失败
	ErrLicenseRegistration = errors.New("license registration failed")
	// ErrInvalidFee 许可铸造费必须为正数
	ErrInvalidFee = errors.New("minting fee must be positive")
)

// Client 通过本地 Story SDK sidecar 调用 Story Protocol。
// sidecar 持有签名私钥并暴露 JSON-over-HTTP 接口，
// 本客户端只负责组装请求与解释响应。
type Client struct {
	baseURL    string
	chainID    string
	contract   string // SPG NFT collection
	wipToken   string
	signer     string
	gateway    string
	httpClient *http.Client
}

// NewClient 从配置创建 Story 客户端
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.StoryAPIURL,
		chainID:    cfg.StoryChainID,
		contract:   cfg.NFTContractAddress,
		wipToken:   cfg.WIPTokenAddress,
		signer:     cfg.SignerAddress,
		gateway:    cfg.GatewayURL,
		httpClient: &http.Client{},
	}
}

// Connected 返回是否存在活跃的签名会话
func (c *Client) Connected() bool {
	return c.signer != ""
}

// Contract 返回配置的 NFT 合约地址
func (c *Client) Contract() string {
	return c.contract
}

// apiError sidecar 返回的错误体
type apiError struct {
	Error string `json:"error"`
}

// post 向 sidecar 发送一个JSON请求并解析响应。
// chainId 与签名账户随每个请求携带。
func (c *Client) post(ctx context.Context, path string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Chain-Id", c.chainID)
	req.Header.Set("X-Signer", c.signer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("[Story] 请求失败",
			logger.String("path", path),
			logger.ErrorField(err))
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("sidecar返回错误: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("sidecar返回错误状态码: %d", resp.StatusCode)
	}

	if respBody != nil {
		if err := json.Unmarshal(body, respBody); err != nil {
			return fmt.Errorf("解析响应失败: %w", err)
		}
	}
	return nil
}

// get 向 sidecar 发送只读查询
func (c *Client) get(ctx context.Context, path string, respBody interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("X-Chain-Id", c.chainID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sidecar返回错误状态码: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}
