package story

import (
	"context"
	"fmt"
)

type wipRequest struct {
	Amount string `json:"amount"` // wei 十进制字符串
}

type wipResponse struct {
	TxHash string `json:"txHash"`
}

// Deposit 把原生IP代币包装为WIP
func (c *Client) Deposit(ctx context.Context, amount string) (string, error) {
	return c.wipCall(ctx, "/wip/deposit", amount)
}

// Withdraw 把WIP解包为原生IP代币
func (c *Client) Withdraw(ctx context.Context, amount string) (string, error) {
	return c.wipCall(ctx, "/wip/withdraw", amount)
}

func (c *Client) wipCall(ctx context.Context, path, amount string) (string, error) {
	if !c.Connected() {
		return "", ErrNotConnected
	}
	wei, err := ParseEther(amount)
	if err != nil {
		return "", err
	}
	var resp wipResponse
	if err := c.post(ctx, path, wipRequest{Amount: wei.String()}, &resp); err != nil {
		return "", fmt.Errorf("兑换失败: %w", err)
	}
	return resp.TxHash, nil
}
