package story

import (
	"context"
	"fmt"
)

// 只读合约查询走 sidecar 的 /nft 路由，不需要签名会话。

type totalSupplyResponse struct {
	TotalSupply int64 `json:"totalSupply"`
}

// TotalSupply 返回合约已铸造的 token 数量
func (c *Client) TotalSupply(ctx context.Context) (int64, error) {
	var resp totalSupplyResponse
	err := c.get(ctx, fmt.Sprintf("/nft/%s/total-supply", c.contract), &resp)
	if err != nil {
		return 0, err
	}
	return resp.TotalSupply, nil
}

type tokenURIResponse struct {
	TokenURI string `json:"tokenUri"`
}

// TokenURI 返回指定 token 的元数据URI
func (c *Client) TokenURI(ctx context.Context, tokenID int64) (string, error) {
	var resp tokenURIResponse
	err := c.get(ctx, fmt.Sprintf("/nft/%s/token/%d/uri", c.contract, tokenID), &resp)
	if err != nil {
		return "", err
	}
	return resp.TokenURI, nil
}

type ownerOfResponse struct {
	Owner string `json:"owner"`
}

// OwnerOf 返回指定 token 的持有地址
func (c *Client) OwnerOf(ctx context.Context, tokenID int64) (string, error) {
	var resp ownerOfResponse
	err := c.get(ctx, fmt.Sprintf("/nft/%s/token/%d/owner", c.contract, tokenID), &resp)
	if err != nil {
		return "", err
	}
	return resp.Owner, nil
}
