package story

import (
	"context"
	"fmt"

	"StoryFM/logger"
	"StoryFM/model"
)

// mintAndRegisterRequest 对应 sidecar 的 ipAsset.mintAndRegisterIp
type mintAndRegisterRequest struct {
	SpgNftContract  string     `json:"spgNftContract"`
	AllowDuplicates bool       `json:"allowDuplicates"`
	IPMetadata      ipMetadata `json:"ipMetadata"`
}

type ipMetadata struct {
	IPMetadataURI   string `json:"ipMetadataURI"`
	IPMetadataHash  string `json:"ipMetadataHash"`
	NFTMetadataURI  string `json:"nftMetadataURI"`
	NFTMetadataHash string `json:"nftMetadataHash"`
}

type mintAndRegisterResponse struct {
	TxHash  string `json:"txHash"`
	TokenID int64  `json:"tokenId"`
	IPID    string `json:"ipId"`
}

// MintAndRegister 把清单注册为链上IP资产。
// NFT元数据URI指向清单的公共网关地址，并带上该URI的
// Keccak-256 哈希作为内容绑定。
func (c *Client) MintAndRegister(ctx context.Context, manifestCID string) (*model.MintedAsset, error) {
	if !c.Connected() {
		return nil, ErrNotConnected
	}

	uri := fmt.Sprintf("%s/%s", c.gateway, manifestCID)
	req := mintAndRegisterRequest{
		SpgNftContract:  c.contract,
		AllowDuplicates: true,
		IPMetadata: ipMetadata{
			IPMetadataURI:   "",
			IPMetadataHash:  emptyIPMetadataHash,
			NFTMetadataURI:  uri,
			NFTMetadataHash: keccak256Hex([]byte(uri)),
		},
	}

	var resp mintAndRegisterResponse
	if err := c.post(ctx, "/ip-asset/mint-and-register", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMintFailed, err)
	}

	// sidecar 可能只返回 tokenId，IP ID 留待后续推导
	ipID := resp.IPID
	if ipID == "" {
		derived, err := DeriveIPID(c.contract, resp.TokenID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMintFailed, err)
		}
		ipID = derived
	}

	logger.Info("[Story] IP资产注册完成",
		logger.String("manifestCid", manifestCID),
		logger.Int64("tokenId", resp.TokenID),
		logger.String("ipId", ipID),
		logger.String("txHash", resp.TxHash))
	return &model.MintedAsset{
		TxHash:  resp.TxHash,
		TokenID: resp.TokenID,
		IPID:    ipID,
	}, nil
}

type registerRequest struct {
	NFTContract string `json:"nftContract"`
	TokenID     int64  `json:"tokenId"`
}

type registerResponse struct {
	IPID string `json:"ipId"`
}

// Register 对已有 token 做显式IP资产注册查询
func (c *Client) Register(ctx context.Context, tokenID int64) (string, error) {
	if !c.Connected() {
		return "", ErrNotConnected
	}
	var resp registerResponse
	err := c.post(ctx, "/ip-asset/register", registerRequest{
		NFTContract: c.contract,
		TokenID:     tokenID,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.IPID == "" {
		return "", fmt.Errorf("注册响应缺少ipId")
	}
	return resp.IPID, nil
}

// ResolveIPID 取得 token 的IP资产ID：优先走显式注册，
// 注册查询暂时不可用时回退到确定性推导，让许可操作照常进行。
func (c *Client) ResolveIPID(ctx context.Context, tokenID int64) (string, error) {
	ipID, err := c.Register(ctx, tokenID)
	if err != nil {
		logger.Warn("[Story] 注册查询不可用，使用推导的IP ID",
			logger.Int64("tokenId", tokenID),
			logger.ErrorField(err))
		return DeriveIPID(c.contract, tokenID)
	}
	return ipID, nil
}
