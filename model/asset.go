package model

// MintedAsset 铸造操作的结果，交给调用方展示
type MintedAsset struct {
	TxHash         string `json:"txHash"`
	TokenID        int64  `json:"tokenId"`
	IPID           string `json:"ipId"`
	LicenseTermsID string `json:"licenseTermsId,omitempty"`
}

// NFTItem 画廊/库存视图中的一个链上专辑
type NFTItem struct {
	TokenID  int64      `json:"tokenId"`
	TokenURI string     `json:"tokenUri"`
	Owner    string     `json:"owner,omitempty"`
	Metadata *AlbumMeta `json:"metadata,omitempty"`
}
