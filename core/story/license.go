package story

import (
	"context"
	"fmt"

	"StoryFM/logger"
)

type registerPILRequest struct {
	DefaultMintingFee string `json:"defaultMintingFee"` // wei 十进制字符串
	Currency          string `json:"currency"`
}

type registerPILResponse struct {
	LicenseTermsID string `json:"licenseTermsId"`
	TxHash         string `json:"txHash"`
}

type attachTermsRequest struct {
	IPID           string `json:"ipId"`
	LicenseTermsID string `json:"licenseTermsId"`
}

// RegisterCommercialLicense 注册商业使用许可条款并挂接到IP资产。
// 两次串行链上调用，任一失败都以 ErrLicenseRegistration 上抛，
// 不回滚已完成的部分。
func (c *Client) RegisterCommercialLicense(ctx context.Context, ipID, mintingFee string) (string, error) {
	if !c.Connected() {
		return "", ErrNotConnected
	}

	fee, err := ParseEther(mintingFee)
	if err != nil {
		return "", err
	}

	var resp registerPILResponse
	err = c.post(ctx, "/license/register-commercial-use", registerPILRequest{
		DefaultMintingFee: fee.String(),
		Currency:          c.wipToken,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLicenseRegistration, err)
	}
	if resp.LicenseTermsID == "" {
		return "", fmt.Errorf("%w: 响应缺少licenseTermsId", ErrLicenseRegistration)
	}

	err = c.post(ctx, "/license/attach", attachTermsRequest{
		IPID:           ipID,
		LicenseTermsID: resp.LicenseTermsID,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: 挂接条款失败: %v", ErrLicenseRegistration, err)
	}

	logger.Info("[Story] 许可条款注册完成",
		logger.String("ipId", ipID),
		logger.String("licenseTermsId", resp.LicenseTermsID))
	return resp.LicenseTermsID, nil
}

type mintLicenseRequest struct {
	LicensorIPID   string `json:"licensorIpId"`
	LicenseTermsID string `json:"licenseTermsId"`
	Receiver       string `json:"receiver"`
	Amount         int    `json:"amount"`
}

type mintLicenseResponse struct {
	TxHash          string  `json:"txHash"`
	LicenseTokenIDs []int64 `json:"licenseTokenIds"`
}

// MintLicenseTokens 按默认条款给接收地址铸造许可代币。
// 任何已连接的用户都可以调用，不限于资产所有者。
func (c *Client) MintLicenseTokens(ctx context.Context, ipID, licenseTermsID, receiver string) (string, error) {
	if !c.Connected() {
		return "", ErrNotConnected
	}

	var resp mintLicenseResponse
	err := c.post(ctx, "/license/mint", mintLicenseRequest{
		LicensorIPID:   ipID,
		LicenseTermsID: licenseTermsID,
		Receiver:       receiver,
		Amount:         1,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMintFailed, err)
	}

	logger.Info("[Story] 许可代币铸造完成",
		logger.String("ipId", ipID),
		logger.String("receiver", receiver),
		logger.String("txHash", resp.TxHash))
	return resp.TxHash, nil
}
