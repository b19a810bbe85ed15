package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"StoryFM/cache"
	"StoryFM/core/story"
	"StoryFM/logger"
	"StoryFM/model"

	"github.com/gorilla/mux"
)

// fetchManifest 取回指定CID的专辑清单，优先命中Redis缓存。
// 缓存读写失败只记日志，不阻塞网关回源。
func (h *APIHandler) fetchManifest(ctx context.Context, cid string) (*model.AlbumMeta, error) {
	meta, err := cache.GetManifest(ctx, cid)
	if err != nil {
		logger.Warn("[Manifest] 读缓存失败", logger.String("cid", cid), logger.ErrorField(err))
	}
	if meta != nil {
		return meta, nil
	}

	url := fmt.Sprintf("%s/%s", h.cfg.GatewayURL, cid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("网关请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("网关返回错误状态码: %d", resp.StatusCode)
	}

	var fetched model.AlbumMeta
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		return nil, fmt.Errorf("解析清单失败: %w", err)
	}

	if err := cache.SetManifest(ctx, cid, &fetched); err != nil {
		logger.Warn("[Manifest] 写缓存失败", logger.String("cid", cid), logger.ErrorField(err))
	}
	return &fetched, nil
}

// cidFromTokenURI 从网关URI中取出CID部分
func cidFromTokenURI(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// GalleryHandler 枚举合约上的全部专辑，逐个解析清单
func (h *APIHandler) GalleryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.story.TotalSupply(ctx)
	if err != nil {
		logger.Error("[Gallery] 查询totalSupply失败", logger.ErrorField(err))
		http.Error(w, "Failed to query collection", http.StatusBadGateway)
		return
	}

	items := make([]*model.NFTItem, 0, total)
	for tokenID := int64(1); tokenID <= total; tokenID++ {
		uri, err := h.story.TokenURI(ctx, tokenID)
		if err != nil {
			logger.Warn("[Gallery] 查询tokenURI失败",
				logger.Int64("tokenId", tokenID),
				logger.ErrorField(err))
			continue
		}
		item := &model.NFTItem{TokenID: tokenID, TokenURI: uri}
		if meta, err := h.fetchManifest(ctx, cidFromTokenURI(uri)); err == nil {
			item.Metadata = meta
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalSupply": total,
		"items":       items,
	})
}

// InventoryHandler 列出指定地址持有的专辑。
// 不带address参数时使用当前用户绑定的钱包地址。
func (h *APIHandler) InventoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := strings.ToLower(r.URL.Query().Get("address"))
	if address == "" {
		userID, err := GetUserIDFromContext(ctx)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := h.userRepo.GetUserByID(userID)
		if err != nil || user.WalletAddress == "" {
			http.Error(w, "No wallet bound: pass ?address= or bind a wallet first", http.StatusBadRequest)
			return
		}
		address = strings.ToLower(user.WalletAddress)
	}

	total, err := h.story.TotalSupply(ctx)
	if err != nil {
		http.Error(w, "Failed to query collection", http.StatusBadGateway)
		return
	}

	items := make([]*model.NFTItem, 0)
	for tokenID := int64(1); tokenID <= total; tokenID++ {
		owner, err := h.story.OwnerOf(ctx, tokenID)
		if err != nil || strings.ToLower(owner) != address {
			continue
		}
		uri, err := h.story.TokenURI(ctx, tokenID)
		if err != nil {
			continue
		}
		item := &model.NFTItem{TokenID: tokenID, TokenURI: uri, Owner: owner}
		if meta, err := h.fetchManifest(ctx, cidFromTokenURI(uri)); err == nil {
			item.Metadata = meta
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, items)
}

// NFTHandler 单个专辑的详情视图
func (h *APIHandler) NFTHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID, err := strconv.ParseInt(mux.Vars(r)["token_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	uri, err := h.story.TokenURI(ctx, tokenID)
	if err != nil {
		http.Error(w, "Token not found", http.StatusNotFound)
		return
	}
	owner, err := h.story.OwnerOf(ctx, tokenID)
	if err != nil {
		logger.Warn("[NFT] 查询持有人失败", logger.Int64("tokenId", tokenID), logger.ErrorField(err))
	}

	item := &model.NFTItem{TokenID: tokenID, TokenURI: uri, Owner: owner}
	meta, err := h.fetchManifest(ctx, cidFromTokenURI(uri))
	if err != nil {
		logger.Warn("[NFT] 取回清单失败", logger.Int64("tokenId", tokenID), logger.ErrorField(err))
	} else {
		item.Metadata = meta
	}

	// 本地有发布记录时附带许可信息
	resp := map[string]interface{}{
		"tokenId":  item.TokenID,
		"tokenUri": item.TokenURI,
		"owner":    item.Owner,
		"metadata": item.Metadata,
	}
	if record, err := h.albumRepo.GetByTokenID(ctx, tokenID); err == nil && record != nil {
		resp["ipId"] = record.IPID
		if record.LicenseTermsID != "" {
			resp["licenseTermsId"] = record.LicenseTermsID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// RegisterLicenseHandler 为专辑注册商业使用许可条款。
// IP资产ID优先走显式注册，注册不可用时回退到确定性推导。
func (h *APIHandler) RegisterLicenseHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID, err := strconv.ParseInt(mux.Vars(r)["token_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	var req struct {
		MintingFee string `json:"mintingFee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ipID, err := h.story.ResolveIPID(ctx, tokenID)
	if err != nil {
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}
	termsID, err := h.story.RegisterCommercialLicense(ctx, ipID, req.MintingFee)
	if err != nil {
		switch {
		case errors.Is(err, story.ErrNotConnected):
			http.Error(w, err.Error(), http.StatusPreconditionFailed)
		case errors.Is(err, story.ErrInvalidFee):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			logger.Error("[License] 注册失败",
				logger.Int64("tokenId", tokenID),
				logger.ErrorField(err))
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	// 同步到发布记录，库存视图可以直接展示许可状态
	if err := h.albumRepo.SetLicenseTerms(ctx, tokenID, termsID); err != nil {
		logger.Warn("[License] 更新发布记录失败",
			logger.Int64("tokenId", tokenID),
			logger.ErrorField(err))
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"ipId":           ipID,
		"licenseTermsId": termsID,
	})
}

// MintLicenseTokenHandler 向接收地址铸造许可代币
func (h *APIHandler) MintLicenseTokenHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID, err := strconv.ParseInt(mux.Vars(r)["token_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	var req struct {
		LicenseTermsID string `json:"licenseTermsId"`
		Receiver       string `json:"receiver"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.LicenseTermsID == "" || req.Receiver == "" {
		http.Error(w, "licenseTermsId and receiver are required", http.StatusBadRequest)
		return
	}

	ipID, err := h.story.ResolveIPID(ctx, tokenID)
	if err != nil {
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}
	txHash, err := h.story.MintLicenseTokens(ctx, ipID, req.LicenseTermsID, req.Receiver)
	if err != nil {
		if errors.Is(err, story.ErrNotConnected) {
			http.Error(w, err.Error(), http.StatusPreconditionFailed)
			return
		}
		logger.Error("[License] 铸造许可代币失败",
			logger.Int64("tokenId", tokenID),
			logger.ErrorField(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"ipId":   ipID,
		"txHash": txHash,
	})
}

// SwapHandler IP与WIP之间的包装/解包
func (h *APIHandler) SwapHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"` // wrap | unwrap
		Amount    string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var txHash string
	var err error
	switch req.Direction {
	case "wrap":
		txHash, err = h.story.Deposit(r.Context(), req.Amount)
	case "unwrap":
		txHash, err = h.story.Withdraw(r.Context(), req.Amount)
	default:
		http.Error(w, "direction must be 'wrap' or 'unwrap'", http.StatusBadRequest)
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, story.ErrNotConnected):
			http.Error(w, err.Error(), http.StatusPreconditionFailed)
		case errors.Is(err, story.ErrInvalidFee):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"txHash": txHash})
}
