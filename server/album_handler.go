package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"StoryFM/core/album"
	"StoryFM/core/story"
	"StoryFM/logger"
	"StoryFM/model"

	"github.com/gorilla/mux"
)

// CreateDraftHandler 创建新的专辑草稿
func (h *APIHandler) CreateDraftHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	draft := h.drafts.Create(userID)
	logger.Info("[Draft] 创建草稿",
		logger.String("draftId", draft.ID),
		logger.Int64("userId", userID))
	writeJSON(w, http.StatusCreated, draft.View())
}

// GetDraftHandler 返回草稿快照
func (h *APIHandler) GetDraftHandler(w http.ResponseWriter, r *http.Request) {
	draft, status, err := h.getDraft(r, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, draft.View())
}

// UpdateDraftHandler 更新专辑名
func (h *APIHandler) UpdateDraftHandler(w http.ResponseWriter, r *http.Request) {
	draft, status, err := h.getDraft(r, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	draft.SetName(req.Name)
	writeJSON(w, http.StatusOK, draft.View())
}

// DeleteDraftHandler 丢弃草稿
func (h *APIHandler) DeleteDraftHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.drafts.Delete(mux.Vars(r)["id"], userID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadDraftCoverHandler 接收封面图片并挂到草稿上
func (h *APIHandler) UploadDraftCoverHandler(w http.ResponseWriter, r *http.Request) {
	draft, status, err := h.getDraft(r, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	if err := r.ParseMultipartForm(16 << 20); err != nil { // 16MB max memory
		http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing 'file' in form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read cover image", http.StatusInternalServerError)
		return
	}
	if len(data) == 0 {
		http.Error(w, "Cover image is empty", http.StatusBadRequest)
		return
	}

	draft.SetCover(data)
	writeJSON(w, http.StatusOK, draft.View())
}

// AddTrackHandler 向草稿追加一条音轨
func (h *APIHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	draft, status, err := h.getDraft(r, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	track := draft.AddTrack()
	logger.Info("[Draft] 添加音轨",
		logger.String("draftId", draft.ID),
		logger.String("trackId", track.ID),
		logger.String("name", track.Name))
	writeJSON(w, http.StatusCreated, draft.View())
}

// UpdateTrackHandler 更新音轨（目前只有重命名）
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	draft, status, err := h.getDraft(r, vars["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	var req struct {
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := draft.UpdateTrack(vars["track_id"], album.TrackUpdate{Name: req.Name}); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, draft.View())
}

// RemoveTrackHandler 移除音轨，录音中的音轨会先释放设备
func (h *APIHandler) RemoveTrackHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	draft, status, err := h.getDraft(r, vars["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	if err := draft.RemoveTrack(vars["track_id"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, draft.View())
}

// PublishDraftHandler 执行发布序列并写入发布记录
func (h *APIHandler) PublishDraftHandler(w http.ResponseWriter, r *http.Request) {
	draft, status, err := h.getDraft(r, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	result, err := h.publisher.Publish(r.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, album.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, story.ErrNotConnected):
			http.Error(w, err.Error(), http.StatusPreconditionFailed)
		default:
			logger.Error("[Publish] 发布失败",
				logger.String("draftId", draft.ID),
				logger.ErrorField(err))
			// 清单已上传成功时一并返回其CID，方便用户重试铸造
			if result != nil {
				writeJSON(w, http.StatusBadGateway, map[string]interface{}{
					"error":       err.Error(),
					"manifestCid": result.ManifestCID,
				})
				return
			}
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	// 发布成功后写入库存记录；记录失败不影响已完成的发布
	record := &model.PublishedAlbum{
		UserID:      draft.UserID,
		Name:        result.Manifest.Name,
		ManifestCID: result.ManifestCID,
		CoverCID:    result.CoverCID,
		TokenID:     result.Asset.TokenID,
		IPID:        result.Asset.IPID,
		TotalSongs:  result.Manifest.TotalSongs,
	}
	if err := h.albumRepo.Create(r.Context(), record); err != nil {
		logger.Error("[Publish] 写入发布记录失败",
			logger.String("manifestCid", result.ManifestCID),
			logger.ErrorField(err))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"manifestCid": result.ManifestCID,
		"metadata":    result.Manifest,
		"asset":       result.Asset,
	})
}

// GetMyAlbumsHandler 列出当前用户发布过的专辑
func (h *APIHandler) GetMyAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	albums, err := h.albumRepo.ListByUserID(r.Context(), userID)
	if err != nil {
		logger.Error("[Albums] 查询发布记录失败", logger.ErrorField(err))
		http.Error(w, "Failed to list albums", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}
