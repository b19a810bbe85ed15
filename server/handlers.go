package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"StoryFM/config"
	"StoryFM/core/album"
	"StoryFM/core/story"
	"StoryFM/repository"
	"StoryFM/storage"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	drafts    *album.Manager
	publisher *album.Publisher
	story     *story.Client
	uploader  storage.Uploader
	userRepo  repository.UserRepository
	albumRepo repository.PublishedAlbumRepository
	cfg       *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	drafts *album.Manager,
	publisher *album.Publisher,
	storyClient *story.Client,
	uploader storage.Uploader,
	userRepo repository.UserRepository,
	albumRepo repository.PublishedAlbumRepository,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		drafts:    drafts,
		publisher: publisher,
		story:     storyClient,
		uploader:  uploader,
		userRepo:  userRepo,
		albumRepo: albumRepo,
		cfg:       cfg,
	}
}

// writeJSON 输出JSON响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(ctxKeyUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// getDraft 从请求上下文与路径参数解析出当前用户的草稿
func (h *APIHandler) getDraft(r *http.Request, draftID string) (*album.Draft, int, error) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, http.StatusUnauthorized, fmt.Errorf("unauthorized")
	}
	draft, err := h.drafts.Get(draftID, userID)
	if err != nil {
		return nil, http.StatusNotFound, err
	}
	return draft, http.StatusOK, nil
}
