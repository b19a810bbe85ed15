package server

import (
	"errors"
	"io"
	"net/http"

	"StoryFM/logger"
	"StoryFM/storage"
)

const maxUploadSize = 64 << 20 // 64MB

// UploadHandler 通用的IPFS上传中转，把multipart文件转存到内容寻址存储
func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Failed to parse upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	cid, err := h.uploader.Upload(r.Context(), header.Filename, payload)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyPayload) {
			http.Error(w, "File is empty", http.StatusBadRequest)
			return
		}
		logger.Error("[Upload] 上传失败",
			logger.String("filename", header.Filename),
			logger.ErrorField(err))
		http.Error(w, "Upload failed", http.StatusBadGateway)
		return
	}

	logger.Info("[Upload] 上传完成",
		logger.String("filename", header.Filename),
		logger.String("cid", cid))
	writeJSON(w, http.StatusOK, map[string]string{"ipfsHash": cid})
}
