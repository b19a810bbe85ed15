package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"StoryFM/core/recorder"
	"StoryFM/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsStream 把 WebSocket 推上来的音频分片适配成 recorder.Stream。
// 读循环是唯一的推送方，采集循环是唯一的消费方。
type wsStream struct {
	chunks chan []byte

	mu     sync.Mutex
	closed bool
	err    error
}

func newWSStream() *wsStream {
	return &wsStream{chunks: make(chan []byte, 64)}
}

func (s *wsStream) Chunks() <-chan []byte { return s.chunks }

func (s *wsStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close 释放流并结束采集循环；幂等
func (s *wsStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.chunks)
	return nil
}

// push 推入一个音频分片；流已关闭时返回false
func (s *wsStream) push(chunk []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.chunks <- chunk
	return true
}

func (s *wsStream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// wsDevice 一条 WebSocket 连接充当一次性的录音设备
type wsDevice struct {
	stream *wsStream
}

func (d *wsDevice) Acquire(ctx context.Context) (recorder.Stream, error) {
	if d.stream == nil {
		return nil, recorder.ErrDeviceUnavailable
	}
	return d.stream, nil
}

// mapClientCaptureError 把浏览器侧的 getUserMedia 错误名映射到本地错误
func mapClientCaptureError(name string) error {
	switch name {
	case "NotAllowedError":
		return recorder.ErrPermissionDenied
	case "NotFoundError":
		return recorder.ErrDeviceUnavailable
	default:
		return errors.New("capture error: " + name)
	}
}

// CaptureHandler 录音接入点。浏览器连上来后开始推送二进制
// 音频分片；文本帧 "stop" 结束录音，"error:<Name>" 上报采集错误。
// 连接断开等价于停止。
func (h *APIHandler) CaptureHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	draft, status, err := h.getDraft(r, vars["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	trackID := vars["track_id"]
	if _, err := draft.Track(trackID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	stream := newWSStream()
	if err := draft.StartCapture(r.Context(), trackID, &wsDevice{stream: stream}); err != nil {
		logger.Warn("[Capture] 无法开始录音",
			logger.String("trackId", trackID),
			logger.ErrorField(err))
		conn.WriteMessage(websocket.TextMessage, []byte("error: "+err.Error()))
		return
	}
	logger.Info("[Capture] 开始录音",
		logger.String("draftId", draft.ID),
		logger.String("trackId", trackID))

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			// 断开视为停止
			break
		}
		switch msgType {
		case websocket.BinaryMessage:
			if !stream.push(data) {
				// 音轨在录音中被移除，流已释放
				logger.Info("[Capture] 流已释放，结束接收",
					logger.String("trackId", trackID))
				return
			}
		case websocket.TextMessage:
			text := string(data)
			if text == "stop" {
				goto done
			}
			if name, ok := strings.CutPrefix(text, "error:"); ok {
				stream.setErr(mapClientCaptureError(strings.TrimSpace(name)))
				goto done
			}
		}
	}

done:
	if err := draft.StopCapture(trackID); err != nil {
		logger.Warn("[Capture] 录音结束时报告错误",
			logger.String("trackId", trackID),
			logger.ErrorField(err))
		conn.WriteMessage(websocket.TextMessage, []byte("error: "+err.Error()))
		return
	}
	logger.Info("[Capture] 录音完成",
		logger.String("draftId", draft.ID),
		logger.String("trackId", trackID))
	conn.WriteMessage(websocket.TextMessage, []byte("stopped"))
}

// TrackAudioHandler 回放已录制的音频数据，用于本地预览
func (h *APIHandler) TrackAudioHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	draft, status, err := h.getDraft(r, vars["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	track, err := draft.Track(vars["track_id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	payload := track.Session.Payload()
	if len(payload) == 0 {
		http.Error(w, "Track has no recorded audio", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "audio/webm")
	w.Write(payload)
}

// TrackPreviewHandler 控制预览播放状态：{"action":"play"|"pause"}
func (h *APIHandler) TrackPreviewHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	draft, status, err := h.getDraft(r, vars["id"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	track, err := draft.Track(vars["track_id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	action := r.URL.Query().Get("action")
	switch action {
	case "play":
		err = track.Session.Play()
	case "pause":
		err = track.Session.Pause()
	default:
		http.Error(w, "action must be 'play' or 'pause'", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"playing": track.Session.Playing()})
}
