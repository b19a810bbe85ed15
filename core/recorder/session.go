package recorder

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"StoryFM/logger"
)

// Session 管理一条音轨的录音会话状态机：
// idle → capturing → idle(带录音数据)。
// 设备在每一条退出路径上都会被释放：显式停止、错误、
// 以及录音中途移除音轨。
type Session struct {
	mu sync.Mutex

	stream    Stream
	capturing bool
	playing   bool
	payload   []byte
	elapsed   int

	stopTicker chan struct{}
	collected  chan struct{}
	chunks     [][]byte
}

// NewSession 创建一个空闲会话
func NewSession() *Session {
	return &Session{}
}

// Start 请求设备并开始录音。同一会话不允许并发录音，
// 重复 Start 返回 ErrDeviceBusy。
func (s *Session) Start(ctx context.Context, device Device) error {
	s.mu.Lock()
	if s.capturing {
		s.mu.Unlock()
		return ErrDeviceBusy
	}
	s.mu.Unlock()

	stream, err := device.Acquire(ctx)
	if err != nil {
		// 设备层哨兵错误原样向上传递
		return fmt.Errorf("开始录音失败: %w", err)
	}

	s.mu.Lock()
	if s.capturing {
		// 竞争的 Start 抢先成功了，释放多余的流
		s.mu.Unlock()
		stream.Close()
		return ErrDeviceBusy
	}
	s.stream = stream
	s.capturing = true
	s.playing = false
	s.elapsed = 0
	s.chunks = nil
	s.stopTicker = make(chan struct{})
	s.collected = make(chan struct{})
	s.mu.Unlock()

	// 秒级计时器，仅用于前端展示
	go func(stop chan struct{}) {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				s.elapsed++
				s.mu.Unlock()
			case <-stop:
				return
			}
		}
	}(s.stopTicker)

	// 采集循环：缓冲编码后的音频分片直到流关闭
	go func(stream Stream, done chan struct{}) {
		defer close(done)
		for chunk := range stream.Chunks() {
			if len(chunk) == 0 {
				continue
			}
			s.mu.Lock()
			s.chunks = append(s.chunks, chunk)
			s.mu.Unlock()
		}
	}(stream, s.collected)

	return nil
}

// Stop 结束录音：合并已缓冲的分片为单个音频数据，释放设备。
// 非录音状态下调用是无操作。若采集流报告了错误则一并返回，
// 已缓冲的数据仍然保留。
func (s *Session) Stop() ([]byte, error) {
	s.mu.Lock()
	if !s.capturing {
		s.mu.Unlock()
		return nil, nil
	}
	stream := s.stream
	stopTicker := s.stopTicker
	collected := s.collected
	s.capturing = false
	s.stream = nil
	s.mu.Unlock()

	close(stopTicker)
	if err := stream.Close(); err != nil {
		logger.Warn("释放采集流失败", logger.ErrorField(err))
	}
	// 等待采集循环把剩余分片写完
	<-collected

	s.mu.Lock()
	payload := bytes.Join(s.chunks, nil)
	s.payload = payload
	s.chunks = nil
	s.mu.Unlock()

	if err := stream.Err(); err != nil {
		return payload, fmt.Errorf("录音过程中发生错误: %w", err)
	}
	return payload, nil
}

// Release 强制释放会话资源，用于录音中途移除音轨。
// 丢弃未完成的录音数据；幂等。
func (s *Session) Release() {
	s.mu.Lock()
	if !s.capturing {
		s.mu.Unlock()
		return
	}
	stream := s.stream
	stopTicker := s.stopTicker
	collected := s.collected
	s.capturing = false
	s.stream = nil
	s.mu.Unlock()

	close(stopTicker)
	stream.Close()
	<-collected

	s.mu.Lock()
	s.chunks = nil
	s.mu.Unlock()
}

// Play 开始本地预览播放，要求已有录音数据
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.payload) == 0 {
		return ErrNoPayload
	}
	s.playing = true
	return nil
}

// Pause 暂停预览播放
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.payload) == 0 {
		return ErrNoPayload
	}
	s.playing = false
	return nil
}

// Payload 返回最近一次录音的完整音频数据
func (s *Session) Payload() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload
}

// Recording 返回是否正在录音
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capturing
}

// Playing 返回是否正在预览播放
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Elapsed 返回录音已进行的秒数
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}
