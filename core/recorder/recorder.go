package recorder

import (
	"context"
	"errors"
)

var (
	// ErrDeviceUnavailable 没有可用的采集设备/采集接口
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	// ErrPermissionDenied 用户或系统拒绝了设备访问
	ErrPermissionDenied = errors.New("capture permission denied")
	// ErrDeviceBusy 设备已被占用（本音轨已在录音中）
	ErrDeviceBusy = errors.New("capture device busy")
	// ErrNoPayload 尚无录音数据，无法进行预览播放
	ErrNoPayload = errors.New("no recorded payload")
)

// Device 抽象一个录音设备。生产环境由浏览器经 WebSocket
// 推流实现，测试中使用内存假设备。
type Device interface {
	// Acquire 请求设备并打开采集流。实现通过返回上面的
	// 哨兵错误来区分失败原因。
	Acquire(ctx context.Context) (Stream, error)
}

// Stream 一次已打开的采集流。Chunks 返回的通道在设备停止
// 产出后关闭；Close 释放设备，必须幂等。
type Stream interface {
	Chunks() <-chan []byte
	Err() error
	Close() error
}
