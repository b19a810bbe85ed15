package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeStream 是一个内存中的采集流，测试用
type fakeStream struct {
	ch     chan []byte
	err    error
	mu     sync.Mutex
	closed int
}

func newFakeStream(chunks ...[]byte) *fakeStream {
	s := &fakeStream{ch: make(chan []byte, len(chunks)+1)}
	for _, c := range chunks {
		s.ch <- c
	}
	return s
}

func (s *fakeStream) Chunks() <-chan []byte { return s.ch }
func (s *fakeStream) Err() error            { return s.err }

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	if s.closed == 1 {
		close(s.ch)
	}
	return nil
}

func (s *fakeStream) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeDevice struct {
	stream *fakeStream
	err    error
}

func (d *fakeDevice) Acquire(ctx context.Context) (Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

func TestSessionStartStop(t *testing.T) {
	stream := newFakeStream([]byte("abc"), []byte("def"))
	session := NewSession()

	if err := session.Start(context.Background(), &fakeDevice{stream: stream}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !session.Recording() {
		t.Error("Recording() = false after Start")
	}

	payload, err := session.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if string(payload) != "abcdef" {
		t.Errorf("payload = %q, want chunks joined in order", payload)
	}
	if session.Recording() {
		t.Error("Recording() = true after Stop")
	}
	if stream.closeCount() == 0 {
		t.Error("stream not released after Stop")
	}
	if string(session.Payload()) != "abcdef" {
		t.Errorf("Payload() = %q, want abcdef", session.Payload())
	}
}

func TestSessionStopWhenIdle(t *testing.T) {
	session := NewSession()
	payload, err := session.Stop()
	if err != nil {
		t.Fatalf("Stop on idle session: %v", err)
	}
	if payload != nil {
		t.Errorf("payload = %v, want nil", payload)
	}
}

func TestSessionStartWhileCapturing(t *testing.T) {
	stream := newFakeStream()
	session := NewSession()

	if err := session.Start(context.Background(), &fakeDevice{stream: stream}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer session.Release()

	err := session.Start(context.Background(), &fakeDevice{stream: newFakeStream()})
	if !errors.Is(err, ErrDeviceBusy) {
		t.Errorf("second Start error = %v, want ErrDeviceBusy", err)
	}
}

func TestSessionAcquireFailure(t *testing.T) {
	session := NewSession()
	err := session.Start(context.Background(), &fakeDevice{err: ErrPermissionDenied})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Start error = %v, want ErrPermissionDenied", err)
	}
	if session.Recording() {
		t.Error("Recording() = true after failed Start")
	}
}

func TestSessionReleaseDiscardsData(t *testing.T) {
	stream := newFakeStream([]byte("partial"))
	session := NewSession()

	if err := session.Start(context.Background(), &fakeDevice{stream: stream}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	session.Release()
	if session.Recording() {
		t.Error("Recording() = true after Release")
	}
	if stream.closeCount() != 1 {
		t.Errorf("stream closed %d times, want 1", stream.closeCount())
	}
	if len(session.Payload()) != 0 {
		t.Errorf("Payload() = %q, want empty after Release", session.Payload())
	}

	// 幂等
	session.Release()
	if stream.closeCount() != 1 {
		t.Errorf("stream closed %d times after second Release, want 1", stream.closeCount())
	}
}

func TestSessionStopReportsStreamError(t *testing.T) {
	stream := newFakeStream([]byte("abc"))
	stream.err = ErrDeviceUnavailable
	session := NewSession()

	if err := session.Start(context.Background(), &fakeDevice{stream: stream}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	payload, err := session.Stop()
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Stop error = %v, want ErrDeviceUnavailable", err)
	}
	if string(payload) != "abc" {
		t.Errorf("payload = %q, want buffered data kept on error", payload)
	}
}

func TestSessionPlayPauseRequirePayload(t *testing.T) {
	session := NewSession()
	if err := session.Play(); !errors.Is(err, ErrNoPayload) {
		t.Errorf("Play without payload = %v, want ErrNoPayload", err)
	}
	if err := session.Pause(); !errors.Is(err, ErrNoPayload) {
		t.Errorf("Pause without payload = %v, want ErrNoPayload", err)
	}

	stream := newFakeStream([]byte("abc"))
	if err := session.Start(context.Background(), &fakeDevice{stream: stream}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := session.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if err := session.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !session.Playing() {
		t.Error("Playing() = false after Play")
	}
	if err := session.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if session.Playing() {
		t.Error("Playing() = true after Pause")
	}
}
