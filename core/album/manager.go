package album

import (
	"errors"
	"sync"
)

// ErrDraftNotFound 草稿不存在或不属于该用户
var ErrDraftNotFound = errors.New("draft not found")

// Manager 维护内存中的专辑草稿。草稿是单用户活动状态，
// 不做跨进程持久化，进程重启即丢弃。
type Manager struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

// NewManager 创建草稿管理器
func NewManager() *Manager {
	return &Manager{drafts: make(map[string]*Draft)}
}

// Create 为用户创建新草稿
func (m *Manager) Create(userID int64) *Draft {
	draft := NewDraft(userID)
	m.mu.Lock()
	m.drafts[draft.ID] = draft
	m.mu.Unlock()
	return draft
}

// Get 按ID取草稿并校验归属
func (m *Manager) Get(id string, userID int64) (*Draft, error) {
	m.mu.Lock()
	draft, ok := m.drafts[id]
	m.mu.Unlock()
	if !ok || draft.UserID != userID {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// Delete 丢弃草稿，释放所有仍在录音的音轨
func (m *Manager) Delete(id string, userID int64) error {
	m.mu.Lock()
	draft, ok := m.drafts[id]
	if ok && draft.UserID == userID {
		delete(m.drafts, id)
	}
	m.mu.Unlock()
	if !ok || draft.UserID != userID {
		return ErrDraftNotFound
	}
	for _, track := range draft.Tracks() {
		track.Session.Release()
	}
	return nil
}
