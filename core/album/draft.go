package album

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"StoryFM/core/recorder"
	"StoryFM/model"

	"github.com/google/uuid"
)

var (
	// ErrValidation 发布前置条件不满足，未产生任何副作用
	ErrValidation = errors.New("validation failed")
	// ErrEmptyName 专辑名为空
	ErrEmptyName = fmt.Errorf("%w: album name is required", ErrValidation)
	// ErrNoRecordedTracks 没有任何音轨有录音数据
	ErrNoRecordedTracks = fmt.Errorf("%w: at least one recorded track is required", ErrValidation)
	// ErrTrackNotFound 指定的音轨不存在
	ErrTrackNotFound = errors.New("track not found")
)

// Track 草稿中的一条音轨。音轨ID在草稿生命周期内唯一，
// 移除后不会复用；Uploaded 一旦置位不再回退。
type Track struct {
	ID      string
	Name    string
	Session *recorder.Session

	Audio     []byte
	CID       string
	Uploading bool
	Uploaded  bool
}

// Draft 尚未发布的专辑聚合。所有修改都经过具名方法，
// 并发访问由内部互斥锁保护。
type Draft struct {
	mu sync.Mutex

	ID     string
	UserID int64

	name        string
	cover       []byte
	manifestCID string
	tracks      []*Track
}

// NewDraft 创建空白草稿
func NewDraft(userID int64) *Draft {
	return &Draft{
		ID:     uuid.New().String(),
		UserID: userID,
	}
}

// SetName 更新专辑名
func (d *Draft) SetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
}

// Name 返回专辑名
func (d *Draft) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// SetCover 更新封面图片原始字节
func (d *Draft) SetCover(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cover = data
}

// Cover 返回封面图片字节，未设置时为nil
func (d *Draft) Cover() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cover
}

// AddTrack 追加一条新音轨，默认名为 "Track <n>"，
// n 取追加时的音轨数+1，之后移除别的音轨也不重新编号。
func (d *Draft) AddTrack() *Track {
	d.mu.Lock()
	defer d.mu.Unlock()
	track := &Track{
		ID:      uuid.New().String(),
		Name:    fmt.Sprintf("Track %d", len(d.tracks)+1),
		Session: recorder.NewSession(),
	}
	d.tracks = append(d.tracks, track)
	return track
}

// TrackUpdate 音轨的部分更新
type TrackUpdate struct {
	Name *string
}

// UpdateTrack 按ID更新音轨
func (d *Draft) UpdateTrack(id string, update TrackUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, track := range d.tracks {
		if track.ID == id {
			if update.Name != nil {
				track.Name = *update.Name
			}
			return nil
		}
	}
	return ErrTrackNotFound
}

// RemoveTrack 按ID移除音轨。若该音轨正在录音，
// 先同步释放采集设备再丢弃状态。
func (d *Draft) RemoveTrack(id string) error {
	d.mu.Lock()
	var target *Track
	for i, track := range d.tracks {
		if track.ID == id {
			target = track
			d.tracks = append(d.tracks[:i], d.tracks[i+1:]...)
			break
		}
	}
	d.mu.Unlock()

	if target == nil {
		return ErrTrackNotFound
	}
	target.Session.Release()
	return nil
}

// Track 按ID查找音轨
func (d *Draft) Track(id string) (*Track, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, track := range d.tracks {
		if track.ID == id {
			return track, nil
		}
	}
	return nil, ErrTrackNotFound
}

// Tracks 返回音轨切片的副本，保持展示顺序
func (d *Draft) Tracks() []*Track {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Track, len(d.tracks))
	copy(out, d.tracks)
	return out
}

// trackSnapshot 音轨字段在某一时刻的一致性副本。
// 发布流程基于快照工作，不与并发的重命名或停录竞争。
type trackSnapshot struct {
	track    *Track
	name     string
	audio    []byte
	cid      string
	uploaded bool
}

// snapshotTracks 在锁内拷贝所有音轨的发布相关字段
func (d *Draft) snapshotTracks() []trackSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]trackSnapshot, 0, len(d.tracks))
	for _, track := range d.tracks {
		out = append(out, trackSnapshot{
			track:    track,
			name:     track.Name,
			audio:    track.Audio,
			cid:      track.CID,
			uploaded: track.Uploaded,
		})
	}
	return out
}

// StartCapture 在指定音轨上开始录音。不同音轨的录音互不影响。
func (d *Draft) StartCapture(ctx context.Context, trackID string, device recorder.Device) error {
	track, err := d.Track(trackID)
	if err != nil {
		return err
	}
	return track.Session.Start(ctx, device)
}

// StopCapture 结束指定音轨的录音并把音频数据挂到音轨上
func (d *Draft) StopCapture(trackID string) error {
	track, err := d.Track(trackID)
	if err != nil {
		return err
	}
	payload, err := track.Session.Stop()
	if len(payload) > 0 {
		d.mu.Lock()
		track.Audio = payload
		d.mu.Unlock()
	}
	return err
}

// SetPublished 记录清单CID，此后草稿视为已发布
func (d *Draft) SetPublished(manifestCID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.manifestCID = manifestCID
}

// ManifestCID 返回已发布清单的CID，未发布时为空
func (d *Draft) ManifestCID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.manifestCID
}

// View 生成给API层的草稿快照
func (d *Draft) View() *model.DraftView {
	d.mu.Lock()
	defer d.mu.Unlock()
	view := &model.DraftView{
		ID:          d.ID,
		Name:        d.name,
		HasCover:    len(d.cover) > 0,
		ManifestCID: d.manifestCID,
		Songs:       make([]*model.Song, 0, len(d.tracks)),
	}
	for _, track := range d.tracks {
		view.Songs = append(view.Songs, &model.Song{
			ID:          track.ID,
			Name:        track.Name,
			HasAudio:    len(track.Audio) > 0,
			IpfsHash:    track.CID,
			IsRecording: track.Session.Recording(),
			IsUploading: track.Uploading,
			Uploaded:    track.Uploaded,
			Elapsed:     track.Session.Elapsed(),
		})
	}
	return view
}
