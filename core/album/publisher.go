package album

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"StoryFM/logger"
	"StoryFM/model"
	"StoryFM/storage"
)

// Minter 把已上传的清单注册为链上资产
type Minter interface {
	MintAndRegister(ctx context.Context, manifestCID string) (*model.MintedAsset, error)
}

// Result 一次发布的结果。ManifestCID 在清单上传成功后即有效，
// 即使后续铸造失败也可以通过网关取回。
type Result struct {
	ManifestCID string
	CoverCID    string
	Manifest    *model.AlbumMeta
	Asset       *model.MintedAsset
}

// Publisher 编排完整的发布流程：封面上传、逐轨上传、
// 清单组装与上传、链上注册。
type Publisher struct {
	uploader storage.Uploader
	minter   Minter
}

// NewPublisher 创建发布编排器
func NewPublisher(uploader storage.Uploader, minter Minter) *Publisher {
	return &Publisher{uploader: uploader, minter: minter}
}

// Publish 执行完整的发布序列。步骤严格串行：
//  1. 前置校验，失败立即返回且不触发任何网络调用；
//  2. 封面上传，失败不致命，专辑继续以无封面发布；
//  3. 按展示顺序逐轨上传，单轨失败只把该轨排除出清单；
//     已上传过的音轨复用其CID，不重复上传；
//  4. 清单上传，失败终止整个发布；
//  5. 铸造。铸造失败时错误上抛，但清单CID仍然有效。
func (p *Publisher) Publish(ctx context.Context, draft *Draft) (*Result, error) {
	name := strings.TrimSpace(draft.Name())
	if name == "" {
		return nil, ErrEmptyName
	}
	// 后续步骤都基于这份快照，不受并发修改影响
	tracks := draft.snapshotTracks()
	recorded := 0
	for _, track := range tracks {
		if len(track.audio) > 0 {
			recorded++
		}
	}
	if recorded == 0 {
		return nil, ErrNoRecordedTracks
	}

	// 封面：失败降级为无封面
	var coverCID *string
	if cover := draft.Cover(); len(cover) > 0 {
		cid, err := p.uploader.Upload(ctx, safeFilename(name)+"-cover", cover)
		if err != nil {
			logger.Warn("[Publish] 封面上传失败，专辑将以无封面发布",
				logger.String("album", name),
				logger.ErrorField(err))
		} else {
			coverCID = &cid
		}
	}

	// 逐轨串行上传：一条失败不影响后续音轨
	uploaded := make([]model.SongEntry, 0, len(tracks))
	for _, track := range tracks {
		if len(track.audio) == 0 {
			continue
		}
		if track.uploaded && track.cid != "" {
			// 上次发布尝试已经上传过，复用CID
			uploaded = append(uploaded, model.SongEntry{Name: track.name, IpfsHash: track.cid})
			continue
		}

		draft.setTrackUploading(track.track, true)
		cid, err := p.uploader.Upload(ctx, safeFilename(track.name)+".webm", track.audio)
		draft.setTrackUploading(track.track, false)
		if err != nil {
			logger.Warn("[Publish] 音轨上传失败，已从清单中排除",
				logger.String("track", track.name),
				logger.ErrorField(err))
			continue
		}
		draft.setTrackUploaded(track.track, cid)
		uploaded = append(uploaded, model.SongEntry{Name: track.name, IpfsHash: cid})
	}

	meta := &model.AlbumMeta{
		Name:       name,
		CoverImage: coverCID,
		Songs:      uploaded,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		TotalSongs: len(uploaded),
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化清单失败: %w", err)
	}

	manifestCID, err := p.uploader.Upload(ctx, safeFilename(name)+"-album.json", data)
	if err != nil {
		// 清单上传失败是致命的，不存在部分发布
		return nil, fmt.Errorf("清单上传失败: %w", err)
	}

	result := &Result{ManifestCID: manifestCID, Manifest: meta}
	if coverCID != nil {
		result.CoverCID = *coverCID
	}

	asset, err := p.minter.MintAndRegister(ctx, manifestCID)
	if err != nil {
		return result, fmt.Errorf("铸造失败: %w", err)
	}
	result.Asset = asset

	draft.SetPublished(manifestCID)
	logger.Info("[Publish] 专辑发布完成",
		logger.String("album", name),
		logger.String("manifestCid", manifestCID),
		logger.Int64("tokenId", asset.TokenID),
		logger.Int("totalSongs", meta.TotalSongs))
	return result, nil
}

// setTrackUploading 标记音轨的上传中状态
func (d *Draft) setTrackUploading(track *Track, uploading bool) {
	d.mu.Lock()
	track.Uploading = uploading
	d.mu.Unlock()
}

// setTrackUploaded 记录音轨CID并置位 Uploaded（单向，不回退）
func (d *Draft) setTrackUploaded(track *Track, cid string) {
	d.mu.Lock()
	track.CID = cid
	track.Uploaded = true
	d.mu.Unlock()
}

// safeFilename 把名称里的空白替换为连字符
func safeFilename(name string) string {
	return strings.Join(strings.Fields(name), "-")
}
