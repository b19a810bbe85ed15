package model

import "time"

// AlbumMeta 专辑元数据清单，序列化后存储到IPFS。
// 字段形状对外有兼容约束，galleries 通过网关取回同样的JSON。
type AlbumMeta struct {
	Name       string      `json:"name"`
	CoverImage *string     `json:"coverImage"` // 封面CID，可为空
	Songs      []SongEntry `json:"songs"`
	CreatedAt  string      `json:"createdAt"` // RFC 3339
	TotalSongs int         `json:"totalSongs"`
}

// DraftView 返回给前端的草稿快照
type DraftView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	HasCover    bool    `json:"hasCover"`
	ManifestCID string  `json:"manifestCid,omitempty"`
	Songs       []*Song `json:"songs"`
}

// PublishedAlbum 已发布专辑的数据库记录
type PublishedAlbum struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         int64     `json:"userId" gorm:"index;not null"`
	Name           string    `json:"name" gorm:"size:255;not null"`
	ManifestCID    string    `json:"manifestCid" gorm:"column:manifest_cid;size:128;uniqueIndex;not null"`
	CoverCID       string    `json:"coverCid,omitempty" gorm:"column:cover_cid;size:128"`
	TokenID        int64     `json:"tokenId" gorm:"index"`
	IPID           string    `json:"ipId,omitempty" gorm:"column:ip_id;size:66"`
	LicenseTermsID string    `json:"licenseTermsId,omitempty" gorm:"size:32"`
	TotalSongs     int       `json:"totalSongs"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName 指定 GORM 表名
func (PublishedAlbum) TableName() string {
	return "published_albums"
}
