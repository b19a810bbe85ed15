package repository

import (
	"context"
	"errors"

	"StoryFM/model"

	"gorm.io/gorm"
)

// PublishedAlbumRepository 已发布专辑记录的数据访问接口。
// 发布记录让库存视图不必依赖链上枚举。
type PublishedAlbumRepository interface {
	Create(ctx context.Context, album *model.PublishedAlbum) error
	GetByManifestCID(ctx context.Context, cid string) (*model.PublishedAlbum, error)
	GetByTokenID(ctx context.Context, tokenID int64) (*model.PublishedAlbum, error)
	ListByUserID(ctx context.Context, userID int64) ([]*model.PublishedAlbum, error)
	SetLicenseTerms(ctx context.Context, tokenID int64, licenseTermsID string) error
}

// gormPublishedAlbumRepository GORM 实现
type gormPublishedAlbumRepository struct {
	db *gorm.DB
}

// NewGormPublishedAlbumRepository 创建 GORM 发布记录仓库
func NewGormPublishedAlbumRepository(db *gorm.DB) PublishedAlbumRepository {
	return &gormPublishedAlbumRepository{db: db}
}

// Create 写入发布记录
func (r *gormPublishedAlbumRepository) Create(ctx context.Context, album *model.PublishedAlbum) error {
	return r.db.WithContext(ctx).Create(album).Error
}

// GetByManifestCID 按清单CID查发布记录
func (r *gormPublishedAlbumRepository) GetByManifestCID(ctx context.Context, cid string) (*model.PublishedAlbum, error) {
	var album model.PublishedAlbum
	err := r.db.WithContext(ctx).Where("manifest_cid = ?", cid).First(&album).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// GetByTokenID 按链上 token ID 查发布记录
func (r *gormPublishedAlbumRepository) GetByTokenID(ctx context.Context, tokenID int64) (*model.PublishedAlbum, error) {
	var album model.PublishedAlbum
	err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&album).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// ListByUserID 列出用户发布过的专辑，新的在前
func (r *gormPublishedAlbumRepository) ListByUserID(ctx context.Context, userID int64) ([]*model.PublishedAlbum, error) {
	var albums []*model.PublishedAlbum
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&albums).Error
	if err != nil {
		return nil, err
	}
	return albums, nil
}

// SetLicenseTerms 记录挂接到资产上的许可条款ID
func (r *gormPublishedAlbumRepository) SetLicenseTerms(ctx context.Context, tokenID int64, licenseTermsID string) error {
	return r.db.WithContext(ctx).
		Model(&model.PublishedAlbum{}).
		Where("token_id = ?", tokenID).
		Update("license_terms_id", licenseTermsID).Error
}
