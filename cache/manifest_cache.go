package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StoryFM/model"

	"github.com/redis/go-redis/v9"
)

// 清单是内容寻址的，同一个CID对应的内容不会变化，
// 缓存时间可以放得很长。
const manifestTTL = 24 * time.Hour

// manifestKey 根据CID生成清单缓存的Redis键
func manifestKey(cid string) string {
	return fmt.Sprintf("manifest:%s", cid)
}

// GetManifest 从缓存取专辑清单，未命中返回 (nil, nil)
func GetManifest(ctx context.Context, cid string) (*model.AlbumMeta, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := RedisClient.Get(ctx, manifestKey(cid)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest from cache: %w", err)
	}

	var meta model.AlbumMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached manifest: %w", err)
	}
	return &meta, nil
}

// SetManifest 把专辑清单写入缓存
func SetManifest(ctx context.Context, cid string, meta *model.AlbumMeta) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := RedisClient.Set(ctx, manifestKey(cid), data, manifestTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache manifest: %w", err)
	}
	return nil
}
