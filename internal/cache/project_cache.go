// Package cache implements the project read cache on top of Redis.
package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Marga-Ghale/ora-project-tracker/internal/db"
	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
)

const (
	statsKey        = "projects:stats"
	statsVersionKey = "projects:stats:version"
	projectPrefix   = "project:"
	versionSuffix   = ":version"
)

// noVersion marks a fill whose version could not be read. Such fills are skipped.
const noVersion int64 = -1

type ProjectCache struct {
	redis *db.RedisDB
	ttl   time.Duration
}

func NewProjectCache(r *db.RedisDB, ttl time.Duration) *ProjectCache {
	return &ProjectCache{redis: r, ttl: ttl}
}

func (c *ProjectCache) GetProject(ctx context.Context, id string) (*repository.Project, bool) {
	var p repository.Project
	if !c.get(ctx, projectPrefix+id, &p) {
		return nil, false
	}
	return &p, true
}

func (c *ProjectCache) ProjectVersion(ctx context.Context, id string) int64 {
	return c.version(ctx, projectPrefix+id+versionSuffix)
}

// SetProject fills the project entry unless it was invalidated after version was read.
func (c *ProjectCache) SetProject(ctx context.Context, project *repository.Project, version int64) {
	c.set(ctx, projectPrefix+project.ID+versionSuffix, version, projectPrefix+project.ID, project)
}

func (c *ProjectCache) GetStats(ctx context.Context) (*service.ProjectStats, bool) {
	var s service.ProjectStats
	if !c.get(ctx, statsKey, &s) {
		return nil, false
	}
	return &s, true
}

func (c *ProjectCache) StatsVersion(ctx context.Context) int64 {
	return c.version(ctx, statsVersionKey)
}

func (c *ProjectCache) SetStats(ctx context.Context, stats *service.ProjectStats, version int64) {
	c.set(ctx, statsVersionKey, version, statsKey, stats)
}

// InvalidateProject drops the project entry and the stats, which any mutation may change,
// and bumps both versions so in-flight fills read before the mutation are discarded.
func (c *ProjectCache) InvalidateProject(ctx context.Context, id string) {
	versions := []string{projectPrefix + id + versionSuffix, statsVersionKey}
	if err := c.redis.BumpCacheVersion(ctx, versions, projectPrefix+id, statsKey); err != nil {
		log.Printf("[Cache] ⚠️ invalidate %s: %v", id, err)
	}
}

// Flush removes every project cache entry.
func (c *ProjectCache) Flush(ctx context.Context) error {
	if err := c.redis.InvalidateCache(ctx, projectPrefix+"*"); err != nil {
		return err
	}
	return c.redis.DeleteCache(ctx, statsKey, statsVersionKey)
}

func (c *ProjectCache) get(ctx context.Context, key string, dest interface{}) bool {
	err := c.redis.GetCache(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, redis.Nil) {
		log.Printf("[Cache] ⚠️ get %s: %v", key, err)
	}
	return false
}

func (c *ProjectCache) version(ctx context.Context, key string) int64 {
	v, err := c.redis.CacheVersion(ctx, key)
	if err != nil {
		log.Printf("[Cache] ⚠️ version %s: %v", key, err)
		return noVersion
	}
	return v
}

func (c *ProjectCache) set(ctx context.Context, versionKey string, version int64, key string, value interface{}) {
	if version == noVersion {
		return
	}
	err := c.redis.SetCacheIfVersion(ctx, versionKey, version, key, value, c.ttl)
	switch {
	case errors.Is(err, db.ErrCacheVersionChanged):
		log.Printf("[Cache] skipped stale fill of %s", key)
	case err != nil:
		log.Printf("[Cache] ⚠️ set %s: %v", key, err)
	}
}

var _ service.ProjectCache = (*ProjectCache)(nil)
