// Package redis_cache keeps full courses in redis so enrollment reads do not
// hit the database for every progress computation.
package redis_cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "course:"

type CourseCache struct {
	log logger.Log
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisClient(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewCourseCache(log logger.Log, rdb *goredis.Client, ttl time.Duration) *CourseCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CourseCache{log: log, rdb: rdb, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// Get reports a miss on any redis failure; the caller falls back to storage.
func (c *CourseCache) Get(ctx context.Context, id uuid.UUID) (*models.Course, bool) {
	raw, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("course cache read failed", "course_id", id, "error", err.Error())
		}
		return nil, false
	}
	course, err := decodeCourse(raw)
	if err != nil {
		c.log.Warn("course cache entry is corrupt", "course_id", id, "error", err.Error())
		c.Invalidate(ctx, id)
		return nil, false
	}
	return course, true
}

func (c *CourseCache) Set(ctx context.Context, course *models.Course) {
	raw, err := json.Marshal(course)
	if err != nil {
		c.log.ErrorErr("failed to encode course for cache", err, "course_id", course.ID)
		return
	}
	if err := c.rdb.Set(ctx, key(course.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("course cache write failed", "course_id", course.ID, "error", err.Error())
	}
}

// SetIfAbsent populates a missing entry and leaves an existing one alone.
func (c *CourseCache) SetIfAbsent(ctx context.Context, course *models.Course) {
	raw, err := json.Marshal(course)
	if err != nil {
		c.log.ErrorErr("failed to encode course for cache", err, "course_id", course.ID)
		return
	}
	if err := c.rdb.SetNX(ctx, key(course.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("course cache write failed", "course_id", course.ID, "error", err.Error())
	}
}

func (c *CourseCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.rdb.Del(ctx, key(id)).Err(); err != nil {
		c.log.ErrorErr("course cache invalidation failed", err, "course_id", id)
	}
}

// decodeCourse rejects entries that do not describe a course, such as a
// truncated write or a value left by another writer.
func decodeCourse(raw []byte) (*models.Course, error) {
	var course models.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		return nil, err
	}
	if course.ID == uuid.Nil {
		return nil, errors.New("entry has no course id")
	}
	if course.Contents == nil {
		course.Contents = []models.ContentItem{}
	}
	return &course, nil
}
