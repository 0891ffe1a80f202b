package course

import (
	"context"
	"errors"

	"LearnForge/internal/models"

	"github.com/google/uuid"
)

// Collaborators used when the corresponding backend is not configured.

type nopIndex struct{}

func (nopIndex) Index(context.Context, models.CourseSummary) error { return nil }
func (nopIndex) Delete(context.Context, uuid.UUID) error           { return nil }

type nopAssets struct{}

var errNoAssetStore = errors.New("asset store is not configured")

func (nopAssets) Upload(context.Context, string, models.Upload) (string, error) {
	return "", errNoAssetStore
}
func (nopAssets) DeleteByURL(context.Context, string) error  { return nil }
func (nopAssets) DeletePrefix(context.Context, string) error { return nil }

type nopCache struct{}

func (nopCache) Get(context.Context, uuid.UUID) (*models.Course, bool) { return nil, false }
func (nopCache) Set(context.Context, *models.Course)                   {}
func (nopCache) SetIfAbsent(context.Context, *models.Course)           {}
func (nopCache) Invalidate(context.Context, uuid.UUID)                 {}
