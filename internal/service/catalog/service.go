package catalog

import (
	"context"
	"fmt"

	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/google/uuid"
)

type courseRepo interface {
	ListSummaries(ctx context.Context, includeDrafts bool) ([]models.CourseSummary, error)
	SummariesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CourseSummary, error)
}

type searchRepo interface {
	SearchIDs(ctx context.Context, query string) ([]uuid.UUID, error)
}

// pendingIndex reports courses whose index entry may be missing or stale.
type pendingIndex interface {
	UnindexedIDs() []uuid.UUID
}

type CatalogService struct {
	log        logger.Log
	courseRepo courseRepo
	searchRepo searchRepo
	pending    pendingIndex
}

type Option func(*CatalogService)

// WithPendingIndex adds the reported courses to every index result, so a
// failed index write does not hide a course from search.
func WithPendingIndex(p pendingIndex) Option {
	return func(s *CatalogService) {
		s.pending = p
	}
}

// NewCatalogService builds the listing service. searchRepo may be nil, in
// which case search runs in process over every course.
func NewCatalogService(log logger.Log, courseRepo courseRepo, searchRepo searchRepo, opts ...Option) *CatalogService {
	s := &CatalogService{
		log:        log,
		courseRepo: courseRepo,
		searchRepo: searchRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CatalogService) ListCourses(ctx context.Context, f Filter) ([]models.CourseSummary, error) {
	candidates, err := s.candidates(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return f.Apply(candidates), nil
}

func (s *CatalogService) candidates(ctx context.Context, f Filter) ([]models.CourseSummary, error) {
	if f.Search != "" && s.searchRepo != nil {
		ids, err := s.searchRepo.SearchIDs(ctx, f.Search)
		if err == nil {
			ids = s.withPending(ids)
			if len(ids) == 0 {
				return nil, nil
			}
			return s.courseRepo.SummariesByIDs(ctx, ids)
		}
		s.log.ErrorErr("search index query failed, falling back to full scan", err, "query", f.Search)
	}
	return s.courseRepo.ListSummaries(ctx, f.IncludeDrafts)
}

func (s *CatalogService) withPending(ids []uuid.UUID) []uuid.UUID {
	if s.pending == nil {
		return ids
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, id := range s.pending.UnindexedIDs() {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
