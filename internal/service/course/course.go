package course

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/google/uuid"
	"github.com/juju/clock"
)

type courseRepo interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
}

type contentRepo interface {
	AddContent(ctx context.Context, courseID uuid.UUID, item *models.ContentItem) error
	UpdateContent(ctx context.Context, item *models.ContentItem) error
	DeleteContentAndUpdateOrder(ctx context.Context, courseID, itemID uuid.UUID) error
}

type searchIndex interface {
	Index(ctx context.Context, course models.CourseSummary) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type assetStore interface {
	Upload(ctx context.Context, key string, file models.Upload) (string, error)
	DeleteByURL(ctx context.Context, url string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type courseCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Course, bool)
	Set(ctx context.Context, course *models.Course)
	// SetIfAbsent stores course only when no entry exists, so a slow reader
	// never overwrites what a concurrent edit cached.
	SetIfAbsent(ctx context.Context, course *models.Course)
	Invalidate(ctx context.Context, id uuid.UUID)
}

type CourseService struct {
	log            logger.Log
	clock          clock.Clock
	courseRepo     courseRepo
	contentRepo    contentRepo
	search         searchIndex
	assets         assetStore
	cache          courseCache
	maxUploadBytes int64

	// unindexed holds courses whose last index write failed, keyed to the
	// time of the failure.
	unindexedMu sync.Mutex
	unindexed   map[uuid.UUID]time.Time
}

type Option func(*CourseService)

func WithSearchIndex(idx searchIndex) Option {
	return func(s *CourseService) {
		if idx != nil {
			s.search = idx
		}
	}
}

func WithAssetStore(store assetStore) Option {
	return func(s *CourseService) {
		if store != nil {
			s.assets = store
		}
	}
}

func WithCache(c courseCache) Option {
	return func(s *CourseService) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithMaxUploadBytes(n int64) Option {
	return func(s *CourseService) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *CourseService) {
		if c != nil {
			s.clock = c
		}
	}
}

const defaultMaxUploadBytes = 500 << 20

func NewCourseService(log logger.Log, courseRepo courseRepo, contentRepo contentRepo, opts ...Option) *CourseService {
	s := &CourseService{
		log:            log,
		clock:          clock.WallClock,
		courseRepo:     courseRepo,
		contentRepo:    contentRepo,
		search:         nopIndex{},
		assets:         nopAssets{},
		cache:          nopCache{},
		maxUploadBytes: defaultMaxUploadBytes,
		unindexed:      make(map[uuid.UUID]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Course returns the full course with contents ordered by position. Reads go
// through the cache.
func (s *CourseService) Course(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	if c, ok := s.cache.Get(ctx, id); ok {
		return c, nil
	}
	c, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetIfAbsent(ctx, c)
	return c, nil
}

// StoredCourse reads the course from storage, bypassing the cache.
func (s *CourseService) StoredCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return s.courseRepo.CourseByID(ctx, id)
}

func (s *CourseService) CreateCourse(ctx context.Context, in models.CourseInput, contents []models.ContentItem) (*models.Course, error) {
	course := models.NewCourse(in)
	course.ID = uuid.New()
	now := s.clock.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	for _, item := range contents {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.Type == models.ContentTypeQuiz && item.Quiz == nil {
			item.Quiz = &models.Quiz{Questions: []models.Question{}}
		}
		item.CreatedAt = now
		item.UpdatedAt = now
		course.AppendContent(item)
	}
	if err := course.Validate(); err != nil {
		return nil, err
	}

	if err := s.courseRepo.CreateCourse(ctx, &course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.log.Info("course created", "course_id", course.ID, "contents", len(course.Contents))
	s.reindex(ctx, &course)
	return &course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, id uuid.UUID, patch models.CoursePatch) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(course)
	if err := course.ValidateMetadata(); err != nil {
		return nil, err
	}
	course.UpdatedAt = s.clock.Now().UTC()
	if err := s.courseRepo.UpdateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return s.refreshed(ctx, id)
}

func (s *CourseService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := s.courseRepo.DeleteCourse(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	s.unindexedMu.Lock()
	delete(s.unindexed, id)
	s.unindexedMu.Unlock()
	if err := s.search.Delete(ctx, id); err != nil {
		s.log.ErrorErr("failed to delete course from search index", err, "course_id", id)
	}
	if err := s.assets.DeletePrefix(ctx, coursePrefix(id)); err != nil {
		s.log.ErrorErr("failed to delete course assets", err, "course_id", id)
	}
	s.log.Info("course deleted", "course_id", id)
	return nil
}

func (s *CourseService) AddContentItem(ctx context.Context, courseID uuid.UUID, t models.ContentType) (*models.Course, error) {
	if _, err := models.ParseContentType(string(t)); err != nil {
		return nil, err
	}
	item := models.NewContentItem(t)
	item.CourseID = courseID
	now := s.clock.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := s.contentRepo.AddContent(ctx, courseID, &item); err != nil {
		return nil, err
	}
	return s.refreshed(ctx, courseID)
}

func (s *CourseService) RemoveContentItem(ctx context.Context, courseID, itemID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	idx := course.ContentIndex(itemID)
	if idx < 0 {
		return nil, app_errors.ErrContentNotFound
	}
	removed := course.Contents[idx]
	if err := s.contentRepo.DeleteContentAndUpdateOrder(ctx, courseID, itemID); err != nil {
		return nil, err
	}
	if removed.URL != "" {
		if err := s.assets.DeleteByURL(ctx, removed.URL); err != nil {
			s.log.ErrorErr("failed to delete content asset", err, "content_id", itemID)
		}
	}
	return s.refreshed(ctx, courseID)
}

func (s *CourseService) SetContentField(ctx context.Context, courseID, itemID uuid.UUID, field models.ContentField, value string) (*models.Course, error) {
	return s.editContent(ctx, courseID, itemID, func(item *models.ContentItem) error {
		return item.SetField(field, value)
	})
}

func (s *CourseService) SetQuiz(ctx context.Context, courseID, itemID uuid.UUID, quiz models.Quiz) (*models.Course, error) {
	return s.editContent(ctx, courseID, itemID, func(item *models.ContentItem) error {
		return item.SetQuiz(quiz)
	})
}

func (s *CourseService) editContent(ctx context.Context, courseID, itemID uuid.UUID, edit func(*models.ContentItem) error) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	idx := course.ContentIndex(itemID)
	if idx < 0 {
		return nil, app_errors.ErrContentNotFound
	}
	item := course.Contents[idx]
	oldURL := item.URL
	if err := edit(&item); err != nil {
		return nil, err
	}
	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.contentRepo.UpdateContent(ctx, &item); err != nil {
		return nil, err
	}
	if oldURL != "" && item.URL != oldURL {
		if err := s.assets.DeleteByURL(ctx, oldURL); err != nil {
			s.log.Warn("failed to delete replaced asset", "content_id", itemID, "error", err.Error())
		}
	}
	return s.refreshed(ctx, courseID)
}

// UploadAsset stores file under the course and returns its url. Nothing is
// uploaded when the file is rejected.
func (s *CourseService) UploadAsset(ctx context.Context, courseID uuid.UUID, file models.Upload) (string, error) {
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return "", err
	}
	if err := s.checkUpload(file, genericAsset); err != nil {
		return "", err
	}
	return s.assets.Upload(ctx, assetKey(courseID, models.AssetGeneric, "", file.Filename), file)
}

func (s *CourseService) UploadContentAsset(ctx context.Context, courseID, itemID uuid.UUID, file models.Upload) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	idx := course.ContentIndex(itemID)
	if idx < 0 {
		return nil, app_errors.ErrContentNotFound
	}
	t := course.Contents[idx].Type
	if !t.HasAsset() {
		return nil, app_errors.Invalid("type", "quiz items have no asset")
	}
	if err := s.checkUpload(file, t.AcceptsMIME); err != nil {
		return nil, err
	}

	key := assetKey(courseID, models.AssetContent, itemID.String(), file.Filename)
	url, err := s.assets.Upload(ctx, key, file)
	if err != nil {
		return nil, err
	}
	updated, err := s.SetContentField(ctx, courseID, itemID, models.FieldURL, url)
	if err != nil {
		if delErr := s.assets.DeleteByURL(ctx, url); delErr != nil {
			s.log.ErrorErr("failed to delete orphaned asset", delErr, "url", url)
		}
		return nil, err
	}
	return updated, nil
}

func (s *CourseService) UploadThumbnail(ctx context.Context, courseID uuid.UUID, file models.Upload) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkUpload(file, isImage); err != nil {
		return nil, err
	}
	url, err := s.assets.Upload(ctx, assetKey(courseID, models.AssetThumbnail, "", file.Filename), file)
	if err != nil {
		return nil, err
	}
	old := course.Thumbnail
	updated, err := s.UpdateCourse(ctx, courseID, models.CoursePatch{Thumbnail: &url})
	if err != nil {
		if delErr := s.assets.DeleteByURL(ctx, url); delErr != nil {
			s.log.ErrorErr("failed to delete orphaned thumbnail", delErr, "url", url)
		}
		return nil, err
	}
	if old != "" && old != url {
		if err := s.assets.DeleteByURL(ctx, old); err != nil {
			s.log.ErrorErr("failed to delete previous thumbnail", err, "course_id", courseID)
		}
	}
	return updated, nil
}

func (s *CourseService) checkUpload(file models.Upload, accept func(string) bool) error {
	if file.Size <= 0 || file.Body == nil {
		return app_errors.ErrEmptyFile
	}
	if file.Size > s.maxUploadBytes {
		return app_errors.ErrFileSize
	}
	if !accept(file.MediaType()) {
		return app_errors.ErrUnsupportedMedia
	}
	return nil
}

// refreshed drops the cached copy, rereads the stored course and caches it.
func (s *CourseService) refreshed(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	s.cache.Invalidate(ctx, id)
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, course)
	s.reindex(ctx, course)
	return course, nil
}

func (s *CourseService) reindex(ctx context.Context, course *models.Course) {
	err := s.search.Index(ctx, course.Summary())

	s.unindexedMu.Lock()
	defer s.unindexedMu.Unlock()
	if err != nil {
		s.log.ErrorErr("error indexing course", err, "course_id", course.ID)
		s.unindexed[course.ID] = s.clock.Now()
		return
	}
	delete(s.unindexed, course.ID)
}

// UnindexedIDs lists courses the search index may be missing or holding a
// stale copy of.
func (s *CourseService) UnindexedIDs() []uuid.UUID {
	s.unindexedMu.Lock()
	defer s.unindexedMu.Unlock()
	ids := make([]uuid.UUID, 0, len(s.unindexed))
	for id := range s.unindexed {
		ids = append(ids, id)
	}
	return ids
}

// IndexRebuilt forgets failures that happened before a full rebuild which
// started at startedAt.
func (s *CourseService) IndexRebuilt(startedAt time.Time) {
	s.unindexedMu.Lock()
	defer s.unindexedMu.Unlock()
	for id, failedAt := range s.unindexed {
		if failedAt.Before(startedAt) {
			delete(s.unindexed, id)
		}
	}
}

func isImage(mt string) bool {
	return strings.HasPrefix(mt, "image/")
}

func genericAsset(mt string) bool {
	return isImage(mt) || models.ContentTypeVideo.AcceptsMIME(mt) || models.ContentTypePDF.AcceptsMIME(mt)
}

func coursePrefix(id uuid.UUID) string {
	return "courses/" + id.String() + "/"
}

func assetKey(courseID uuid.UUID, kind models.AssetKind, sub, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return coursePrefix(courseID) + path.Join(string(kind), sub, uuid.NewString()+ext)
}
