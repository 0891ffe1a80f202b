package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"LearnForge/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// maxHits bounds a single search. Listings are small, so one page covers the
// whole catalog.
const maxHits = 10000

type CourseSearchRepo struct {
	client *elasticsearch.Client
	index  string
}

func NewCourseSearchRepository(client *elasticsearch.Client, index string) *CourseSearchRepo {
	if index == "" {
		index = CourseIndex
	}
	return &CourseSearchRepo{client: client, index: index}
}

type courseDoc struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCourseDoc(c models.CourseSummary) courseDoc {
	return courseDoc{
		Title:       c.Title,
		Description: c.Description,
		Category:    string(c.Category),
		Difficulty:  string(c.Difficulty),
		Published:   c.Published,
		CreatedAt:   c.CreatedAt,
	}
}

func (r *CourseSearchRepo) CreateIndexIfNotExist(ctx context.Context) error {
	existsReq := esapi.IndicesExistsRequest{Index: []string{r.index}}
	existsRes, err := existsReq.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error checking index existence: %w", err)
	}
	defer existsRes.Body.Close()

	if existsRes.StatusCode == http.StatusNotFound {
		// wildcard fields give substring matching without an ngram analyzer
		mapping := map[string]interface{}{
			"mappings": map[string]interface{}{
				"properties": map[string]interface{}{
					"title":       map[string]interface{}{"type": "wildcard"},
					"description": map[string]interface{}{"type": "wildcard"},
					"category":    map[string]interface{}{"type": "keyword"},
					"difficulty":  map[string]interface{}{"type": "keyword"},
					"published":   map[string]interface{}{"type": "boolean"},
					"created_at":  map[string]interface{}{"type": "date"},
				},
			},
		}

		body, err := json.Marshal(mapping)
		if err != nil {
			return fmt.Errorf("marshal mapping: %w", err)
		}
		req := esapi.IndicesCreateRequest{Index: r.index, Body: bytes.NewReader(body)}
		res, err := req.Do(ctx, r.client)
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("mapping creation failed: %s", res.String())
		}
		return nil
	}

	if existsRes.StatusCode >= 300 {
		return fmt.Errorf("index existence check failed with status code %d", existsRes.StatusCode)
	}

	return nil
}

func (r *CourseSearchRepo) Index(ctx context.Context, course models.CourseSummary) error {
	data, err := json.Marshal(newCourseDoc(course))
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: course.ID.String(),
		Refresh:    "true",
		Body:       bytes.NewReader(data),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}

// Delete removes the course document. A missing document is not an error.
func (r *CourseSearchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	req := esapi.DeleteRequest{
		Index:      r.index,
		DocumentID: id.String(),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// Reindex writes every course in one bulk request and drops documents of
// courses that no longer exist.
func (r *CourseSearchRepo) Reindex(ctx context.Context, courses []models.CourseSummary) error {
	if len(courses) > 0 {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		for _, c := range courses {
			meta := map[string]interface{}{"index": map[string]interface{}{"_index": r.index, "_id": c.ID.String()}}
			if err := enc.Encode(meta); err != nil {
				return fmt.Errorf("encode bulk meta: %w", err)
			}
			if err := enc.Encode(newCourseDoc(c)); err != nil {
				return fmt.Errorf("encode bulk doc: %w", err)
			}
		}
		req := esapi.BulkRequest{Index: r.index, Body: &buf, Refresh: "true"}
		res, err := req.Do(ctx, r.client)
		if err != nil {
			return fmt.Errorf("bulk request: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("bulk error: %s", res.String())
		}
		var bulkRes struct {
			Errors bool `json:"errors"`
		}
		if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
			return fmt.Errorf("decode bulk response: %w", err)
		}
		if bulkRes.Errors {
			return fmt.Errorf("bulk request reported item errors")
		}
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID.String())
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": map[string]interface{}{
					"ids": map[string]interface{}{"values": ids},
				},
			},
		},
	}
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal delete query: %w", err)
	}
	refresh := true
	req := esapi.DeleteByQueryRequest{Index: []string{r.index}, Body: bytes.NewReader(body), Refresh: &refresh}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("delete by query request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("delete by query error: %s", res.String())
	}
	return nil
}

// SearchIDs returns the ids of courses whose title or description contains
// query, ignoring case.
func (r *CourseSearchRepo) SearchIDs(ctx context.Context, query string) ([]uuid.UUID, error) {
	pattern := "*" + escapeWildcard(query) + "*"
	clause := func(field string) map[string]interface{} {
		return map[string]interface{}{
			"wildcard": map[string]interface{}{
				field: map[string]interface{}{
					"value":            pattern,
					"case_insensitive": true,
				},
			},
		}
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               []interface{}{clause("title"), clause("description")},
				"minimum_should_match": 1,
			},
		},
		"_source": false,
		"size":    maxHits,
	}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}
	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search error: %s", string(bodyBytes))
	}
	var esRes struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esRes); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(esRes.Hits.Hits))
	for _, h := range esRes.Hits.Hits {
		if id, err := uuid.Parse(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
