package catalog

import (
	"fmt"
	"sort"
	"strings"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/models"
)

// All is the wire value that disables the category or difficulty filter.
const All = "All"

type SortMode string

const (
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
	SortTitle  SortMode = "title"
)

// Filter is a parsed listing request. A zero Category or Difficulty means no
// constraint.
type Filter struct {
	Search        string
	Category      models.Category
	Difficulty    models.Difficulty
	SortBy        SortMode
	IncludeDrafts bool
}

// ParseFilter turns raw query values into a Filter. Unrecognized values are
// rejected rather than ignored.
func ParseFilter(search, category, difficulty, sortBy string) (Filter, error) {
	f := Filter{Search: search, SortBy: SortNewest}
	// whitespace-only search is treated as absent; anything else is matched as given
	if strings.TrimSpace(search) == "" {
		f.Search = ""
	}

	if c := strings.TrimSpace(category); c != "" && !strings.EqualFold(c, All) {
		parsed, ok := matchEnum(c, models.Categories)
		if !ok {
			return Filter{}, app_errors.Invalid("category", fmt.Sprintf("unknown category %q", category))
		}
		f.Category = parsed
	}

	if d := strings.TrimSpace(difficulty); d != "" && !strings.EqualFold(d, All) {
		parsed, ok := matchEnum(d, models.Difficulties)
		if !ok {
			return Filter{}, app_errors.Invalid("difficulty", fmt.Sprintf("unknown difficulty %q", difficulty))
		}
		f.Difficulty = parsed
	}

	switch mode := SortMode(strings.ToLower(strings.TrimSpace(sortBy))); mode {
	case "":
	case SortNewest, SortOldest, SortTitle:
		f.SortBy = mode
	default:
		return Filter{}, app_errors.Invalid("sort_by", fmt.Sprintf("unknown sort mode %q", sortBy))
	}

	return f, nil
}

func matchEnum[T ~string](s string, values []T) (T, bool) {
	for _, v := range values {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Matches reports whether c satisfies every active predicate.
func (f Filter) Matches(c models.CourseSummary) bool {
	if !f.IncludeDrafts && !c.Published {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && c.Difficulty != f.Difficulty {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Title), q) && !strings.Contains(strings.ToLower(c.Description), q) {
			return false
		}
	}
	return true
}

// Apply returns the matching courses in the requested order. The input is
// left untouched.
func (f Filter) Apply(courses []models.CourseSummary) []models.CourseSummary {
	out := make([]models.CourseSummary, 0, len(courses))
	for _, c := range courses {
		if f.Matches(c) {
			out = append(out, c)
		}
	}

	var less func(a, b models.CourseSummary) bool
	switch f.SortBy {
	case SortOldest:
		less = func(a, b models.CourseSummary) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortTitle:
		less = func(a, b models.CourseSummary) bool {
			la, lb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if la != lb {
				return la < lb
			}
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return a.ID.String() < b.ID.String()
		}
	default:
		less = func(a, b models.CourseSummary) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
