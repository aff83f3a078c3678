package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/valter-silva-au/taskdeck/pkg/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterAll is the sentinel filter value that matches every task.
const FilterAll = "ALL"

// SortKey selects the field the task list is ordered by.
type SortKey string

const (
	SortByDueDate SortKey = "dueDate"
	SortByTitle   SortKey = "title"
	SortByStatus  SortKey = "status"
)

// SortOrder is the direction of the list ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortKeys lists the supported sort keys in cycling order.
var SortKeys = []SortKey{SortByDueDate, SortByTitle, SortByStatus}

// QueryParams are the filter and sort parameters of the task list view.
// Empty filter values behave like FilterAll.
type QueryParams struct {
	Search    string
	Status    string
	Priority  string
	Category  string
	SortBy    SortKey
	SortOrder SortOrder
	// Locale is a BCP 47 tag used for title collation. Empty means "en".
	Locale string
}

// DefaultQueryParams returns the parameters of a freshly opened list view:
// no search, no filters, ordered by due date ascending.
func DefaultQueryParams() QueryParams {
	return QueryParams{
		Status:    FilterAll,
		Priority:  FilterAll,
		Category:  FilterAll,
		SortBy:    SortByDueDate,
		SortOrder: SortAsc,
	}
}

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q: must be one of dueDate, title, status", s)
}

// ParseSortOrder validates a sort direction.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q: must be asc or desc", s)
}

// ToggleOrder flips the sort direction.
func ToggleOrder(o SortOrder) SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// NextSortKey returns the sort key after k in SortKeys, wrapping around.
func NextSortKey(k SortKey) SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortKeys[0]
}

// ApplyQuery derives the ordered view of tasks for the given parameters.
// The input slice is not modified. Ordering is stable: tasks that compare
// equal keep their input order in both directions.
func ApplyQuery(tasks []models.Task, params QueryParams) []models.Task {
	result := make([]models.Task, 0, len(tasks))
	search := strings.ToLower(params.Search)
	for _, t := range tasks {
		if !matchesSearch(t, search) {
			continue
		}
		if !matchesEquality(string(t.Status), params.Status) ||
			!matchesEquality(string(t.Priority), params.Priority) ||
			!matchesEquality(string(t.Category), params.Category) {
			continue
		}
		result = append(result, t)
	}

	cmp := comparatorFor(params.SortBy, params.Locale)
	desc := params.SortOrder == SortDesc
	sort.SliceStable(result, func(i, j int) bool {
		c := cmp(result[i], result[j])
		if desc {
			c = -c
		}
		return c < 0
	})
	return result
}

func matchesSearch(t models.Task, lowerSearch string) bool {
	if lowerSearch == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), lowerSearch) ||
		strings.Contains(strings.ToLower(t.Description), lowerSearch)
}

func matchesEquality(value, filter string) bool {
	return filter == "" || filter == FilterAll || value == filter
}

// comparatorFor returns a three-way comparison for the given sort key.
// Unknown keys compare every pair as equal, leaving input order intact.
func comparatorFor(key SortKey, locale string) func(a, b models.Task) int {
	switch key {
	case SortByDueDate:
		return func(a, b models.Task) int { return a.DueDate.Compare(b.DueDate) }
	case SortByTitle:
		col := newCollator(locale)
		return func(a, b models.Task) int { return col.CompareString(a.Title, b.Title) }
	case SortByStatus:
		return func(a, b models.Task) int { return strings.Compare(string(a.Status), string(b.Status)) }
	default:
		return func(models.Task, models.Task) int { return 0 }
	}
}

// newCollator builds a collator for a BCP 47 tag. Collators are not safe
// for concurrent use, so one is created per query.
func newCollator(locale string) *collate.Collator {
	tag := language.English
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			tag = parsed
		}
	}
	return collate.New(tag)
}
