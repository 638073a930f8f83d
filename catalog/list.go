package catalog

import (
	"context"
	"sort"
	"strings"

	"apotek/model"
)

type SortKey string

const (
	SortByName     SortKey = "name"
	SortByCategory SortKey = "category"
	SortByStock    SortKey = "systemStock"
	SortByPrice    SortKey = "price"
)

const DefaultPageSize = 8

// ListQuery selects one page of the catalog.
type ListQuery struct {
	Search   string
	SortBy   SortKey
	Desc     bool
	Page     int
	PageSize int
}

type Page struct {
	Items      []model.Medicine `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

// Filter keeps medicines whose name, barcode or category contains term,
// ignoring case.
func Filter(meds []model.Medicine, term string) []model.Medicine {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return meds
	}
	out := make([]model.Medicine, 0, len(meds))
	for _, m := range meds {
		if strings.Contains(strings.ToLower(m.Name), term) ||
			strings.Contains(strings.ToLower(m.Barcode), term) ||
			strings.Contains(strings.ToLower(m.Category), term) {
			out = append(out, m)
		}
	}
	return out
}

// Sort orders meds in place. Ties keep their existing order. An unknown
// key sorts by name.
func Sort(meds []model.Medicine, key SortKey, desc bool) {
	less := func(a, b *model.Medicine) bool {
		switch key {
		case SortByCategory:
			return a.Category < b.Category
		case SortByStock:
			return a.SystemStock < b.SystemStock
		case SortByPrice:
			return a.SellingPrice < b.SellingPrice
		default:
			return a.Name < b.Name
		}
	}
	sort.SliceStable(meds, func(i, j int) bool {
		if desc {
			return less(&meds[j], &meds[i])
		}
		return less(&meds[i], &meds[j])
	})
}

// Paginate cuts one page out of meds, clamping page into range.
func Paginate(meds []model.Medicine, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(meds)
	pages := (total + size - 1) / size
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := make([]model.Medicine, end-start)
	copy(items, meds[start:end])

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// ListMedicines filters, sorts and paginates the catalog.
func (s *Store) ListMedicines(ctx context.Context, q ListQuery) (Page, error) {
	meds, err := s.AllMedicines(ctx)
	if err != nil {
		return Page{}, err
	}
	meds = Filter(meds, q.Search)
	Sort(meds, q.SortBy, q.Desc)
	return Paginate(meds, q.Page, q.PageSize), nil
}
