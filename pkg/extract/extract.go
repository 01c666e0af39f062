// Package extract normalizes raw listing API pages into flat records.
//
// Extraction is a pure function over one decoded page: no I/O, no mutation
// of the input, and no hidden state, so re-extracting the same page always
// yields identical records.
package extract

import "strings"

// PageSize is the fixed number of items per listing page. Sequence IDs are
// derived from it, so it must not change between runs that are compared.
const PageSize = 25

// genreSeparator joins genre names into the single genres column.
const genreSeparator = ", "

// TitleVariant is one localized/typed title entry on a raw item.
type TitleVariant struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Genre is one genre tag on a raw item.
type Genre struct {
	Name string `json:"name"`
}

// RawItem is one source entity as returned by the listing API.
// Every scalar field is optional: the API omits or nulls fields freely and
// absence must survive into the output, so scalars are pointers.
type RawItem struct {
	Titles     []TitleVariant `json:"titles"`
	Title      *string        `json:"title"`
	Score      *float64       `json:"score"`
	ScoredBy   *int64         `json:"scored_by"`
	Rank       *int64         `json:"rank"`
	Popularity *int64         `json:"popularity"`
	Members    *int64         `json:"members"`
	Favorites  *int64         `json:"favorites"`
	Genres     []Genre        `json:"genres"`
}

// RawPage is one page of the listing API response. A missing or null data
// key decodes to a nil slice and is treated as an empty page.
type RawPage struct {
	Data []RawItem `json:"data"`
}

// Record is the normalized output unit. Field order matches the export
// contract: id, title, score, scored_by, rank, popularity, members,
// favorites, genres. Optional scalars stay nil when the source omits them
// and marshal to JSON null.
type Record struct {
	ID         int      `json:"id"`
	Title      *string  `json:"title"`
	Score      *float64 `json:"score"`
	ScoredBy   *int64   `json:"scored_by"`
	Rank       *int64   `json:"rank"`
	Popularity *int64   `json:"popularity"`
	Members    *int64   `json:"members"`
	Favorites  *int64   `json:"favorites"`
	Genres     string   `json:"genres"`
}

// ExtractPage converts one raw page into normalized records.
//
// Record IDs are synthetic and deterministic: (pageNumber-1)*pageSize +
// position + 1, independent of any identifier in the source data. Output
// order matches input item order.
func ExtractPage(page RawPage, pageNumber, pageSize int) []Record {
	records := make([]Record, 0, len(page.Data))

	for i, item := range page.Data {
		records = append(records, Record{
			ID:         (pageNumber-1)*pageSize + i + 1,
			Title:      resolveTitle(item),
			Score:      item.Score,
			ScoredBy:   item.ScoredBy,
			Rank:       item.Rank,
			Popularity: item.Popularity,
			Members:    item.Members,
			Favorites:  item.Favorites,
			Genres:     joinGenres(item.Genres),
		})
	}

	return records
}

// resolveTitle picks the first title variant tagged "Default", falling back
// to the item's scalar title. First match wins; the variant list order as
// provided by the source is authoritative. Returns nil when neither exists.
func resolveTitle(item RawItem) *string {
	for _, variant := range item.Titles {
		if variant.Type == "Default" {
			title := variant.Title
			return &title
		}
	}
	if item.Title != nil {
		title := *item.Title
		return &title
	}
	return nil
}

// joinGenres flattens the genre tags into one string, preserving source
// order. An item with no genres yields an empty string, never null.
func joinGenres(genres []Genre) string {
	if len(genres) == 0 {
		return ""
	}

	names := make([]string, len(genres))
	for i, genre := range genres {
		names[i] = genre.Name
	}
	return strings.Join(names, genreSeparator)
}
