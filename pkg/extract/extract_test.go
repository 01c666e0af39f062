package extract

import (
	"encoding/json"
	"reflect"
	"testing"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func i64Ptr(i int64) *int64     { return &i }

func TestExtractPage_SequenceIDs(t *testing.T) {
	tests := []struct {
		name        string
		pageNumber  int
		itemCount   int
		expectedIDs []int
	}{
		{
			name:        "first page starts at 1",
			pageNumber:  1,
			itemCount:   3,
			expectedIDs: []int{1, 2, 3},
		},
		{
			name:        "second page continues numbering",
			pageNumber:  2,
			itemCount:   3,
			expectedIDs: []int{26, 27, 28},
		},
		{
			name:        "full page covers exact range",
			pageNumber:  3,
			itemCount:   25,
			expectedIDs: nil, // checked as 51..75 below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := RawPage{Data: make([]RawItem, tt.itemCount)}

			records := ExtractPage(page, tt.pageNumber, PageSize)

			if len(records) != tt.itemCount {
				t.Fatalf("got %d records, want %d", len(records), tt.itemCount)
			}

			if tt.expectedIDs != nil {
				for i, want := range tt.expectedIDs {
					if records[i].ID != want {
						t.Errorf("records[%d].ID = %d, want %d", i, records[i].ID, want)
					}
				}
				return
			}

			// Dense ascending range (pageNumber-1)*25+1 .. +25.
			base := (tt.pageNumber - 1) * PageSize
			for i, rec := range records {
				if rec.ID != base+i+1 {
					t.Errorf("records[%d].ID = %d, want %d", i, rec.ID, base+i+1)
				}
			}
		})
	}
}

func TestExtractPage_TitleResolution(t *testing.T) {
	tests := []struct {
		name string
		item RawItem
		want *string
	}{
		{
			name: "default variant wins over other variants",
			item: RawItem{
				Titles: []TitleVariant{
					{Type: "Japanese", Title: "A"},
					{Type: "Default", Title: "B"},
				},
				Title: strPtr("C"),
			},
			want: strPtr("B"),
		},
		{
			name: "first default wins when several present",
			item: RawItem{
				Titles: []TitleVariant{
					{Type: "Default", Title: "First"},
					{Type: "Default", Title: "Second"},
				},
			},
			want: strPtr("First"),
		},
		{
			name: "falls back to scalar title",
			item: RawItem{
				Titles: []TitleVariant{{Type: "Japanese", Title: "A"}},
				Title:  strPtr("C"),
			},
			want: strPtr("C"),
		},
		{
			name: "nil when neither exists",
			item: RawItem{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := ExtractPage(RawPage{Data: []RawItem{tt.item}}, 1, PageSize)

			got := records[0].Title
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Title = %q, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("Title = nil, want %q", *tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("Title = %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestExtractPage_GenreJoin(t *testing.T) {
	tests := []struct {
		name   string
		genres []Genre
		want   string
	}{
		{
			name:   "joined in source order",
			genres: []Genre{{Name: "Action"}, {Name: "Comedy"}},
			want:   "Action, Comedy",
		},
		{
			name:   "single genre has no separator",
			genres: []Genre{{Name: "Drama"}},
			want:   "Drama",
		},
		{
			name:   "empty list yields empty string",
			genres: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := ExtractPage(RawPage{Data: []RawItem{{Genres: tt.genres}}}, 1, PageSize)

			if records[0].Genres != tt.want {
				t.Errorf("Genres = %q, want %q", records[0].Genres, tt.want)
			}
		})
	}
}

func TestExtractPage_OptionalNumericsStayNil(t *testing.T) {
	item := RawItem{
		Score:   f64Ptr(8.75),
		Members: i64Ptr(123456),
		// ScoredBy, Rank, Popularity, Favorites absent.
	}

	records := ExtractPage(RawPage{Data: []RawItem{item}}, 1, PageSize)
	rec := records[0]

	if rec.Score == nil || *rec.Score != 8.75 {
		t.Errorf("Score = %v, want 8.75", rec.Score)
	}
	if rec.Members == nil || *rec.Members != 123456 {
		t.Errorf("Members = %v, want 123456", rec.Members)
	}
	if rec.ScoredBy != nil {
		t.Errorf("ScoredBy = %d, want nil", *rec.ScoredBy)
	}
	if rec.Rank != nil {
		t.Errorf("Rank = %d, want nil", *rec.Rank)
	}
	if rec.Popularity != nil {
		t.Errorf("Popularity = %d, want nil", *rec.Popularity)
	}
	if rec.Favorites != nil {
		t.Errorf("Favorites = %d, want nil", *rec.Favorites)
	}
}

func TestExtractPage_EmptyAndNullData(t *testing.T) {
	for _, body := range []string{`{}`, `{"data": null}`, `{"data": []}`} {
		var page RawPage
		if err := json.Unmarshal([]byte(body), &page); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}

		records := ExtractPage(page, 1, PageSize)
		if len(records) != 0 {
			t.Errorf("body %s produced %d records, want 0", body, len(records))
		}
	}
}

func TestExtractPage_Idempotent(t *testing.T) {
	body := `{"data": [
		{"titles": [{"type": "Default", "title": "Cowboy Bebop"}],
		 "title": "Cowboy Bebop",
		 "score": 8.75, "scored_by": 1000000, "rank": 46,
		 "popularity": 43, "members": 1900000, "favorites": 82000,
		 "genres": [{"name": "Action"}, {"name": "Sci-Fi"}]},
		{"titles": [{"type": "Japanese", "title": "Untranslated"}]}
	]}`

	var page RawPage
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}

	first := ExtractPage(page, 7, PageSize)
	second := ExtractPage(page, 7, PageSize)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated extraction of the same page produced different records")
	}

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if string(firstJSON) != string(secondJSON) {
		t.Error("repeated extraction is not byte-identical after marshaling")
	}

	if first[0].ID != 151 || first[1].ID != 152 {
		t.Errorf("page 7 IDs = %d, %d, want 151, 152", first[0].ID, first[1].ID)
	}
}

func TestExtractPage_DoesNotMutateInput(t *testing.T) {
	title := "Original"
	page := RawPage{Data: []RawItem{{
		Title:  &title,
		Genres: []Genre{{Name: "Action"}},
	}}}

	records := ExtractPage(page, 1, PageSize)

	*records[0].Title = "Changed"
	if title != "Original" {
		t.Error("extraction aliased the input title pointer")
	}
	if page.Data[0].Genres[0].Name != "Action" {
		t.Error("extraction mutated input genres")
	}
}
