// Package export serializes normalized records to CSV and JSON.
//
// Both forms carry the same nine fields in the same order. JSON preserves
// nulls for absent optionals; CSV renders them as empty cells.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"animeharvest/pkg/extract"
)

// Fields is the fixed column order shared by both output forms.
var Fields = []string{
	"id", "title", "score", "scored_by", "rank",
	"popularity", "members", "favorites", "genres",
}

// filenameTimeLayout produces anime_list_20060102_150405.<ext> names.
const filenameTimeLayout = "20060102_150405"

// WriteCSV writes records as CSV with the fixed header. Absent optionals
// become empty cells, never zeroes.
func WriteCSV(w io.Writer, records []extract.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Fields); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		if err := cw.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("write record %d: %w", rec.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes records as an indented JSON array. All nine keys are
// present on every record; absent optionals marshal to null.
func WriteJSON(w io.Writer, records []extract.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// SaveCSV writes records to a CSV file, creating parent directories.
func SaveCSV(path string, records []extract.Record) error {
	return saveTo(path, records, WriteCSV)
}

// SaveJSON writes records to a JSON file, creating parent directories.
func SaveJSON(path string, records []extract.Record) error {
	return saveTo(path, records, WriteJSON)
}

func saveTo(path string, records []extract.Record, write func(io.Writer, []extract.Record) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// TimestampedPath builds an output path like dir/anime_list_20240131_154500.ext
// for the given time.
func TimestampedPath(dir, ext string, at time.Time) string {
	name := fmt.Sprintf("anime_list_%s.%s", at.Format(filenameTimeLayout), ext)
	return filepath.Join(dir, name)
}

// csvRow renders one record in the fixed field order.
func csvRow(rec extract.Record) []string {
	return []string{
		strconv.Itoa(rec.ID),
		strCell(rec.Title),
		floatCell(rec.Score),
		intCell(rec.ScoredBy),
		intCell(rec.Rank),
		intCell(rec.Popularity),
		intCell(rec.Members),
		intCell(rec.Favorites),
		rec.Genres,
	}
}

func strCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
