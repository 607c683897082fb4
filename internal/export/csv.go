// Package export writes classified reviews to CSV, XLSX and Markdown, and
// reads previously exported CSV files back for re-processing.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/reviewlens/internal/dates"
	"github.com/ppiankov/reviewlens/internal/model"
)

// timeNow anchors relative dates found in imported files
var timeNow = time.Now

// Columns is the CSV header, in order
var Columns = []string{
	"platform", "reviewer_name", "date", "rating", "title", "text", "category", "sentiment", "url",
}

// columnAliases maps the loose headers of hand-made or older exports onto
// canonical column names
var columnAliases = map[string]string{
	"name":        "reviewer_name",
	"reviewer":    "reviewer_name",
	"author":      "reviewer_name",
	"comment":     "text",
	"content":     "text",
	"review":      "text",
	"review_text": "text",
	"stars":       "rating",
	"score":       "rating",
	"source":      "platform",
	"site":        "platform",
	"link":        "url",
}

// WriteCSV writes records to path, replacing any existing file
func WriteCSV(path string, records []model.ReviewRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := EncodeCSV(f, records, true); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// AppendCSV appends records to path. The header is written only when the
// file does not exist yet or is empty.
func AppendCSV(path string, records []model.ReviewRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	header := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		header = false
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat csv: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	if err := EncodeCSV(f, records, header); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// EncodeCSV writes records to w, optionally preceded by the header
func EncodeCSV(w io.Writer, records []model.ReviewRecord, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i := range records {
		if err := cw.Write(row(&records[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r *model.ReviewRecord) []string {
	return []string{
		string(r.Platform),
		r.ReviewerName,
		r.DateString(),
		formatRating(r.Rating),
		r.Title,
		r.Text,
		r.Category,
		string(r.Sentiment),
		r.URL,
	}
}

// formatRating leaves unknown ratings blank
func formatRating(rating float64) string {
	if !model.ValidRating(rating) {
		return ""
	}
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

// ReadCSV loads records from a CSV file with a header row
func ReadCSV(path string) ([]model.ReviewRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeCSV(f)
}

// DecodeCSV reads records from r. Columns are matched by header name
// (case-insensitive, aliases accepted); unknown columns are ignored. Missing
// category or sentiment values are left empty for the classifier to fill.
func DecodeCSV(r io.Reader) ([]model.ReviewRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []model.ReviewRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		if alias, ok := columnAliases[key]; ok {
			key = alias
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	if _, ok := index["text"]; !ok {
		return nil, fmt.Errorf("csv has no text column (header: %s)", strings.Join(header, ","))
	}

	records := []model.ReviewRecord{}
	line := 1
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		rec := model.ReviewRecord{
			ReviewerName: get("reviewer_name"),
			Title:        get("title"),
			Text:         get("text"),
			Category:     get("category"),
			URL:          get("url"),
		}
		if p, ok := model.ParsePlatform(get("platform")); ok {
			rec.Platform = p
		} else {
			rec.Platform = model.Platform(get("platform"))
		}
		if raw := get("date"); raw != "" {
			if d, ok := dates.Parse(raw, timeNow()); ok {
				rec.Date = d
			}
		}
		if raw := get("rating"); raw != "" {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64); err == nil {
				rec.Rating = v
			}
		}
		if s, ok := model.ParseSentiment(get("sentiment")); ok {
			rec.Sentiment = s
		}
		rec.Normalize()
		records = append(records, rec)
	}
	return records, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
