package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/reviewlens/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	// SheetAll holds every review, newest first
	SheetAll = "All Reviews"

	// SheetSummary holds the distributions
	SheetSummary = "Summary"

	maxSheetName = 31
)

var columnWidths = map[string]float64{
	"A": 13, "B": 20, "C": 12, "D": 8, "E": 28, "F": 80, "G": 22, "H": 11, "I": 40,
}

// WriteExcel writes the workbook: all reviews, one sheet per platform with
// reviews, and the summary
func WriteExcel(path string, records []model.ReviewRecord, summary *Summary) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	sorted := SortByDateDesc(records)
	if err := f.SetSheetName("Sheet1", SheetAll); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeReviewSheet(f, SheetAll, sorted, styles); err != nil {
		return err
	}

	for _, name := range sheetPlatforms(sorted) {
		var subset []model.ReviewRecord
		for _, r := range sorted {
			if string(r.Platform) == name {
				subset = append(subset, r)
			}
		}
		sheet := SheetName(name)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("add sheet %s: %w", sheet, err)
		}
		if err := writeReviewSheet(f, sheet, subset, styles); err != nil {
			return err
		}
	}

	if summary == nil {
		summary = Summarize("", records, 0)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, summary, styles); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// SheetName makes name a valid worksheet name
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Unknown"
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}

// SortByDateDesc returns a copy of records, newest first. Undated records go
// last; equal dates keep their input order.
func SortByDateDesc(records []model.ReviewRecord) []model.ReviewRecord {
	out := append([]model.ReviewRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.IsZero() != out[j].Date.IsZero() {
			return !out[i].Date.IsZero()
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// sheetPlatforms lists platforms present in records, known platforms first
func sheetPlatforms(records []model.ReviewRecord) []string {
	present := map[string]bool{}
	for _, r := range records {
		present[string(r.Platform)] = true
	}
	var names []string
	for _, p := range model.Platforms() {
		if present[string(p)] {
			names = append(names, string(p))
			delete(present, string(p))
		}
	}
	var rest []string
	for name := range present {
		if SheetName(name) == SheetAll || SheetName(name) == SheetSummary {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(names, rest...)
}

type sheetStyles struct {
	header int
	wrap   int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("header style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("wrap style: %w", err)
	}
	return sheetStyles{header: header, wrap: wrap}, nil
}

func writeReviewSheet(f *excelize.File, sheet string, records []model.ReviewRecord, styles sheetStyles) error {
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, styles.header); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for i := range records {
		r := &records[i]
		values := []any{
			string(r.Platform), r.ReviewerName, r.DateString(), ratingCell(r.Rating),
			r.Title, r.Text, r.Category, string(r.Sentiment), r.URL,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}

	if len(records) > 0 {
		if err := f.SetCellStyle(sheet, "F2", fmt.Sprintf("F%d", len(records)+1), styles.wrap); err != nil {
			return fmt.Errorf("%s text style: %w", sheet, err)
		}
	}
	for col, width := range columnWidths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("%s column width: %w", sheet, err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// ratingCell writes unknown ratings as empty cells rather than zero
func ratingCell(rating float64) any {
	if !model.ValidRating(rating) {
		return ""
	}
	return rating
}

func writeSummarySheet(f *excelize.File, s *Summary, styles sheetStyles) error {
	rows := [][]any{
		{"Metric", "Value"},
		{"Restaurant", s.Restaurant},
		{"Total Reviews", s.Total},
		{"Rated Reviews", s.RatedReviews},
		{"Average Rating", round2(s.AverageRating)},
		{"Rating Std Dev", round2(s.RatingStdDev)},
	}
	if !s.FirstReview.IsZero() {
		rows = append(rows,
			[]any{"First Review", s.FirstReview.Format("2006-01-02")},
			[]any{"Last Review", s.LastReview.Format("2006-01-02")},
		)
	}

	var headerRows []int
	appendSection := func(title string, counts []Count) {
		rows = append(rows, []any{})
		headerRows = append(headerRows, len(rows)+1)
		rows = append(rows, []any{title, "Count", "Share %"})
		for _, c := range counts {
			rows = append(rows, []any{c.Key, c.Count, round2(s.Share(c.Count))})
		}
	}
	appendSection("Platform", s.ByPlatform)
	appendSection("Rating", s.ByRating)
	appendSection("Category", s.ByCategory)
	appendSection("Sentiment", s.BySentiment)
	appendSection("Month", s.ByMonth)

	rows = append(rows, []any{})
	headerRows = append(headerRows, len(rows)+1)
	rows = append(rows, []any{"Keyword", "Count"})
	for _, c := range s.TopKeywords {
		rows = append(rows, []any{c.Key, c.Count})
	}

	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &values); err != nil {
			return fmt.Errorf("summary row %d: %w", i+1, err)
		}
	}

	headerRows = append(headerRows, 1)
	for _, r := range headerRows {
		if err := f.SetCellStyle(SheetSummary, fmt.Sprintf("A%d", r), fmt.Sprintf("C%d", r), styles.header); err != nil {
			return fmt.Errorf("summary style: %w", err)
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 28); err != nil {
		return fmt.Errorf("summary column width: %w", err)
	}
	return f.SetColWidth(SheetSummary, "B", "C", 12)
}
