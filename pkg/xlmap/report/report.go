// Package report aggregates extraction failures into ranked, categorized
// error reports.
package report

import (
	"math"
	"sort"
	"sync"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
)

// DefaultTopN is the default length of the most-common-errors list.
const DefaultTopN = 10

// Options configures report building.
type Options struct {
	// TopN bounds MostCommon. Zero or negative means DefaultTopN.
	TopN int
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

var recommendations = map[models.Category]string{
	models.CategoryMissingSheet:       "Missing sheets: verify sheet names in the mapping match those in the workbooks",
	models.CategoryInvalidCellAddress: "Invalid addresses: check cell address format in the mapping (e.g., 'A1', 'B10')",
	models.CategoryFormulaError:       "Formula errors: review workbook formulas for errors like #REF!, #VALUE!, #DIV/0!",
	models.CategoryTypeMismatch:       "Data type issues: ensure cells contain the expected data types (numbers, text, dates)",
	models.CategoryFileUnreadable:     "Unreadable files: confirm the files exist, are accessible and are valid xlsx workbooks",
	models.CategoryMalformedMapping:   "Malformed mapping: fix the mapping columns and duplicate field names before rerunning",
}

// Recommendation returns the fixed recommendation for a category.
func Recommendation(c models.Category) string {
	return recommendations[c]
}

type messageKey struct {
	category models.Category
	message  string
}

// Build summarizes failure records. It is pure: the same input always yields
// the same report. Zero records yield an empty report.
func Build(records []models.ErrorRecord, opts Options) models.ErrorReport {
	rep := models.ErrorReport{
		TotalErrors:     len(records),
		Breakdown:       make(map[models.Category]models.CategoryStat),
		MostCommon:      []models.CommonError{},
		Recommendations: []string{},
		Detailed:        make([]models.DetailedError, 0, len(records)),
	}
	if len(records) == 0 {
		return rep
	}

	counts := make(map[models.Category]int)
	index := make(map[messageKey]int)
	var common []models.CommonError

	for _, r := range records {
		f := r.Failure
		counts[f.Category]++

		key := messageKey{f.Category, f.Message}
		if i, ok := index[key]; ok {
			common[i].Count++
		} else {
			index[key] = len(common)
			common = append(common, models.CommonError{
				Category:     f.Category,
				Message:      f.Message,
				Count:        1,
				ExampleField: r.FieldName,
				SuggestedFix: f.SuggestedFix,
				Timestamp:    r.Timestamp,
			})
		}

		rep.Detailed = append(rep.Detailed, models.DetailedError{
			FileID:       r.FileID,
			FieldName:    r.FieldName,
			Category:     f.Category,
			SheetName:    f.SheetName,
			CellAddress:  f.CellAddress,
			ErrorMessage: f.Message,
			SuggestedFix: f.SuggestedFix,
			Timestamp:    r.Timestamp,
		})
	}

	for category, n := range counts {
		rep.Breakdown[category] = models.CategoryStat{
			Count:      n,
			Percentage: round1(100 * float64(n) / float64(len(records))),
		}
	}

	// Stable sort keeps first-seen order among equal counts.
	sort.SliceStable(common, func(i, j int) bool {
		return common[i].Count > common[j].Count
	})
	if n := opts.topN(); len(common) > n {
		common = common[:n]
	}
	rep.MostCommon = common

	for _, c := range models.Categories {
		if counts[c] > 0 {
			rep.Recommendations = append(rep.Recommendations, recommendations[c])
		}
	}
	return rep
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Accumulator collects per-file failures for a batch-wide report. It is safe
// for concurrent use; the merged report follows file order, not completion
// order.
type Accumulator struct {
	mu      sync.Mutex
	opts    Options
	byIndex map[int][]models.ErrorRecord
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator(opts Options) *Accumulator {
	return &Accumulator{
		opts:    opts,
		byIndex: make(map[int][]models.ErrorRecord),
	}
}

// Add records the failures of the file at fileIndex. It is called once per
// completed file.
func (a *Accumulator) Add(fileIndex int, records []models.ErrorRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byIndex[fileIndex] = append(a.byIndex[fileIndex], records...)
}

// Records returns every collected record in file order.
func (a *Accumulator) Records() []models.ErrorRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	indexes := make([]int, 0, len(a.byIndex))
	for i := range a.byIndex {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	var out []models.ErrorRecord
	for _, i := range indexes {
		out = append(out, a.byIndex[i]...)
	}
	return out
}

// Report builds the merged report.
func (a *Accumulator) Report() models.ErrorReport {
	return Build(a.Records(), a.opts)
}
