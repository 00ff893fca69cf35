// Package table converts pipeline results into rows for table output.
package table

import (
	"cmp"
	"maps"
	"slices"
	"strconv"

	"github.com/helgo/places/internal/generate/batch"
	"github.com/helgo/places/pkg/enrich"
	"github.com/helgo/places/pkg/merge"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/taxonomy"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// CategoryRow is one line of the dataset overview.
type CategoryRow struct {
	Category  taxonomy.Category `json:"category" yaml:"category"`
	Places    int               `json:"places" yaml:"places"`
	WithPhoto int               `json:"withPhoto" yaml:"withPhoto"`
	Described int               `json:"described" yaml:"described"`
	Embedded  int               `json:"embedded" yaml:"embedded"`
}

// CategoryRows tallies ds per category, in taxonomy order. Categories
// outside the taxonomy are appended in name order.
func CategoryRows(ds *places.Dataset, tables *taxonomy.Tables) []CategoryRow {
	byCat := make(map[taxonomy.Category]*CategoryRow)
	for _, p := range ds.Places() {
		row, ok := byCat[p.Category]
		if !ok {
			row = &CategoryRow{Category: p.Category}
			byCat[p.Category] = row
		}
		row.Places++
		if p.PhotoURL != "" {
			row.WithPhoto++
		}
		if p.AIDescription != "" {
			row.Described++
		}
		if len(p.Embedding) > 0 {
			row.Embedded++
		}
	}

	rows := make([]CategoryRow, 0, len(byCat))
	for _, c := range tables.Categories() {
		if row, ok := byCat[c]; ok {
			rows = append(rows, *row)
			delete(byCat, c)
		}
	}
	rest := slices.SortedFunc(maps.Values(byCat), func(a, b *CategoryRow) int {
		return cmp.Compare(a.Category, b.Category)
	})
	for _, row := range rest {
		rows = append(rows, *row)
	}
	return rows
}

// CategoriesToTableData renders category rows with a total line.
func CategoriesToTableData(rows []CategoryRow) Data {
	var total CategoryRow
	out := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		out = append(out, []string{string(r.Category), itoa(r.Places), itoa(r.WithPhoto), itoa(r.Described), itoa(r.Embedded)})
		total.Places += r.Places
		total.WithPhoto += r.WithPhoto
		total.Described += r.Described
		total.Embedded += r.Embedded
	}
	out = append(out, []string{"total", itoa(total.Places), itoa(total.WithPhoto), itoa(total.Described), itoa(total.Embedded)})

	return Data{
		Headers:         []string{"Category", "Places", "Photo", "Described", "Embedded"},
		Rows:            out,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

// BuildToTableData renders merge counters.
func BuildToTableData(res *merge.Result) Data {
	s := res.Stats
	rows := [][]string{
		{"source", string(res.Source)},
		{"processed", itoa(s.Processed)},
		{"accepted", itoa(s.Accepted)},
		{"inserted", itoa(s.Inserted)},
		{"merged", itoa(s.Merged)},
		{"unchanged", itoa(s.Unchanged)},
		{"rejected", itoa(s.Rejected)},
		{"skipped (cap)", itoa(s.SkippedCap)},
	}
	for _, reason := range slices.Sorted(maps.Keys(s.RejectedBy)) {
		rows = append(rows, []string{"  " + string(reason), itoa(s.RejectedBy[reason])})
	}
	return metricData(rows)
}

// EnrichToTableData renders enrichment counters.
func EnrichToTableData(rep *enrich.Report) Data {
	s := rep.Stats
	return metricData([][]string{
		{"scanned", itoa(s.Scanned)},
		{"complete", itoa(s.Skipped)},
		{"looked up", itoa(s.Looked)},
		{"enriched", itoa(s.Enriched)},
		{"no match", itoa(s.NoMatch)},
		{"failed", itoa(s.Failed)},
	})
}

// AttachToTableData renders attach counters.
func AttachToTableData(res enrich.AttachResult) Data {
	s := res.Stats
	return metricData([][]string{
		{"attached", itoa(s.Attached)},
		{"empty", itoa(s.Empty)},
		{"unknown id", itoa(s.Unknown)},
		{"rejected", itoa(s.Rejected)},
	})
}

// JobToTableData renders the state of a batch job.
func JobToTableData(job *batch.Job) Data {
	rows := [][]string{
		{"batch", job.ID},
		{"kind", string(job.Kind)},
		{"status", job.Status},
		{"requests", itoa(job.Requests)},
		{"completed", itoa(job.Completed)},
		{"failed", itoa(job.Failed)},
	}
	if job.OutputFile != "" {
		rows = append(rows, []string{"output file", job.OutputFile})
	}
	return metricData(rows)
}

// IssuesToTableData renders validation findings.
func IssuesToTableData(issues []places.Issue) Data {
	rows := make([][]string, len(issues))
	for i, is := range issues {
		rows[i] = []string{is.PlaceID, is.Field, is.Message}
	}
	return Data{Headers: []string{"Place", "Field", "Problem"}, Rows: rows}
}

// ChangesToTableData renders recorded changes.
func ChangesToTableData(changes []merge.Change) Data {
	rows := make([][]string, len(changes))
	for i, c := range changes {
		value := c.NewValue
		if c.Type == merge.ChangeTypeTags {
			value = c.OldValue + " -> " + c.NewValue
		}
		rows[i] = []string{c.PlaceID, string(c.Type), c.Field, truncate(value, 60), string(c.Source)}
	}
	return Data{Headers: []string{"Place", "Change", "Field", "Value", "Source"}, Rows: rows}
}

func metricData(rows [][]string) Data {
	return Data{
		Headers:         []string{"Metric", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
