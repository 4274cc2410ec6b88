// Package scrape turns league-site HTML tables into rows and parses the
// date, time, score and standings cells those rows carry.
//
// Nothing here does I/O. Column positions differ per site, so every entry
// point takes a Layout describing where each field lives.
package scrape

import (
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

// Absent marks a field the source table does not carry.
const Absent = -1

// ColumnMap gives the cell index of each logical match field.
type ColumnMap struct {
	Date        int
	Time        int
	Venue       int
	Category    int
	Round       int
	MatchNumber int
	Home        int
	Away        int
	Status      int
}

// Layout describes one source's table: which rows to read, how many cells a
// data row has at minimum, and where the fields are.
type Layout struct {
	RowSelector string
	MinCells    int
	Columns     ColumnMap
}

// Row is the whitespace-normalized cell text of one table row.
type Row []string

// At returns the cell at index i, or "" when the index is Absent or past the
// end of the row.
func (r Row) At(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// ParseDocument parses raw HTML.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "parse HTML")
	}
	return doc, nil
}

// Rows lazily yields (index, cells) for every row matching the layout's
// selector that has at least MinCells data cells. The index counts yielded
// rows, so it is stable across re-imports of the same table. Header rows and
// short decoration rows are skipped; a missing table yields nothing.
func Rows(doc *goquery.Document, layout Layout) iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		if doc == nil {
			return
		}
		selector := layout.RowSelector
		if selector == "" {
			selector = "table tr"
		}

		idx := 0
		doc.Find(selector).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			tds := tr.ChildrenFiltered("td")
			if tds.Length() == 0 || tds.Length() < layout.MinCells {
				return true
			}
			row := make(Row, tds.Length())
			tds.Each(func(i int, td *goquery.Selection) {
				row[i] = CleanText(td.Text())
			})
			if !yield(idx, row) {
				return false
			}
			idx++
			return true
		})
	}
}

// CleanText collapses whitespace runs (including non-breaking spaces) and trims.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
