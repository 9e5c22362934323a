package htmlutil

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("attendance.lib.htmlutil")

type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseTables returns every <table> in the document that has at least one
// header cell. Headers come from <th> cells, or from the first row when the
// table has none, in which case that row is not repeated in Rows.
func ParseTables(ctx context.Context, document string) ([]Table, error) {
	_, span := tracer.Start(ctx, "ParseTables")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse document")
		return nil, err
	}

	var tables []Table
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")

		var headers []string
		table.Find("th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, CleanText(GetText(th.Nodes[0])))
		})

		skipFirst := false
		if len(headers) == 0 && rows.Length() > 0 {
			rows.First().Find("td").Each(func(_ int, td *goquery.Selection) {
				headers = append(headers, CleanText(GetText(td.Nodes[0])))
			})
			skipFirst = true
		}
		if len(headers) == 0 {
			return
		}

		parsed := Table{Headers: headers}
		rows.Each(func(i int, tr *goquery.Selection) {
			if i == 0 && skipFirst {
				return
			}
			var cells []string
			tr.Find("td").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, CleanText(GetText(td.Nodes[0])))
			})
			if len(cells) == 0 {
				return
			}
			parsed.Rows = append(parsed.Rows, cells)
		})
		tables = append(tables, parsed)
	})

	span.SetAttributes(attribute.Int("tables", len(tables)))
	return tables, nil
}

func normalizeHeader(s string) string {
	s = strings.ToLower(CleanText(s))
	return strings.ReplaceAll(s, " ", "")
}

// FindColumn returns the index of the first header that contains one of the
// candidates after normalization, or failing that the first header whose
// Jaro-Winkler similarity to a candidate is at least minSimilarity. Indexes
// listed in taken are never returned. It returns -1 when nothing matches.
func FindColumn(headers []string, candidates []string, minSimilarity float64, taken map[int]bool) int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	for i, h := range normalized {
		if taken[i] || h == "" {
			continue
		}
		for _, c := range candidates {
			if strings.Contains(h, normalizeHeader(c)) {
				return i
			}
		}
	}
	for i, h := range normalized {
		if taken[i] || h == "" {
			continue
		}
		for _, c := range candidates {
			if matchr.JaroWinkler(h, normalizeHeader(c), false) >= minSimilarity {
				return i
			}
		}
	}
	return -1
}
