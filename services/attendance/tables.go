package attendance

import (
	"context"
	"strings"

	"attendance-backend/lib/htmlutil"
)

const headerSimilarity = 0.9

var (
	percentageHeaders = []string{"%", "percent"}
	attendedHeaders   = []string{"attended", "present"}
	conductedHeaders  = []string{"conducted", "total", "held"}
	subjectHeaders    = []string{"subject", "course", "code"}
)

type tableColumns struct {
	subject, attended, conducted, percentage int
}

func findTableColumns(headers []string) (tableColumns, bool) {
	taken := map[int]bool{}
	find := func(candidates []string) int {
		index := htmlutil.FindColumn(headers, candidates, headerSimilarity, taken)
		if index >= 0 {
			taken[index] = true
		}
		return index
	}

	// the percentage header usually also says "attendance", so it is
	// claimed first.
	cols := tableColumns{percentage: find(percentageHeaders)}
	cols.attended = find(attendedHeaders)
	cols.conducted = find(conductedHeaders)
	cols.subject = find(subjectHeaders)
	ok := cols.attended >= 0 && cols.conducted >= 0 && cols.subject >= 0
	return cols, ok
}

func cellNumber(cell string) (float64, bool) {
	cell = strings.ReplaceAll(cell, " ", "")
	if !isNumericToken(cell) {
		return 0, false
	}
	value, err := parseNumericToken(cell)
	return value, err == nil
}

// RecordsFromHTML extracts records from <table> markup whose headers look
// like an attendance table. Rows go through the same checks as parsed text.
func RecordsFromHTML(ctx context.Context, document string) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "RecordsFromHTML")
	defer span.End()

	tables, err := htmlutil.ParseTables(ctx, document)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	records := []Record{}
	for _, table := range tables {
		cols, ok := findTableColumns(table.Headers)
		if !ok {
			continue
		}
		for _, row := range table.Rows {
			record, ok := recordFromRow(row, cols)
			if ok {
				records = append(records, record)
			}
		}
	}
	return records, nil
}

func recordFromRow(row []string, cols tableColumns) (Record, bool) {
	if cols.subject >= len(row) || cols.attended >= len(row) || cols.conducted >= len(row) {
		return Record{}, false
	}
	subject := strings.TrimSpace(row[cols.subject])
	if subject == "" {
		return Record{}, false
	}
	attended, ok := cellNumber(row[cols.attended])
	if !ok {
		return Record{}, false
	}
	conducted, ok := cellNumber(row[cols.conducted])
	if !ok {
		return Record{}, false
	}

	var percentage float64
	if cols.percentage >= 0 && cols.percentage < len(row) {
		percentage, ok = cellNumber(row[cols.percentage])
		if !ok {
			return Record{}, false
		}
	} else if conducted > 0 {
		percentage = 100 * attended / conducted
	}
	return newRecord(subject, attended, conducted, percentage)
}
