package htmlutil

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const attendancePage = `
<html><body>
<table id="layout"><tr><td>menu</td></tr></table>
<table class="grid">
	<thead><tr><th>S.No</th><th>Subject  Code</th><th>Classes Attended</th><th>Total Conducted</th><th>Attendance %</th></tr></thead>
	<tbody>
		<tr><td>1</td><td> 23HUM102 </td><td>10</td><td>12</td><td>83.33</td></tr>
		<tr><td>2</td><td>CLOUD
			COMPUTING</td><td>2</td><td>5</td><td>40</td></tr>
		<tr></tr>
	</tbody>
</table>
<script>var x = "<table>";</script>
</body></html>`

func TestParseTables(t *testing.T) {
	tables, err := ParseTables(context.Background(), attendancePage)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	layout := tables[0]
	require.Equal(t, []string{"menu"}, layout.Headers)
	require.Empty(t, layout.Rows)

	grid := tables[1]
	expected := Table{
		Headers: []string{"S.No", "Subject Code", "Classes Attended", "Total Conducted", "Attendance %"},
		Rows: [][]string{
			{"1", "23HUM102", "10", "12", "83.33"},
			{"2", "CLOUD COMPUTING", "2", "5", "40"},
		},
	}
	if diff := cmp.Diff(expected, grid); diff != "" {
		t.Fatal(diff)
	}
}

func TestFindColumn(t *testing.T) {
	headers := []string{"S.No", "Subject Code", "Classes Attended", "Total Conducted", "Attendance %"}

	taken := map[int]bool{}
	pct := FindColumn(headers, []string{"%", "percent"}, 0.9, taken)
	require.Equal(t, 4, pct)
	taken[pct] = true

	attended := FindColumn(headers, []string{"attended"}, 0.9, taken)
	require.Equal(t, 2, attended)
	taken[attended] = true

	conducted := FindColumn(headers, []string{"conducted", "total"}, 0.9, taken)
	require.Equal(t, 3, conducted)
	taken[conducted] = true

	require.Equal(t, 1, FindColumn(headers, []string{"subject", "course", "code"}, 0.9, taken))
	require.Equal(t, -1, FindColumn(headers, []string{"faculty"}, 0.9, taken))
}

func TestFindColumnFuzzy(t *testing.T) {
	headers := []string{"Subjct", "Atended"}
	require.Equal(t, 1, FindColumn(headers, []string{"attended"}, 0.9, nil))
	require.Equal(t, 0, FindColumn(headers, []string{"subject"}, 0.9, nil))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "CLOUD COMPUTING", CleanText("  CLOUD\n\t  COMPUTING ​"))
}
