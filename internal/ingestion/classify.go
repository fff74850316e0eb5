package ingestion

// ClassifiedRow is a data row of a tab tagged with the section it belongs to.
type ClassifiedRow struct {
	Index    int
	Category string
	Cells    []string
}

// ClassifyRows walks the rows of one tab in order. Row 0 is the header and
// rows with an empty name cell are skipped. A row whose name equals the next
// label in categories is a section marker: it advances the cursor and is
// not emitted. Every other row is tagged with the label under the cursor.
func ClassifyRows(rows [][]string, categories []string, nameCol int) []ClassifiedRow {
	current := 0
	out := make([]ClassifiedRow, 0, len(rows))

	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		if current+1 < len(categories) && name == categories[current+1] {
			current++
			continue
		}

		category := ""
		if current < len(categories) {
			category = categories[current]
		}
		out = append(out, ClassifiedRow{Index: i, Category: category, Cells: row})
	}

	return out
}

// cell returns the cell at col or "" when the row is shorter.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
