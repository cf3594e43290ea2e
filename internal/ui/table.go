package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// idColumns are moved to the front of item tables when present.
var idColumns = []string{"id", "_id"}

// RenderItems writes items as a table with one column per field.
// Identifier columns come first, the remaining fields in alphabetical order.
func RenderItems(w io.Writer, items []map[string]any) error {
	headers := itemColumns(items)

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = cellValue(item[h])
		}
		rows = append(rows, row)
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("adding rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}

func itemColumns(items []map[string]any) []string {
	seen := make(map[string]bool)
	var rest []string
	for _, item := range items {
		for key := range item {
			if seen[key] {
				continue
			}
			seen[key] = true
			if !slices.Contains(idColumns, key) {
				rest = append(rest, key)
			}
		}
	}
	slices.Sort(rest)

	var columns []string
	for _, id := range idColumns {
		if seen[id] {
			columns = append(columns, id)
		}
	}
	return append(columns, rest...)
}

func cellValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
