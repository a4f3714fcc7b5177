package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
)

// workbookText renders every sheet of an XLSX workbook as a header line
// followed by one line per row. Formula cells carry their formula.
func workbookText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		writeHeader(&b, sheet, rows[0])
		for i := 1; i < len(rows); i++ {
			rowIdx := i + 1
			values := make([]string, len(rows[i]))
			for col, value := range rows[i] {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx)
				if formula, _ := f.GetCellFormula(sheet, cell); formula != "" {
					value = strings.TrimSpace(value + " (f=" + formula + ")")
				}
				values[col] = value
			}
			writeRow(&b, rowIdx, len(rows[0]), values)
		}
	}
	return b.String(), nil
}

// legacyWorkbookText renders a BIFF (.xls) workbook like workbookText.
func legacyWorkbookText(data []byte) (string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open xls workbook: %w", err)
	}
	var b strings.Builder
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		rows := sheet.GetRows()
		if len(rows) == 0 {
			continue
		}
		header := cellValues(rows[0].GetCols())
		writeHeader(&b, sheet.GetName(), header)
		for r := 1; r < len(rows); r++ {
			writeRow(&b, r+1, len(header), cellValues(rows[r].GetCols()))
		}
	}
	return b.String(), nil
}

func cellValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}

func writeHeader(b *strings.Builder, sheet string, header []string) {
	b.WriteString("Sheet: ")
	b.WriteString(sheet)
	b.WriteString("\nHeader: ")
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
}

func writeRow(b *strings.Builder, rowIdx, width int, values []string) {
	if len(values) < width {
		values = append(values, make([]string, width-len(values))...)
	}
	b.WriteString("Row ")
	b.WriteString(strconv.Itoa(rowIdx))
	b.WriteString(": ")
	b.WriteString(strings.Join(values, "\t"))
	b.WriteByte('\n')
}
