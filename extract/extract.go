// Package extract turns document files into plain text before ingestion.
//
// The format is chosen by file extension: PDF, DOCX, XLSX/XLSM and XLS are
// parsed, anything else is treated as UTF-8 text.
package extract

import (
	"path"
	"strings"
)

// Text returns the plain text content of a file named name.
func Text(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return string(pdfText(data)), nil
	case ".docx":
		text := docxText(data)
		if len(text) == 0 {
			text = printableText(data)
		}
		return string(text), nil
	case ".xlsx", ".xlsm":
		return workbookText(data)
	case ".xls":
		return legacyWorkbookText(data)
	}
	return string(data), nil
}
