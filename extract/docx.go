package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

func docxText(data []byte) []byte {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}
	for _, f := range r.File {
		if !strings.EqualFold(f.Name, "word/document.xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		return docxXMLText(rc)
	}
	return nil
}

// docxXMLText walks WordprocessingML runs; paragraphs and rows end lines,
// cells are tab separated.
func docxXMLText(r io.Reader) []byte {
	dec := xml.NewDecoder(r)
	var buf bytes.Buffer
	newline := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t", "instrText":
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil {
					buf.WriteString(text)
					newline = false
				}
			case "tab":
				buf.WriteByte('\t')
				newline = false
			case "br", "cr":
				buf.WriteByte('\n')
				newline = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "tr":
				if !newline {
					buf.WriteByte('\n')
					newline = true
				}
			case "tc":
				if !newline {
					buf.WriteByte('\t')
				}
			}
		}
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}
