// Package textextract pulls plain text out of uploaded policy files so it can
// be shown to carers and sent for enhancement.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	pdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

var ErrUnsupported = errors.New("unsupported file type")

// Extract never fails: any problem is logged and yields "".
func Extract(fileName string, data []byte) string {
	text, err := ExtractText(fileName, data)
	if err != nil {
		zap.L().Warn("text extraction failed", zap.String("file", fileName), zap.Error(err))
		return ""
	}
	return text
}

// DetectContentType sniffs the MIME type from the file bytes.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// ExtractText detects the real file type from its bytes, falling back to the
// extension, and extracts its text.
func ExtractText(fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file %s", fileName)
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	mt := mimetype.Detect(data)

	switch {
	case mt.Is(mimePDF):
		return extractPDF(data)
	case mt.Is(mimeDOCX), mt.Is("application/zip") && ext == ".docx":
		return extractDOCX(data)
	case isText(mt):
		return plainText(data)
	case ext == ".txt" || ext == ".md":
		return plainText(data)
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupported, fileName, mt.String())
}

func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(mimeText) {
			return true
		}
	}
	return false
}

func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("text is not valid UTF-8")
	}
	return strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n")), nil
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed files
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("pdf: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// extractDOCX reads word/document.xml, one line per paragraph.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx zip: %w", err)
	}
	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("docx: word/document.xml missing")
	}
	rc, err := body.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		out    strings.Builder
		line   strings.Builder
		inTabs bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				var v string
				if err := dec.DecodeElement(&v, &el); err != nil {
					return "", fmt.Errorf("docx text: %w", err)
				}
				line.WriteString(v)
			case "tabs":
				inTabs = true
			case "tab":
				if !inTabs {
					line.WriteString("\t")
				}
			case "br":
				line.WriteString("\n")
			}
		case xml.EndElement:
			if el.Name.Local == "tabs" {
				inTabs = false
			}
			if el.Name.Local == "p" {
				out.WriteString(strings.TrimRight(line.String(), " \t"))
				out.WriteString("\n")
				line.Reset()
			}
		}
	}
	out.WriteString(line.String())
	return strings.TrimSpace(out.String()), nil
}
