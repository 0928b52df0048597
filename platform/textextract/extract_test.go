package textextract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"word/document.xml":   documentXML,
	}
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	text, err := ExtractText("policy.txt", []byte("\xef\xbb\xbfHand hygiene\r\nAlways wash hands.\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hand hygiene\nAlways wash hands.", text)
}

func TestExtractMarkdownByExtension(t *testing.T) {
	text := Extract("notes.md", []byte("# Title\n\n- one\n"))
	assert.Equal(t, "# Title\n\n- one", text)
}

func TestExtractDOCX(t *testing.T) {
	xmlBody := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Medication</w:t></w:r><w:r><w:t xml:space="preserve"> Policy</w:t></w:r></w:p>
<w:p><w:r><w:t>Store securely.</w:t></w:r></w:p>
</w:body>
</w:document>`
	text, err := extractDOCX(docx(t, xmlBody))
	require.NoError(t, err)
	assert.Equal(t, "Medication Policy\nStore securely.", text)
}

func TestExtractFailuresAreEmpty(t *testing.T) {
	assert.Equal(t, "", Extract("empty.txt", nil))
	assert.Equal(t, "", Extract("image.png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}))
	assert.Equal(t, "", Extract("broken.pdf", []byte("%PDF-1.4 not really a pdf")))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectContentType([]byte("%PDF-1.7\n")))
	assert.Contains(t, DetectContentType([]byte("plain words")), "text/plain")
}
