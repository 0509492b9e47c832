package multipart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBoundary = "xYzZY"

func buildBody(parts ...string) []byte {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--" + testBoundary + "\r\n")
		b.WriteString(p)
	}
	b.WriteString("--" + testBoundary + "--\r\n")
	return []byte(b.String())
}

func fieldPart(name, value string) string {
	return "Content-Disposition: form-data; name=\"" + name + "\"\r\n\r\n" + value + "\r\n"
}

func filePart(name, filename, contentType, content string) string {
	p := "Content-Disposition: form-data; name=\"" + name + "\"; filename=\"" + filename + "\"\r\n"
	if contentType != "" {
		p += "Content-Type: " + contentType + "\r\n"
	}
	return p + "\r\n" + content + "\r\n"
}

func TestExtractBoundary(t *testing.T) {
	b, err := ExtractBoundary("multipart/form-data; boundary=----WebKitFormBoundaryABC")
	require.NoError(t, err)
	assert.Equal(t, "----WebKitFormBoundaryABC", b)

	b, err = ExtractBoundary(`multipart/form-data; boundary="quoted-token"`)
	require.NoError(t, err)
	assert.Equal(t, "quoted-token", b)

	_, err = ExtractBoundary("multipart/form-data")
	assert.ErrorIs(t, err, ErrNoBoundary)

	_, err = ExtractBoundary("application/json")
	assert.ErrorIs(t, err, ErrNoBoundary)
}

func TestDecode_SingleField(t *testing.T) {
	body := buildBody(fieldPart("title", "Neon City"))

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"title": "Neon City"}, form.Fields)
	assert.Empty(t, form.Files)
}

func TestDecode_FieldValueBytesPreserved(t *testing.T) {
	value := "line one\r\nline two\nsnowman ☃ and nul \x00 byte"
	body := buildBody(fieldPart("description", value))

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)
	assert.Equal(t, value, form.Fields["description"])
}

func TestDecode_EmptyFieldIsValid(t *testing.T) {
	body := buildBody(fieldPart("link", ""))

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)

	v, ok := form.Fields["link"]
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestDecode_DuplicateFieldLastWins(t *testing.T) {
	body := buildBody(fieldPart("category", "web"), fieldPart("category", "3d"))

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)
	assert.Equal(t, "3d", form.Fields["category"])
}

func TestDecode_FilesOnly(t *testing.T) {
	body := buildBody(
		filePart("images", "one.png", "image/png", "PNGDATA1"),
		filePart("images", "two.jpg", "image/jpeg", "JPGDATA2"),
	)

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)

	assert.Empty(t, form.Fields)
	require.Len(t, form.Files, 2)

	assert.Equal(t, "images", form.Files[0].FieldName)
	assert.Equal(t, "one.png", form.Files[0].Filename)
	assert.Equal(t, "image/png", form.Files[0].ContentType)
	assert.Equal(t, []byte("PNGDATA1"), form.Files[0].Content)

	assert.Equal(t, "two.jpg", form.Files[1].Filename)
	assert.Equal(t, []byte("JPGDATA2"), form.Files[1].Content)
}

func TestDecode_FileDefaultContentType(t *testing.T) {
	body := buildBody(filePart("images", "raw.bin", "", "\x01\x02\x03"))

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)
	require.Len(t, form.Files, 1)
	assert.Equal(t, "application/octet-stream", form.Files[0].ContentType)
}

func TestDecode_MixedFieldsAndFiles(t *testing.T) {
	body := buildBody(
		fieldPart("title", "Neon City"),
		fieldPart("tags", "React, Blender"),
		filePart("images", "shot.png", "image/png", "pixels"),
	)

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)
	assert.Equal(t, "Neon City", form.Fields["title"])
	assert.Equal(t, "React, Blender", form.Fields["tags"])
	require.Len(t, form.Files, 1)
	assert.Equal(t, []byte("pixels"), form.Files[0].Content)
}

// Splitting the body at arbitrary points must not change the decoded result.
func TestDecode_ChunkBoundaryInvariance(t *testing.T) {
	body := buildBody(
		fieldPart("title", "Neon City"),
		fieldPart("description", "two towers\r\nat dusk"),
		filePart("images", "one.png", "image/png", "binary\r\ncontent\x00here"),
		filePart("images", "two.png", "image/png", strings.Repeat("x", 4096)),
	)

	want, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)

	for _, size := range []int{1, 2, 3, 5, 7, 16, 64, 1024} {
		d := NewDecoder(testBoundary, Limits{})
		for off := 0; off < len(body); off += size {
			end := off + size
			if end > len(body) {
				end = len(body)
			}
			require.NoError(t, d.Write(body[off:end]), "chunk size %d", size)
		}
		got, err := d.Close()
		require.NoError(t, err, "chunk size %d", size)
		assert.Equal(t, want, got, "chunk size %d", size)
	}
}

func TestDecode_MalformedHeaderLineSkipped(t *testing.T) {
	part := "this line has no colon\r\nContent-Disposition: form-data; name=\"title\"\r\n\r\nok\r\n"
	body := buildBody(part)

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)
	assert.Equal(t, "ok", form.Fields["title"])
}

func TestDecode_UnterminatedHeadersIsError(t *testing.T) {
	d := NewDecoder(testBoundary, Limits{})
	require.NoError(t, d.Write([]byte("--"+testBoundary+"\r\nContent-Disposition: form-data; name=\"x\"")))

	_, err := d.Close()
	assert.ErrorIs(t, err, ErrTruncatedPart)
}

func TestDecode_OpenPartAtEOFKeepsContent(t *testing.T) {
	d := NewDecoder(testBoundary, Limits{})
	raw := "--" + testBoundary + "\r\nContent-Disposition: form-data; name=\"notes\"\r\n\r\npartial data"
	require.NoError(t, d.Write([]byte(raw)))

	form, err := d.Close()
	require.NoError(t, err)
	assert.Equal(t, "partial data", form.Fields["notes"])
}

func TestDecode_TooManyFiles(t *testing.T) {
	body := buildBody(
		filePart("images", "a.png", "image/png", "a"),
		filePart("images", "b.png", "image/png", "b"),
	)

	_, err := Decode(bytes.NewReader(body), testBoundary, Limits{MaxFiles: 1})
	assert.ErrorIs(t, err, ErrTooManyFiles)
}

func TestDecode_FileTooLarge(t *testing.T) {
	body := buildBody(filePart("images", "big.png", "image/png", strings.Repeat("z", 100)))

	_, err := Decode(bytes.NewReader(body), testBoundary, Limits{MaxFileSize: 64})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDecode_FileExactlyAtLimit(t *testing.T) {
	content := strings.Repeat("z", 64)
	body := buildBody(filePart("images", "ok.png", "image/png", content))

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{MaxFileSize: 64})
	require.NoError(t, err)
	require.Len(t, form.Files, 1)
	assert.Equal(t, []byte(content), form.Files[0].Content)
}

func TestDecode_WriteAfterErrorKeepsError(t *testing.T) {
	d := NewDecoder(testBoundary, Limits{MaxFiles: 0, MaxFileSize: 4})
	body := buildBody(filePart("images", "big.png", "image/png", strings.Repeat("z", 100)))

	err := d.Write(body)
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.ErrorIs(t, d.Write([]byte("more")), ErrFileTooLarge)

	_, err = d.Close()
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDecode_PreambleIgnored(t *testing.T) {
	body := append([]byte("this is a preamble that clients may send\r\n"), buildBody(fieldPart("title", "x"))...)

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)
	assert.Equal(t, "x", form.Fields["title"])
}

func TestDecode_PartWithoutNameDropped(t *testing.T) {
	part := "Content-Disposition: form-data\r\n\r\nanonymous\r\n"
	body := buildBody(part, fieldPart("title", "x"))

	form, err := Decode(bytes.NewReader(body), testBoundary, Limits{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"title": "x"}, form.Fields)
	assert.Empty(t, form.Files)
}
