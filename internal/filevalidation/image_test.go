package filevalidation

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yelpcamp/internal/apperr"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestOpenImageAcceptsPNG(t *testing.T) {
	img, err := OpenImage(fileHeader(t, "tent.PNG", pngBytes), 1<<20)
	require.NoError(t, err)
	defer img.Close()
	assert.Equal(t, ".png", img.Ext)
	assert.Equal(t, "image/png", img.ContentType)

	body, err := io.ReadAll(img.Body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, body, "sniffed prefix is replayed")
}

func TestOpenImageRejects(t *testing.T) {
	_, err := OpenImage(fileHeader(t, "notes.txt", []byte("hello")), 1<<20)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = OpenImage(fileHeader(t, "fake.jpg", []byte("<html>hi</html>")), 1<<20)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = OpenImage(fileHeader(t, "big.png", pngBytes), 8)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSaveExclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "YelpCamp", "a.png")
	sum, err := SaveExclusive(bytes.NewReader(pngBytes), path, 1<<20)
	require.NoError(t, err)
	assert.Len(t, sum, 64)

	_, err = SaveExclusive(bytes.NewReader(pngBytes), path, 1<<20)
	assert.Error(t, err, "existing file is not overwritten")

	tooBig := filepath.Join(dir, "b.png")
	_, err = SaveExclusive(bytes.NewReader(pngBytes), tooBig, 4)
	assert.Error(t, err)
	_, statErr := os.Stat(tooBig)
	assert.True(t, os.IsNotExist(statErr))
}
