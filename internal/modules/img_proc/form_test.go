package img_proc

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk gone")
}

func TestFormDataLookup(t *testing.T) {
	form := NewFormData().Append("sheet_type", "singlesheet")
	require.NoError(t, form.AppendFile(FileField, "a.png", strings.NewReader("png bytes")))

	v, ok := form.Value("sheet_type")
	require.True(t, ok)
	require.Equal(t, "singlesheet", v)
	_, ok = form.Value("missing")
	require.False(t, ok)

	name, content, ok := form.File(FileField)
	require.True(t, ok)
	require.Equal(t, "a.png", name)
	require.Equal(t, []byte("png bytes"), content)
	_, _, ok = form.File("other")
	require.False(t, ok)

	require.EqualError(t, form.AppendFile(FileField, "b.png", failingReader{}), "read b.png: disk gone")
}

func TestFormDataEncode(t *testing.T) {
	img := pngImage(t)
	form := NewImageForm(`say "hi".png`, img).Append("img_index_key", "k1")

	body, contentType, err := form.Encode()
	require.NoError(t, err)
	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(body, params["boundary"])
	part, err := reader.NextPart()
	require.NoError(t, err)
	require.Equal(t, "img_index_key", part.FormName())
	value, err := io.ReadAll(part)
	require.NoError(t, err)
	require.Equal(t, "k1", string(value))

	part, err = reader.NextPart()
	require.NoError(t, err)
	require.Equal(t, FileField, part.FormName())
	require.Equal(t, `say "hi".png`, part.FileName())
	require.Equal(t, "image/png", part.Header.Get("Content-Type"))
	content, err := io.ReadAll(part)
	require.NoError(t, err)
	require.Equal(t, img, content)
}

func TestNilFormDataEncodesEmpty(t *testing.T) {
	var form *FormData
	body, contentType, err := form.Encode()
	require.NoError(t, err)
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	_, err = multipart.NewReader(body, params["boundary"]).NextPart()
	require.ErrorIs(t, err, io.EOF)
}
