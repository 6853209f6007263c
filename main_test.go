package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/autowriter-client/config"
	"github.com/reusedev/autowriter-client/internal/testutil/fakebackend"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, backend *fakebackend.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.BaseAPIEnv, backend.BaseURL())
	dir := t.TempDir()
	out := &bytes.Buffer{}
	argv := append([]string{"autowriter",
		"--config", filepath.Join(dir, "missing.yml"),
		"--env-file", filepath.Join(dir, "missing.env"),
	}, args...)
	err := newApp(out).RunContext(context.Background(), argv)
	return out.String(), err
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0644))
	return p
}

func TestGenHwCommandForwardsFile(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	data := filepath.Join(t.TempDir(), "table.json")
	const payload = `{"rows":1,"cols":1,"tdtr_cells":[[{"text":"张三"}]],"img_index_key":"k1"}`
	require.NoError(t, os.WriteFile(data, []byte(payload), 0644))

	out, err := run(t, backend, "gen-hw", "--data", data)
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"img_index_key":"k1","handwriting_image_id":"handwriting_k1.jpg"}`, out)

	received := backend.Received()
	require.Len(t, received, 1)
	require.Equal(t, "/api/img_proc/gen_hw_image", received[0].Path)
	require.Equal(t, payload, string(received[0].Body))
}

func TestGenHwCommandRejectsInvalidJSON(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	data := filepath.Join(t.TempDir(), "table.json")
	require.NoError(t, os.WriteFile(data, []byte("{"), 0644))
	_, err := run(t, backend, "gen-hw", "--data", data)
	require.Error(t, err)
	require.Empty(t, backend.Received())
}

func TestUploadCommand(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	file := writePNG(t, t.TempDir(), "photo.png")

	out, err := run(t, backend, "upload", "--quality", "80", file)
	require.NoError(t, err)
	require.Contains(t, out, `"code":0`)

	filename, partType, _, err := backend.Received()[0].FilePart("file")
	require.NoError(t, err)
	require.Equal(t, "photo.jpg", filename)
	require.Equal(t, "image/jpeg", partType)
}

func TestDetectCommandReportsFailures(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	dir := t.TempDir()
	good := writePNG(t, dir, "a.png")
	missing := filepath.Join(dir, "missing.png")

	out, err := run(t, backend, "detect", good, missing)
	require.EqualError(t, err, "1 of 2 detections failed")
	require.Equal(t, 1, strings.Count(out, `"success":true`))
}

func TestFetchCommand(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 20, 10))))
	backend.PutImage("corrected_a.png", buf.Bytes())
	dst := filepath.Join(t.TempDir(), "out", "corrected.png")

	out, err := run(t, backend, "fetch", "--out", dst, "--thumbnail", "0.5", "corrected_a.png")
	require.NoError(t, err)
	require.Equal(t, dst+"\n", out)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, buf.Bytes(), b)
	thumb, err := os.Open(filepath.Join(filepath.Dir(dst), "corrected_thumb.png"))
	require.NoError(t, err)
	defer thumb.Close()
	img, err := png.Decode(thumb)
	require.NoError(t, err)
	require.Equal(t, 10, img.Bounds().Dx())
}

func TestFetchCommandBackendError(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	backend.Override(http.MethodGet, "/img_proc/image/broken.png", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	_, err := run(t, backend, "fetch", "broken.png")
	require.EqualError(t, err, "Request failed with status code 500")
}
