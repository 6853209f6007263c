package tools

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
)

// GetOnlineImage downloads url and returns its bytes and a file name taken from
// Content-Disposition, falling back to the last URL path segment.
func GetOnlineImage(ctx context.Context, url string) (bytes []byte, fName string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed to download image, status code: %d", resp.StatusCode)
		return
	}

	bytes, err = io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	fName = FileNameFromDisposition(resp.Header.Get("Content-Disposition"))
	if fName == "" {
		fName = path.Base(req.URL.Path)
	}
	return
}

func FileNameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
