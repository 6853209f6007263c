package img_proc

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/reusedev/autowriter-client/internal/modules/cache"
	"github.com/reusedev/autowriter-client/internal/modules/http_client"
	"github.com/reusedev/autowriter-client/internal/modules/logs"
)

const (
	PathUploadOrgImage   = "/img_proc/uploadOrgImage"
	PathDetectTableImage = "/img_proc/detect_table_image"
	PathGenHwImage       = "/img_proc/gen_hw_image"
	PathImage            = "/img_proc/image/"
)

// Sender is satisfied by *http_client.Gateway.
type Sender interface {
	Send(ctx context.Context, d http_client.Descriptor) (http_client.Body, error)
}

type Client struct {
	gateway Sender
	images  *cache.ImageCache
}

// NewClient wires the API surface to a gateway. images may be nil to disable caching.
func NewClient(gateway Sender, images *cache.ImageCache) *Client {
	return &Client{gateway: gateway, images: images}
}

func multipartHeader() http.Header {
	h := http.Header{}
	h.Set(http_client.HeaderContentType, http_client.ContentTypeMultipart)
	return h
}

func UploadOrgImageDescriptor(form *FormData) http_client.Descriptor {
	return http_client.Descriptor{
		Method:  http.MethodPost,
		Path:    PathUploadOrgImage,
		Payload: form,
		Header:  multipartHeader(),
	}
}

func DetectTableImageDescriptor(form *FormData) http_client.Descriptor {
	return http_client.Descriptor{
		Method:  http.MethodPost,
		Path:    PathDetectTableImage,
		Payload: form,
		Header:  multipartHeader(),
	}
}

// GenHwImageDescriptor sends data as JSON, whatever its shape.
func GenHwImageDescriptor(data any) http_client.Descriptor {
	return http_client.Descriptor{
		Method:  http.MethodPost,
		Path:    PathGenHwImage,
		Payload: data,
	}
}

func GetImageDescriptor(imageID string) http_client.Descriptor {
	return http_client.Descriptor{
		Method: http.MethodGet,
		Path:   PathImage + url.PathEscape(imageID),
	}
}

// UploadOrgImage uploads the original photo. The response body is returned unmodified.
func (c *Client) UploadOrgImage(ctx context.Context, form *FormData) (http_client.Body, error) {
	return c.gateway.Send(ctx, UploadOrgImageDescriptor(form))
}

// DetectTableImage asks the backend to correct the photo and recognise its table.
func (c *Client) DetectTableImage(ctx context.Context, form *FormData) (http_client.Body, error) {
	return c.gateway.Send(ctx, DetectTableImageDescriptor(form))
}

// GenHwImage renders the filled table as handwriting.
func (c *Client) GenHwImage(ctx context.Context, data any) (http_client.Body, error) {
	return c.gateway.Send(ctx, GenHwImageDescriptor(data))
}

// GetImage downloads an image the backend produced, e.g. corrected_image_id or
// handwriting_image_id. Downloads are cached by id when the client has an image cache;
// callers always get their own copy of the bytes.
func (c *Client) GetImage(ctx context.Context, imageID string) ([]byte, error) {
	if c.images != nil {
		if b, found, err := c.images.GetValue(ctx, imageID); err == nil && found {
			return bytes.Clone(b), nil
		} else if err != nil {
			logs.Logger.Warn().Err(err).Str("image_id", imageID).Msg("image cache get error")
		}
	}
	body, err := c.gateway.Send(ctx, GetImageDescriptor(imageID))
	if err != nil {
		return nil, err
	}
	if c.images != nil {
		if err = c.images.Set(ctx, imageID, bytes.Clone(body)); err != nil {
			logs.Logger.Warn().Err(err).Str("image_id", imageID).Msg("image cache set error")
		}
	}
	return body, nil
}
