package ali

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/google/uuid"
	"github.com/reusedev/autowriter-client/config"
	"github.com/reusedev/autowriter-client/tools"
)

// OSS archives images produced by the backend into a bucket.
type OSS struct {
	client     *oss.Client
	bucketName string
	directory  string
}

func NewOSS(cfg config.AliOss) (*OSS, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("ali_oss is not configured")
	}
	credential := credentials.NewStaticCredentialsProvider(cfg.AccessKeyId, cfg.AccessKeySecret, "")
	ossCfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credential).
		WithEndpoint(cfg.Endpoint).WithRegion(cfg.Region)
	client := oss.NewClient(ossCfg)
	if client == nil {
		return nil, fmt.Errorf("create oss client failed")
	}
	return &OSS{
		client:     client,
		bucketName: cfg.Bucket,
		directory:  cfg.Directory,
	}, nil
}

// ObjectKey names an archived image: directory + uuid + extension detected from the bytes.
func (o *OSS) ObjectKey(b []byte) string {
	return o.directory + uuid.New().String() + tools.DetectImageType(b).Ext()
}

// ArchiveImage uploads b and returns its object key. sourceName ends up in Content-Disposition.
func (o *OSS) ArchiveImage(ctx context.Context, sourceName string, b []byte) (string, error) {
	key := o.ObjectKey(b)
	request := &oss.PutObjectRequest{
		Bucket:             oss.Ptr(o.bucketName),
		Key:                oss.Ptr(key),
		Body:               bytes.NewReader(b),
		ContentDisposition: oss.Ptr(fmt.Sprintf("attachment; filename=\"%s\"", sourceName)),
	}
	if _, err := o.client.PutObject(ctx, request); err != nil {
		return "", err
	}
	return key, nil
}

func (o *OSS) URL(ctx context.Context, key string, expire time.Duration) (string, error) {
	ret, err := o.client.Presign(ctx, &oss.GetObjectRequest{Bucket: oss.Ptr(o.bucketName), Key: oss.Ptr(key)}, oss.PresignExpires(expire))
	if err != nil {
		return "", err
	}
	return ret.URL, nil
}
