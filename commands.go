package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	jsoniter "github.com/json-iterator/go"
	"github.com/reusedev/autowriter-client/config"
	"github.com/reusedev/autowriter-client/internal/modules/cache"
	"github.com/reusedev/autowriter-client/internal/modules/http_client"
	"github.com/reusedev/autowriter-client/internal/modules/img_proc"
	"github.com/reusedev/autowriter-client/internal/modules/logs"
	"github.com/reusedev/autowriter-client/internal/modules/notify"
	"github.com/reusedev/autowriter-client/internal/modules/queue"
	"github.com/reusedev/autowriter-client/internal/modules/storage/ali"
	"github.com/reusedev/autowriter-client/internal/modules/storage/local"
	"github.com/reusedev/autowriter-client/tools"
	"github.com/urfave/cli/v2"
)

type runner struct {
	cfg    *config.Config
	client *img_proc.Client
	out    io.Writer
	outMu  sync.Mutex
}

func (r *runner) init(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return err
	}
	config.GConfig = cfg
	logs.InitLogger(cfg.Log)

	var responseStages []http_client.ResponseStage
	if cfg.CheckResponseCode {
		responseStages = append(responseStages, http_client.CodeCheck(cfg.Notify.DefaultMessage))
	}
	gateway := http_client.New(http_client.Options{
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.TimeoutDuration(),
		Notifier:       notify.LogNotifier{},
		NotifyDuration: cfg.NotifyDuration(),
		DefaultMessage: cfg.Notify.DefaultMessage,
		ResponseStages: responseStages,
	})
	r.cfg = cfg
	r.client = img_proc.NewClient(gateway, cache.NewImageCache(cfg.ImageCacheExpiration()))
	return nil
}

func (r *runner) print(body []byte) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = r.out.Write(body)
	if len(body) == 0 || body[len(body)-1] != '\n' {
		_, _ = io.WriteString(r.out, "\n")
	}
}

func newApp(out io.Writer) *cli.App {
	r := &runner{out: out}
	return &cli.App{
		Name:      "autowriter",
		Usage:     "client for the AutoWriter image-processing service",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yml", Usage: "config file path, optional"},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "env file providing " + config.BaseAPIEnv},
		},
		Before: r.init,
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "upload an original image",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "download the image from URL instead of FILE"},
					&cli.IntFlag{Name: "quality", Usage: "re-encode as JPEG with this quality (1-100) before upload"},
				},
				Action: r.upload,
			},
			{
				Name:      "detect",
				Usage:     "detect and correct table images",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "quality", Usage: "re-encode as JPEG with this quality (1-100) before upload"},
				},
				Action: r.detect,
			},
			{
				Name:  "gen-hw",
				Usage: "generate the handwriting image for a filled table",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Usage: "JSON file sent as the request body", Required: true},
				},
				Action: r.genHw,
			},
			{
				Name:      "fetch",
				Usage:     "download an image produced by the backend",
				ArgsUsage: "IMAGE_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "output path, defaults to IMAGE_ID"},
					&cli.Float64Flag{Name: "thumbnail", Usage: "also write a thumbnail scaled by this ratio (0-1]"},
					&cli.BoolFlag{Name: "archive", Usage: "archive the image to the configured ali_oss bucket"},
				},
				Action: r.fetch,
			},
		},
	}
}

func readImage(ctx context.Context, path, url string, quality int) (*img_proc.FormData, error) {
	form := img_proc.NewFormData()
	if url != "" {
		b, name, err := tools.GetOnlineImage(ctx, url)
		if err != nil {
			return nil, err
		}
		form.AppendFileBytes(img_proc.FileField, name, b)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err = form.AppendFile(img_proc.FileField, filepath.Base(path), f); err != nil {
			return nil, err
		}
	}
	if quality <= 0 {
		return form, nil
	}
	name, b, _ := form.File(img_proc.FileField)
	b, err := tools.ConvertAndCompressToJPEG(b, quality)
	if err != nil {
		return nil, err
	}
	return img_proc.NewImageForm(strings.TrimSuffix(name, filepath.Ext(name))+".jpg", b), nil
}

func (r *runner) upload(c *cli.Context) error {
	if c.Args().Len() == 0 && c.String("url") == "" {
		return cli.Exit("upload needs FILE or --url", 2)
	}
	form, err := readImage(c.Context, c.Args().First(), c.String("url"), c.Int("quality"))
	if err != nil {
		return err
	}
	body, err := r.client.UploadOrgImage(c.Context, form)
	if err != nil {
		return err
	}
	r.print(body)
	return nil
}

func (r *runner) detect(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return cli.Exit("detect needs at least one FILE", 2)
	}
	tasks := make([]queue.Task, len(files))
	for i, file := range files {
		tasks[i] = queue.TaskFunc(func(ctx context.Context) error {
			form, err := readImage(ctx, file, "", c.Int("quality"))
			if err != nil {
				return err
			}
			body, err := r.client.DetectTableImage(ctx, form)
			if err != nil {
				return err
			}
			r.print(body)
			return nil
		})
	}
	failed := 0
	for i, err := range queue.Run(c.Context, r.cfg.Workers, tasks...) {
		if err != nil {
			failed++
			logs.Logger.Error().Err(err).Str("file", files[i]).Msg("detect failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d detections failed", failed, len(files))
	}
	return nil
}

func (r *runner) genHw(c *cli.Context) error {
	data, err := os.ReadFile(c.String("data"))
	if err != nil {
		return err
	}
	if !jsoniter.Valid(data) {
		return fmt.Errorf("%s is not valid JSON", c.String("data"))
	}
	body, err := r.client.GenHwImage(c.Context, jsoniter.RawMessage(data))
	if err != nil {
		return err
	}
	r.print(body)
	return nil
}

func (r *runner) fetch(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return cli.Exit("fetch needs IMAGE_ID", 2)
	}
	b, err := r.client.GetImage(c.Context, id)
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" {
		out = id
	}
	if err = local.SaveFile(bytes.NewReader(b), out); err != nil {
		return err
	}
	if ratio := c.Float64("thumbnail"); ratio > 0 {
		format, err := imaging.FormatFromFilename(out)
		if err != nil {
			format = imaging.JPEG
		}
		thumb, err := tools.Thumbnail(bytes.NewReader(b), ratio, format)
		if err != nil {
			return err
		}
		ext := filepath.Ext(out)
		if err = local.SaveFile(thumb, strings.TrimSuffix(out, ext)+"_thumb"+ext); err != nil {
			return err
		}
	}
	if c.Bool("archive") {
		store, err := ali.NewOSS(r.cfg.AliOss)
		if err != nil {
			return err
		}
		key, err := store.ArchiveImage(c.Context, id, b)
		if err != nil {
			return err
		}
		logs.Logger.Info().Str("image_id", id).Str("key", key).Msg("image archived")
	}
	r.print([]byte(out))
	return nil
}
