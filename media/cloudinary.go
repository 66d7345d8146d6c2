package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"foundersnexus/logging"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryUploader uploads PDFs as image resources so Cloudinary can render
// page previews. Presentations are tried as images first and then as raw
// files.
type CloudinaryUploader struct {
	api    cloudinaryAPI
	folder string
	log    logging.Logger
}

func NewCloudinaryUploader(url, folder string, log logging.Logger) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration: %w", err)
	}
	return &CloudinaryUploader{api: &cld.Upload, folder: folder, log: log}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, f File) (Result, error) {
	fileType, err := FileType(f)
	if err != nil {
		return Result{}, err
	}
	data, err := io.ReadAll(io.LimitReader(f.Body, MaxPitchDeckSize+1))
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Result{}, errors.New("file is empty")
	}

	res, err := u.upload(ctx, data, f.Name, "image")
	if err != nil && IsPresentation(fileType) {
		u.log.Warn(ctx, "presentation upload as image failed, retrying as raw", "file", f.Name, "error", err)
		res, err = u.upload(ctx, data, f.Name, "raw")
	}
	if err != nil {
		return Result{}, err
	}

	pages := res.Pages
	if pages == 0 && IsPresentation(fileType) && res.ResourceType == "raw" {
		pages = 10
	}
	if pages == 0 {
		pages = 1
	}

	u.log.Info(ctx, "pitch deck uploaded", "file", f.Name, "url", res.SecureURL, "pages", pages)
	return Result{
		URL:          res.SecureURL,
		ViewURL:      res.SecureURL,
		ThumbnailURL: ThumbnailURL(res.SecureURL, fileType),
		Pages:        pages,
	}, nil
}

func (u *CloudinaryUploader) upload(ctx context.Context, data []byte, name, resourceType string) (*uploader.UploadResult, error) {
	params := uploader.UploadParams{
		Folder:       u.folder,
		ResourceType: resourceType,
		PublicID:     strings.TrimSuffix(name, pathExt(name)) + "_" + time.Now().Format("20060102150405"),
	}
	res, err := u.api.Upload(ctx, bytes.NewReader(data), params)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New("empty response from cloudinary")
	}
	if res.Error.Message != "" {
		return nil, errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return nil, errors.New("cloudinary response has no secure url")
	}
	return res, nil
}

func pathExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
