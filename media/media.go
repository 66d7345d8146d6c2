// Package media stores pitch deck files in object storage.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// MaxPitchDeckSize is the largest accepted pitch deck file.
const MaxPitchDeckSize = 50 << 20

// File is an upload as received from the caller.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Result describes a stored file.
type Result struct {
	URL          string
	ViewURL      string
	ThumbnailURL string
	Pages        int
}

type Uploader interface {
	Upload(ctx context.Context, f File) (Result, error)
}

var contentTypes = map[string]string{
	"application/pdf":               "pdf",
	"application/vnd.ms-powerpoint": "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
}

// FileType returns pdf, ppt or pptx for an accepted pitch deck file. The
// content type decides; the extension is used when the type is generic.
func FileType(f File) (string, error) {
	if t, ok := contentTypes[strings.ToLower(strings.TrimSpace(f.ContentType))]; ok {
		return t, nil
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), ".")
	if f.ContentType == "" || f.ContentType == "application/octet-stream" {
		switch ext {
		case "pdf", "ppt", "pptx":
			return ext, nil
		}
	}
	return "", fmt.Errorf("file must be PDF or PowerPoint, got %q", f.ContentType)
}

// IsPresentation reports whether fileType is a PowerPoint format.
func IsPresentation(fileType string) bool {
	return fileType == "ppt" || fileType == "pptx"
}

const thumbnailTransform = "pg_1,w_400,h_300,c_fit,q_85"

// ThumbnailURL derives a first-page JPEG preview from a Cloudinary delivery
// URL. URLs it does not recognise are returned unchanged.
func ThumbnailURL(fileURL, fileType string) string {
	if fileURL == "" {
		return ""
	}
	switch {
	case IsPresentation(fileType) && strings.Contains(fileURL, "/raw/upload/"):
		fileURL = strings.Replace(fileURL, "/raw/upload/", "/image/upload/", 1)
	case strings.Contains(fileURL, "/image/upload/"):
	default:
		return fileURL
	}

	base, rest, _ := strings.Cut(fileURL, "/upload/")
	if i := strings.LastIndex(rest, "."); i > strings.LastIndex(rest, "/") {
		rest = rest[:i]
	}
	return base + "/upload/" + thumbnailTransform + "/" + rest + ".jpg"
}
