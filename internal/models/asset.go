package models

import (
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// Upload is a binary payload handed to the asset store.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaType returns the declared media type without parameters, falling back
// to the file extension.
func (u Upload) MediaType() string {
	ct := u.ContentType
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(u.Filename))); byExt != "" {
			ct = byExt
		}
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

type AssetKind string

const (
	AssetGeneric   AssetKind = "assets"
	AssetContent   AssetKind = "contents"
	AssetThumbnail AssetKind = "thumbnail"
)
