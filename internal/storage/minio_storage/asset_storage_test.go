package minio_storage

import (
	"context"
	"errors"
	"testing"
)

func TestAssetURLRoundTrip(t *testing.T) {
	s := &AssetStorage{bucket: "assets", baseURL: "https://cdn.example/assets/"}

	url := s.URL("/courses/42/thumbnail/cover.png")
	if url != "https://cdn.example/assets/courses/42/thumbnail/cover.png" {
		t.Fatalf("unexpected url %q", url)
	}
	key, err := s.KeyFromURL(url)
	if err != nil || key != "courses/42/thumbnail/cover.png" {
		t.Fatalf("unexpected key %q: %v", key, err)
	}

	for _, foreign := range []string{
		"https://videos.example/intro.mp4",
		"https://cdn.example/other/courses/42/a.pdf",
		"https://cdn.example/assets/",
	} {
		if _, err := s.KeyFromURL(foreign); !errors.Is(err, ErrForeignURL) {
			t.Fatalf("%s: expected ErrForeignURL, got %v", foreign, err)
		}
	}
}

func TestDeleteByURL_IgnoresExternalURLs(t *testing.T) {
	// no client is configured, so reaching minio would panic
	s := &AssetStorage{bucket: "assets", baseURL: "https://cdn.example/assets/"}
	if err := s.DeleteByURL(context.Background(), "https://videos.example/intro.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
