// Package media stores uploaded item images and resolves their public URLs.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

// ThumbnailWidth is the width of the generated item thumbnail.
const ThumbnailWidth = 300

var (
	dataURIPattern  = regexp.MustCompile(`^data:image/([\w.+-]+);base64,`)
	pathSegmentRule = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ImageKeys are storage keys relative to the media root.
type ImageKeys struct {
	Original string `json:"originalKey"`
	Clean    string `json:"cleanKey"`
	Thumb    string `json:"thumbKey"`
}

// ImageProcessor writes item images below basePath.
type ImageProcessor struct {
	basePath string
	logger   *logging.ChanneledLogger
}

// NewImageProcessor creates a new ImageProcessor instance
func NewImageProcessor(basePath string, logger *logging.ChanneledLogger) *ImageProcessor {
	return &ImageProcessor{basePath: basePath, logger: logger}
}

// ProcessItemImage stores the decoded original and writes a full-size WebP
// plus a thumbnail. Files written before a failure are removed.
func (p *ImageProcessor) ProcessItemImage(ownerID, itemID, data string) (*ImageKeys, error) {
	if data == "" {
		return nil, fmt.Errorf("empty base64 data")
	}
	if !pathSegmentRule.MatchString(ownerID) || !pathSegmentRule.MatchString(itemID) {
		return nil, fmt.Errorf("invalid owner or item id for media path")
	}

	ext := extractExtension(data)
	if ext == "svg" {
		return nil, fmt.Errorf("unsupported image format: svg")
	}
	decoded, err := decodeDataURI(data)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(decoded), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	base := fmt.Sprintf("%s-%d", itemID, time.Now().UnixMilli())
	keys := &ImageKeys{
		Original: filepath.ToSlash(filepath.Join(ownerID, "items", base+"."+ext)),
		Clean:    filepath.ToSlash(filepath.Join(ownerID, "items", "clean", base+".webp")),
		Thumb:    filepath.ToSlash(filepath.Join(ownerID, "items", "thumbs", fmt.Sprintf("%s_%dpx.webp", base, ThumbnailWidth))),
	}

	var written []string
	cleanup := func() {
		for _, path := range written {
			os.Remove(path)
		}
	}

	originalPath := p.path(keys.Original)
	if err := writeFile(originalPath, decoded); err != nil {
		return nil, err
	}
	written = append(written, originalPath)

	cleanPath := p.path(keys.Clean)
	if err := saveWebP(cleanPath, imaging.Clone(img)); err != nil {
		cleanup()
		return nil, err
	}
	written = append(written, cleanPath)

	thumb := img
	if img.Bounds().Dx() > ThumbnailWidth {
		thumb = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}
	thumbPath := p.path(keys.Thumb)
	if err := saveWebP(thumbPath, thumb); err != nil {
		cleanup()
		return nil, err
	}

	if p.logger != nil {
		p.logger.Items().Debug("Item image processed",
			"ownerId", ownerID, "itemId", itemID, "bytes", len(decoded), "format", ext)
	}
	return keys, nil
}

// DeleteItemImages removes the files behind the given keys. Missing files are ignored.
func (p *ImageProcessor) DeleteItemImages(keys ...*string) error {
	for _, key := range keys {
		if key == nil || *key == "" || strings.Contains(*key, "://") {
			continue
		}
		if err := os.Remove(p.path(*key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", *key, err)
		}
	}
	return nil
}

func (p *ImageProcessor) path(key string) string {
	return filepath.Join(p.basePath, filepath.FromSlash(key))
}

func decodeDataURI(data string) ([]byte, error) {
	payload := data
	if strings.HasPrefix(data, "data:") {
		if !dataURIPattern.MatchString(data) {
			return nil, fmt.Errorf("invalid binary image base64 format")
		}
		payload = dataURIPattern.ReplaceAllString(data, "")
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return decoded, nil
}

// extractExtension auto-detects file extension from MIME type
func extractExtension(data string) string {
	switch {
	case strings.HasPrefix(data, "data:image/svg+xml"):
		return "svg"
	case strings.HasPrefix(data, "data:image/jpeg"), strings.HasPrefix(data, "data:image/jpg"):
		return "jpg"
	case strings.HasPrefix(data, "data:image/webp"):
		return "webp"
	case strings.HasPrefix(data, "data:image/gif"):
		return "gif"
	}
	return "png"
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

func saveWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := webp.Save(path, img, &webp.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to save WebP %s: %w", filepath.Base(path), err)
	}
	return nil
}
