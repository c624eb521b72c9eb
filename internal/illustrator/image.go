package illustrator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/image/draw"
)

const (
	// targetImageSize is the square edge length stored images are scaled to.
	targetImageSize = 1024
	jpegQuality     = 70
)

// ImageSaver downloads generated images and stores them as JPEG files.
type ImageSaver struct {
	httpClient *resty.Client
}

// NewImageSaver creates an ImageSaver with a bounded download timeout.
func NewImageSaver(timeout time.Duration) *ImageSaver {
	client := resty.New()
	client.SetTimeout(timeout)
	return &ImageSaver{httpClient: client}
}

// DownloadAndSave fetches the image at url, scales it to the target size
// when needed, and writes it to path as JPEG.
func (s *ImageSaver) DownloadAndSave(ctx context.Context, url, path string) error {
	response, err := s.httpClient.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return fmt.Errorf("download error %d: %s", response.StatusCode(), response.Status())
	}

	img, _, err := image.Decode(bytes.NewReader(response.Body()))
	if err != nil {
		return fmt.Errorf("image.Decode > %w", err)
	}
	img = scaleToTarget(img)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create > %w", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = f.Close()
		return fmt.Errorf("jpeg.Encode > %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("f.Close > %w", err)
	}
	return nil
}

func scaleToTarget(img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == targetImageSize && bounds.Dy() == targetImageSize {
		return img
	}
	scaled := image.NewRGBA(image.Rect(0, 0, targetImageSize, targetImageSize))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
	return scaled
}
