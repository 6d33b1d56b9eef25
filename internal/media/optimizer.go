// Package media stores product images, downscaled and re-encoded as JPEG.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
)

// URLPrefix is where the server mounts Dir.
const URLPrefix = "/media"

type Optimizer struct {
	dir      string
	maxWidth int
	quality  int
}

func NewOptimizer(cfg config.MediaConfig) *Optimizer {
	o := &Optimizer{dir: cfg.Dir, maxWidth: cfg.MaxWidth, quality: cfg.Quality}
	if o.maxWidth <= 0 {
		o.maxWidth = 800
	}
	if o.quality <= 0 || o.quality > 100 {
		o.quality = 75
	}
	return o
}

// Dir is the directory images are written to.
func (o *Optimizer) Dir() string { return o.dir }

// SaveProductImage decodes r, fits it within maxWidth x maxWidth keeping
// the aspect ratio, and writes products/<id>.jpg. It returns the public
// URL path of the stored file.
func (o *Optimizer) SaveProductImage(productID string, r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > o.maxWidth || b.Dy() > o.maxWidth {
		img = imaging.Fit(img, o.maxWidth, o.maxWidth, imaging.Lanczos)
	}

	name := sanitize(productID) + ".jpg"
	dir := filepath.Join(o.dir, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	if err := imaging.Save(img, filepath.Join(dir, name), imaging.JPEGQuality(o.quality)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	return URLPrefix + "/products/" + name, nil
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}
