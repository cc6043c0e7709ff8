package analysis

import (
	"context"
	"log/slog"

	"github.com/you/go-dish-demand/internal/catalog"
)

// Photo describes an uploaded dish picture. The bytes themselves are never inspected.
type Photo struct {
	Filename string
	Size     int64
}

type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, label string, photo Photo) (catalog.Dish, error)
}

// LabelRecognizer trusts the caller-supplied label and resolves it through the catalog.
type LabelRecognizer struct {
	catalog *catalog.Catalog
}

func NewLabelRecognizer(c *catalog.Catalog) *LabelRecognizer {
	return &LabelRecognizer{catalog: c}
}

func (r *LabelRecognizer) Name() string { return "label" }

func (r *LabelRecognizer) Recognize(ctx context.Context, label string, photo Photo) (catalog.Dish, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Dish{}, err
	}
	slog.Info("photo received", "filename", photo.Filename, "bytes", photo.Size, "label", label)
	return r.catalog.Lookup(label), nil
}
