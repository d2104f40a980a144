package file

import (
	"context"
	"fmt"
	"os"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
)

// CatalogFile reads the train catalog. The file is JSON and may carry
// comments and trailing commas. There is no write path.
type CatalogFile struct {
	Path string
}

func (c CatalogFile) LoadTrains(_ context.Context) ([]domain.Train, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", c.Path, err)
	}

	var trains []domain.Train
	if err := (jsonCodec{}).Unmarshal(data, &trains); err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", c.Path, err)
	}

	return trains, nil
}
