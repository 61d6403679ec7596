package image

import (
	"context"
)

// GenerateRequest describes a normalized request passed to an image provider.
type GenerateRequest struct {
	Prompt      string
	AspectRatio string
	RequestID   string
}

// Asset represents a generated image.
type Asset struct {
	Data   []byte
	Format string
}

// Generator is the contract implemented by image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}
