package storage

import (
	"context"
	"fmt"

	"vodworks/internal/config"
)

// Kind discriminates storage backends. Transcode and thumbnail jobs are only
// supported against R2, since their outputs are served from the CDN path.
type Kind string

const (
	KindR2   Kind = "r2"
	KindMock Kind = "mock"
)

// Adapter is the blob store the worker reads originals from and writes
// derived objects to. Keys are opaque strings.
type Adapter interface {
	Kind() Kind
	Exists(ctx context.Context, key string) (bool, error)
	GetBuffer(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// New creates a storage adapter from config.
func New(cfg *config.Config) (Adapter, error) {
	switch cfg.Storage.Provider {
	case "r2":
		return NewR2(cfg)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Storage.Provider)
	}
}
