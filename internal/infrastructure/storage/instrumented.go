package storage

import (
	"context"
	"errors"

	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
)

// instrumented counts operations on an underlying store
type instrumented struct {
	Store
	metrics *monitoring.Metrics
}

// WithMetrics wraps s so every operation is counted. A missing key is not
// counted as an error.
func WithMetrics(s Store, metrics *monitoring.Metrics) Store {
	if metrics == nil {
		return s
	}
	return &instrumented{Store: s, metrics: metrics}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := i.Store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		i.metrics.RecordStoreOp("get", nil)
	} else {
		i.metrics.RecordStoreOp("get", err)
	}
	return v, err
}

func (i *instrumented) Put(ctx context.Context, key string, value []byte) error {
	err := i.Store.Put(ctx, key, value)
	i.metrics.RecordStoreOp("put", err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	err := i.Store.Delete(ctx, key)
	i.metrics.RecordStoreOp("delete", err)
	return err
}
