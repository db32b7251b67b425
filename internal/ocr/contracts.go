package ocr

import "context"

// Provider is the strategy interface for OCR extraction backends. Extract
// returns the backend's raw response shape (string, decoded JSON mapping,
// or sequence); normalization into Text happens in the chain. Backends must
// map their own transport failures to an error, never panic.
type Provider interface {
	Name() string
	Available() bool
	Extract(ctx context.Context, imagePath string) (any, error)
}
