package documents

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// NoopStore is used when no pinning credentials are configured. Parcels can
// still be submitted with a pre-pinned CID; direct uploads are refused.
type NoopStore struct{}

var _ Store = NoopStore{}

func (NoopStore) Upload(ctx context.Context, fileName string, r io.Reader) (string, error) {
	return "", errors.New("document uploads are not configured")
}
