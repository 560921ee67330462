// Package documents pins ownership deeds to IPFS via the Pinata pinning API.
// Only the returned CID enters the system; document contents are never
// inspected or stored off IPFS.
package documents

import (
	"context"
	"io"
)

type Store interface {
	// Upload pins the document and returns its content identifier.
	Upload(ctx context.Context, fileName string, r io.Reader) (string, error)
}
