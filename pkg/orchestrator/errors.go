package orchestrator

import "github.com/pkg/errors"

var (
	// ErrIdMismatch means the stored attribute fields no longer derive the
	// recorded land id. The record cannot be pushed on-chain; the contract
	// would register it under a different identifier.
	ErrIdMismatch = errors.New("stored attributes do not derive the recorded land id")

	// ErrTransferMismatch means the named buyer does not hold the parcel's
	// accepted purchase request.
	ErrTransferMismatch = errors.New("buyer does not hold the accepted purchase request")
)
