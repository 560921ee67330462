package state

import (
	"context"
	"time"

	"github.com/smartlands/landregistry/pkg/types/land"
)

// Store is the durable journal of ledger registrations that were submitted
// but not yet confirmed and mirrored back into the off-chain store. Entries
// are written before the chain transaction is sent and removed once the
// off-chain record is marked verified, so a crash between the two leaves a
// replayable record rather than a silently diverged parcel.
type Store interface {
	Close(ctx context.Context) error
	PendingRegistrations(ctx context.Context) ([]PendingRegistration, error)
	PutPendingRegistration(ctx context.Context, pending PendingRegistration) error
	IncrementRetryCount(ctx context.Context, landId land.LandID) error
	RemovePendingRegistration(ctx context.Context, landId land.LandID) error
}

type PendingRegistration struct {
	LandId      land.LandID
	SubmittedAt time.Time

	// TxHash is set once the transaction has been sent, even if confirmation
	// was never observed. Empty means the crash happened before submission.
	TxHash land.TxHash

	// Retry data
	LastRetryTime time.Time
	RetryCount    int
}

func NewPendingRegistration(landId land.LandID, submittedAt time.Time) PendingRegistration {
	return PendingRegistration{
		LandId:      landId,
		SubmittedAt: submittedAt,
		RetryCount:  0,
	}
}
