// Package ledger defines the contract surface of the on-chain land registry.
// The chain is treated as an opaque, append-only ledger: reads are idempotent
// and safe to retry, writes are irreversible and must never be retried
// blindly (re-sending a transfer could double-pay).
package ledger

import (
	"context"

	"github.com/smartlands/landregistry/pkg/types/land"
)

type Ledger interface {
	// Ping verifies the RPC endpoint is reachable.
	Ping(ctx context.Context) error

	// LandExists reports whether an identifier is registered on-chain. Safe
	// to retry; used as the idempotency check before and after registration
	// writes.
	LandExists(ctx context.Context, id land.LandID) (bool, error)

	// GetLand reads the current on-chain struct for a parcel. Returns
	// ErrNotRegistered if the identifier is unknown to the contract.
	GetLand(ctx context.Context, id land.LandID) (ParcelSnapshot, error)

	// SubmitRegistration writes the parcel's attribute set to the contract
	// and waits for the transaction to be mined. Returns ErrAlreadyRegistered
	// without sending anything if the identifier already exists on-chain.
	// A returned ErrConfirmationPending means the transaction was sent but
	// not observed as mined; callers must reconcile via LandExists before
	// assuming failure.
	SubmitRegistration(ctx context.Context, parcel land.Parcel) (TxHandle, error)

	// SubmitTransfer pays for and executes an on-chain ownership transfer.
	// All-or-nothing on the ledger; never retried by this client.
	SubmitTransfer(ctx context.Context, id land.LandID, newOwnerName string, payment land.Price) (TxHandle, error)

	// QueryRegisteredParcels replays the registration event log and joins
	// each event with the current on-chain struct. The event captures the
	// original registration; the struct reflects current ownership, so both
	// are read together to avoid returning stale owners.
	QueryRegisteredParcels(ctx context.Context, filter SnapshotFilter) ([]ParcelSnapshot, error)

	// History returns the ordered registration and transfer events for one
	// parcel.
	History(ctx context.Context, id land.LandID) ([]Event, error)
}

// TxHandle identifies a submitted ledger transaction.
type TxHandle struct {
	Hash        land.TxHash `json:"txHash"`
	BlockNumber uint64      `json:"blockNumber,omitempty"`
}

// ParcelSnapshot is the on-chain view of a parcel: the current struct fields,
// plus provenance from the registration event when read via the event log.
type ParcelSnapshot struct {
	LandId       land.LandID `json:"landId"`
	OwnerName    string      `json:"ownerName"`
	LandArea     int64       `json:"landArea"`
	District     string      `json:"district"`
	Taluk        string      `json:"taluk"`
	Village      string      `json:"village"`
	BlockNumber  int64       `json:"blockNumber"`
	SurveyNumber int64       `json:"surveyNumber"`
	OwnerAddress string      `json:"ownerAddress"`
	DocumentHash string      `json:"documentHash,omitempty"`
	Verified     bool        `json:"verified"`
	Price        land.Price  `json:"price"`

	// Set when the snapshot was produced from the event log.
	RegisteredBy   string      `json:"registeredBy,omitempty"`
	RegistrationTx land.TxHash `json:"registrationTx,omitempty"`
}

type SnapshotFilter struct {
	// Owner restricts results to parcels currently owned by this address.
	Owner string
}

type EventType string

const (
	EventRegistered  EventType = "registered"
	EventTransferred EventType = "transferred"
)

// Event is one entry in a parcel's on-chain history.
type Event struct {
	Type        EventType   `json:"type"`
	LandId      land.LandID `json:"landId"`
	OwnerName   string      `json:"ownerName,omitempty"`
	From        string      `json:"from,omitempty"`
	To          string      `json:"to,omitempty"`
	Price       land.Price  `json:"price"`
	TxHash      land.TxHash `json:"txHash"`
	BlockNumber uint64      `json:"blockNumber"`
}
