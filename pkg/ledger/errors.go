package ledger

import "github.com/pkg/errors"

var (
	// ErrChainRejected marks a transaction or call the contract reverted:
	// failed precondition, insufficient funds, stale nonce. Not retriable
	// without fixing the cause; the revert reason is wrapped where available.
	ErrChainRejected = errors.New("transaction rejected by the ledger")

	// ErrChainUnavailable marks an RPC or network failure. Reads may be
	// retried; writes must check transaction status first.
	ErrChainUnavailable = errors.New("ledger unavailable")

	// ErrConfirmationPending means a write was sent but not observed as
	// mined before the deadline. The transaction may still confirm later.
	ErrConfirmationPending = errors.New("transaction submitted but confirmation not observed")

	ErrNotRegistered     = errors.New("land id not registered on the ledger")
	ErrAlreadyRegistered = errors.New("land id already registered on the ledger")
)
