package land

import "time"

// TransferRecord carries the outcome of a confirmed on-chain sale into the
// off-chain store. The payment transaction has already been mined; this is
// bookkeeping, not money movement.
type TransferRecord struct {
	BuyerAddress string
	BuyerName    string
	TxHash       TxHash
	Price        Price
	At           time.Time
}
