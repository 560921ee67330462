package land

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// Status is a parcel's position in the verification lifecycle. Transitions
	// only move forward: pending -> verified|rejected, verified -> sold.
	// Rejected and sold are terminal for the current ownership epoch.
	Status string

	// RequestStatus is the state of a single purchase request. Rejected
	// requests are retained for audit rather than deleted.
	RequestStatus string
)

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
	StatusSold     Status = "sold"

	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

var walletAddressRegex = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// ValidWalletAddress reports whether s looks like a ledger account address.
func ValidWalletAddress(s string) bool {
	return walletAddressRegex.MatchString(s)
}

// SameWallet compares two wallet addresses case-insensitively; addresses are
// stored as submitted but hex casing carries no meaning.
func SameWallet(a, b string) bool {
	return strings.EqualFold(a, b)
}

// PurchaseRequest is a buyer's expressed intent to acquire a parcel.
// Buyer addresses are normalised to lower case on creation so that the
// store's conditional updates can match them without collation tricks.
type PurchaseRequest struct {
	RequestId    uuid.UUID     `bson:"request_id" json:"requestId"`
	BuyerAddress string        `bson:"buyer_address" json:"buyerAddress"`
	BuyerName    string        `bson:"buyer_name" json:"buyerName"`
	Message      string        `bson:"message,omitempty" json:"message,omitempty"`
	Status       RequestStatus `bson:"status" json:"status"`
	Timestamp    time.Time     `bson:"timestamp" json:"timestamp"`
}

func NewPurchaseRequest(buyerAddress, buyerName, message string) PurchaseRequest {
	return PurchaseRequest{
		RequestId:    uuid.New(),
		BuyerAddress: strings.ToLower(buyerAddress),
		BuyerName:    buyerName,
		Message:      message,
		Status:       RequestStatusPending,
		Timestamp:    time.Now().UTC(),
	}
}

// Parcel is the off-chain land record. The six attribute fields feeding
// DeriveLandID (landArea, district, taluk, village, blockNumber,
// surveyNumber) are immutable once the document exists.
type Parcel struct {
	LandId        LandID `bson:"land_id" json:"landId"`
	OwnerName     string `bson:"owner_name" json:"ownerName"`
	WalletAddress string `bson:"wallet_address" json:"walletAddress"`

	LandArea     int64  `bson:"land_area" json:"landArea"`
	District     string `bson:"district" json:"district"`
	Taluk        string `bson:"taluk" json:"taluk"`
	Village      string `bson:"village" json:"village"`
	BlockNumber  int64  `bson:"block_number" json:"blockNumber"`
	SurveyNumber int64  `bson:"survey_number" json:"surveyNumber"`

	DocumentHash string `bson:"document_hash,omitempty" json:"documentHash,omitempty"`
	Price        Price  `bson:"price" json:"price"`
	Status       Status `bson:"status" json:"status"`

	PurchaseRequests []PurchaseRequest `bson:"purchase_requests" json:"purchaseRequests"`

	BlockchainVerified bool   `bson:"blockchain_verified" json:"blockchainVerified"`
	TxHash             TxHash `bson:"tx_hash,omitempty" json:"txHash,omitempty"`
	AdminComments      string `bson:"admin_comments,omitempty" json:"adminComments,omitempty"`

	RegistrationDate time.Time  `bson:"registration_date" json:"registrationDate"`
	VerificationDate *time.Time `bson:"verification_date,omitempty" json:"verificationDate,omitempty"`
	TransferDate     *time.Time `bson:"transfer_date,omitempty" json:"transferDate,omitempty"`
}

// DerivedId recomputes the identifier from the stored attribute fields.
// A mismatch with p.LandId means the document has been tampered with or the
// derivation changed underneath it.
func (p Parcel) DerivedId() (LandID, error) {
	return DeriveLandID(p.LandArea, p.District, p.Taluk, p.Village, p.BlockNumber, p.SurveyNumber)
}

// ActiveRequest returns the buyer's non-terminal purchase request, if any.
func (p Parcel) ActiveRequest(buyerAddress string) (PurchaseRequest, bool) {
	for _, req := range p.PurchaseRequests {
		if SameWallet(req.BuyerAddress, buyerAddress) && req.Status != RequestStatusRejected {
			return req, true
		}
	}

	return PurchaseRequest{}, false
}

// AcceptedRequest returns the parcel's accepted request, if any. The store
// guarantees at most one request is accepted at a time.
func (p Parcel) AcceptedRequest() (PurchaseRequest, bool) {
	for _, req := range p.PurchaseRequests {
		if req.Status == RequestStatusAccepted {
			return req, true
		}
	}

	return PurchaseRequest{}, false
}

// HasPendingRequests reports whether the parcel has offers awaiting a seller
// decision, i.e. at least one pending request and no accepted one.
func (p Parcel) HasPendingRequests() bool {
	if _, accepted := p.AcceptedRequest(); accepted {
		return false
	}

	for _, req := range p.PurchaseRequests {
		if req.Status == RequestStatusPending {
			return true
		}
	}

	return false
}
