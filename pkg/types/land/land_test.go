package land

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidWalletAddress(t *testing.T) {
	require.True(t, ValidWalletAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	require.True(t, ValidWalletAddress("0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"))

	require.False(t, ValidWalletAddress(""))
	require.False(t, ValidWalletAddress("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	require.False(t, ValidWalletAddress("0xaaaa"))
	require.False(t, ValidWalletAddress("0xzzaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
}

func TestNewPurchaseRequestNormalisesAddress(t *testing.T) {
	req := NewPurchaseRequest("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB", "Bea Buyer", "hello")

	require.Equal(t, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", req.BuyerAddress)
	require.Equal(t, RequestStatusPending, req.Status)
	require.NotZero(t, req.RequestId)
	require.False(t, req.Timestamp.IsZero())
}

func TestParcelRequestHelpers(t *testing.T) {
	parcel := Parcel{
		PurchaseRequests: []PurchaseRequest{
			{BuyerAddress: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Status: RequestStatusPending},
			{BuyerAddress: "0xcccccccccccccccccccccccccccccccccccccccc", Status: RequestStatusRejected},
		},
	}

	_, found := parcel.ActiveRequest("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	require.True(t, found)

	// Rejected requests are terminal and do not count as active.
	_, found = parcel.ActiveRequest("0xcccccccccccccccccccccccccccccccccccccccc")
	require.False(t, found)

	_, found = parcel.AcceptedRequest()
	require.False(t, found)
	require.True(t, parcel.HasPendingRequests())

	parcel.PurchaseRequests[0].Status = RequestStatusAccepted

	accepted, found := parcel.AcceptedRequest()
	require.True(t, found)
	require.Equal(t, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", accepted.BuyerAddress)

	// An accepted request means the seller has committed; pending offers no
	// longer need attention.
	require.False(t, parcel.HasPendingRequests())
}

func TestDerivedIdMatchesStoredAttributes(t *testing.T) {
	id, err := DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
	require.NoError(t, err)

	parcel := Parcel{
		LandId:       id,
		LandArea:     2400,
		District:     "Thanjavur",
		Taluk:        "Kumbakonam",
		Village:      "Swamimalai",
		BlockNumber:  12,
		SurveyNumber: 187,
	}

	derived, err := parcel.DerivedId()
	require.NoError(t, err)
	require.True(t, parcel.LandId.Equal(derived))

	parcel.SurveyNumber = 188
	derived, err = parcel.DerivedId()
	require.NoError(t, err)
	require.False(t, parcel.LandId.Equal(derived))
}
