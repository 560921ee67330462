package ethereum

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/smartlands/landregistry/pkg/ledger"
	"github.com/smartlands/landregistry/pkg/types/land"
	"github.com/stretchr/testify/require"
)

var (
	testLandId = common.HexToHash("0x4f2a9b1c8d3e5f607182930a4b5c6d7e8f90123456789abcdef0123456789abc")
	testSeller = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	testBuyer  = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

func weiFor(t *testing.T, native string) *big.Int {
	t.Helper()

	price, err := land.PriceFromString(native)
	require.NoError(t, err)
	return price.Wei()
}

func TestDecodeRegisteredEvent(t *testing.T) {
	data, err := registryABI.Events["LandRegistered"].Inputs.NonIndexed().Pack(
		"Sam Seller", "QmDocumentHash", weiFor(t, "2.5"))
	require.NoError(t, err)

	client := &Client{}
	event, err := client.decodeEvent(types.Log{
		Topics: []common.Hash{
			registryABI.Events["LandRegistered"].ID,
			testLandId,
			common.BytesToHash(testSeller.Bytes()),
		},
		Data:        data,
		TxHash:      common.HexToHash("0x01"),
		BlockNumber: 42,
	})
	require.NoError(t, err)

	require.Equal(t, ledger.EventRegistered, event.Type)
	require.Equal(t, testLandId.Hex(), event.LandId.String())
	require.Equal(t, testSeller.Hex(), event.To)
	require.Equal(t, "Sam Seller", event.OwnerName)
	require.Equal(t, "2.5", event.Price.String())
	require.Equal(t, uint64(42), event.BlockNumber)
}

func TestDecodeTransferredEvent(t *testing.T) {
	data, err := registryABI.Events["OwnershipTransferred"].Inputs.NonIndexed().Pack(
		weiFor(t, "1.25"))
	require.NoError(t, err)

	client := &Client{}
	event, err := client.decodeEvent(types.Log{
		Topics: []common.Hash{
			registryABI.Events["OwnershipTransferred"].ID,
			testLandId,
			common.BytesToHash(testSeller.Bytes()),
			common.BytesToHash(testBuyer.Bytes()),
		},
		Data:        data,
		TxHash:      common.HexToHash("0x02"),
		BlockNumber: 43,
	})
	require.NoError(t, err)

	require.Equal(t, ledger.EventTransferred, event.Type)
	require.Equal(t, testSeller.Hex(), event.From)
	require.Equal(t, testBuyer.Hex(), event.To)
	require.Equal(t, "1.25", event.Price.String())
}

func TestDecodeEventMalformedLog(t *testing.T) {
	client := &Client{}

	_, err := client.decodeEvent(types.Log{})
	require.Error(t, err)

	// Indexed fields missing from the topic list must not panic the decoder.
	_, err = client.decodeEvent(types.Log{
		Topics: []common.Hash{
			registryABI.Events["LandRegistered"].ID,
			testLandId,
		},
	})
	require.Error(t, err)

	_, err = client.decodeEvent(types.Log{
		Topics: []common.Hash{
			registryABI.Events["OwnershipTransferred"].ID,
			testLandId,
			common.BytesToHash(testSeller.Bytes()),
		},
	})
	require.Error(t, err)

	_, err = client.decodeEvent(types.Log{
		Topics: []common.Hash{common.HexToHash("0xff")},
	})
	require.Error(t, err)
}
