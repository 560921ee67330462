package land

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// The identifier is keccak256 over the canonical ABI encoding of
// (uint256 landArea, string district, string taluk, string village,
// uint256 blockNumber, uint256 surveyNumber). This mirrors the contract's own
// derivation, so landExists(id) lookups are meaningful for identifiers
// computed off-chain. The field order and encoding are fixed; changing either
// orphans every stored landId.
var deriveArguments abi.Arguments

func init() {
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}

	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}

	deriveArguments = abi.Arguments{
		{Name: "landArea", Type: uint256Type},
		{Name: "district", Type: stringType},
		{Name: "taluk", Type: stringType},
		{Name: "village", Type: stringType},
		{Name: "blockNumber", Type: uint256Type},
		{Name: "surveyNumber", Type: uint256Type},
	}
}

// DeriveLandID computes the deterministic parcel identifier from the six
// attributes that define a parcel's identity. Pure function: identical inputs
// always produce identical output, and two submissions with identical
// attributes collide by design.
func DeriveLandID(landArea int64, district, taluk, village string, blockNumber, surveyNumber int64) (LandID, error) {
	if landArea <= 0 {
		return nil, errors.New("land area must be positive")
	}

	if blockNumber < 0 || surveyNumber < 0 {
		return nil, errors.New("block and survey numbers must not be negative")
	}

	encoded, err := deriveArguments.Pack(
		big.NewInt(landArea),
		district,
		taluk,
		village,
		big.NewInt(blockNumber),
		big.NewInt(surveyNumber),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode land attributes")
	}

	return crypto.Keccak256(encoded), nil
}
