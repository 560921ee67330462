package land

import (
	"math/big"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Price is a sale price in the ledger's native unit (e.g. ETH, not wei).
// Conversion to the smallest unit happens only at the ledger boundary.
// Stored as a decimal string in both JSON and BSON to avoid float drift.
type Price struct {
	decimal.Decimal
}

var (
	_ bson.ValueMarshaler   = (*Price)(nil)
	_ bson.ValueUnmarshaler = (*Price)(nil)
)

var weiPerNativeUnit = decimal.New(1, 18)

func NewPrice(d decimal.Decimal) Price {
	return Price{d}
}

func PriceFromString(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}

	return Price{d}, nil
}

// Wei converts the native-unit price to the smallest on-chain unit,
// truncating any precision beyond 18 decimal places.
func (p Price) Wei() *big.Int {
	return p.Mul(weiPerNativeUnit).Truncate(0).BigInt()
}

// PriceFromWei converts a smallest-unit ledger amount back to native units.
func PriceFromWei(wei *big.Int) Price {
	if wei == nil {
		return Price{}
	}

	return Price{decimal.NewFromBigInt(wei, 0).Div(weiPerNativeUnit)}
}

func (p Price) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(p.String())
}

func (p *Price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return err
	}

	if s == "" {
		p.Decimal = decimal.Zero
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}

	p.Decimal = d
	return nil
}
