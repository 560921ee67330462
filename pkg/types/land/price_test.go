package land

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriceWei(t *testing.T) {
	price, err := PriceFromString("2.5")
	require.NoError(t, err)

	expected, ok := new(big.Int).SetString("2500000000000000000", 10)
	require.True(t, ok)
	require.Zero(t, price.Wei().Cmp(expected))
}

func TestPriceWeiTruncatesSubWeiPrecision(t *testing.T) {
	price, err := PriceFromString("0.0000000000000000001")
	require.NoError(t, err)

	require.Zero(t, price.Wei().Sign())
}

func TestPriceFromWeiRoundTrip(t *testing.T) {
	price, err := PriceFromString("1.25")
	require.NoError(t, err)

	restored := PriceFromWei(price.Wei())
	require.True(t, price.Equal(restored.Decimal))
}

func TestPriceFromWeiNil(t *testing.T) {
	require.True(t, PriceFromWei(nil).IsZero())
}

func TestPriceFromStringInvalid(t *testing.T) {
	_, err := PriceFromString("not-a-number")
	require.Error(t, err)

	_, err = PriceFromString("")
	require.Error(t, err)
}
