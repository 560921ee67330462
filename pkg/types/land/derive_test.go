package land

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveLandIDDeterministic(t *testing.T) {
	a, err := DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
	require.NoError(t, err)
	require.Len(t, []byte(a), 32)

	b, err := DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}

func TestDeriveLandIDSensitiveToEveryAttribute(t *testing.T) {
	base, err := DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
	require.NoError(t, err)

	variants := []struct {
		name string
		id   func() (LandID, error)
	}{
		{"landArea", func() (LandID, error) {
			return DeriveLandID(2401, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
		}},
		{"district", func() (LandID, error) {
			return DeriveLandID(2400, "Madurai", "Kumbakonam", "Swamimalai", 12, 187)
		}},
		{"taluk", func() (LandID, error) {
			return DeriveLandID(2400, "Thanjavur", "Papanasam", "Swamimalai", 12, 187)
		}},
		{"village", func() (LandID, error) {
			return DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Thiruvalanchuzhi", 12, 187)
		}},
		{"blockNumber", func() (LandID, error) {
			return DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", 13, 187)
		}},
		{"surveyNumber", func() (LandID, error) {
			return DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 188)
		}},
	}

	for _, variant := range variants {
		t.Run(variant.name, func(t *testing.T) {
			id, err := variant.id()
			require.NoError(t, err)
			require.False(t, base.Equal(id))
		})
	}
}

func TestDeriveLandIDCaseSensitiveStrings(t *testing.T) {
	a, err := DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
	require.NoError(t, err)

	b, err := DeriveLandID(2400, "thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
	require.NoError(t, err)

	require.False(t, a.Equal(b))
}

func TestDeriveLandIDRejectsInvalidInputs(t *testing.T) {
	_, err := DeriveLandID(0, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
	require.Error(t, err)

	_, err = DeriveLandID(-1, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
	require.Error(t, err)

	_, err = DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", -1, 187)
	require.Error(t, err)

	_, err = DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", 12, -1)
	require.Error(t, err)
}

func TestDeriveLandIDRoundTripsThroughString(t *testing.T) {
	id, err := DeriveLandID(2400, "Thanjavur", "Kumbakonam", "Swamimalai", 12, 187)
	require.NoError(t, err)

	parsed, err := ParseLandID(id.String())
	require.NoError(t, err)
	require.True(t, id.Equal(parsed))
}
