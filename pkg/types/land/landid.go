package land

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// LandID is the 32-byte identifier joining the off-chain parcel document with
// the on-chain land struct. It is derived from the parcel's location and area
// attributes (see DeriveLandID) and is rendered as 0x-prefixed hex on the
// wire, matching the contract's bytes32 representation.
type LandID []byte

// Enforce compile-time interface conformance
var (
	_ fmt.Stringer          = (*LandID)(nil)
	_ json.Marshaler        = (*LandID)(nil)
	_ json.Unmarshaler      = (*LandID)(nil)
	_ bson.ValueMarshaler   = (*LandID)(nil)
	_ bson.ValueUnmarshaler = (*LandID)(nil)
)

var landIdRegex = regexp.MustCompile("^0x[0-9a-fA-F]{64}$")

var ErrInvalidLandId = errors.New("invalid land id: expected 0x-prefixed 32-byte hex string")

func ParseLandID(s string) (LandID, error) {
	if !landIdRegex.MatchString(s) {
		return nil, ErrInvalidLandId
	}

	decoded, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, ErrInvalidLandId
	}

	return decoded, nil
}

func (id LandID) String() string {
	return "0x" + hex.EncodeToString(id)
}

// Bytes32 returns the identifier as a fixed-size array for ABI calls. IDs of
// any other length pack to the zero value, which no registered land can have.
func (id LandID) Bytes32() [32]byte {
	var out [32]byte
	if len(id) == 32 {
		copy(out[:], id)
	}
	return out
}

func (id LandID) Equal(other LandID) bool {
	return strings.EqualFold(id.String(), other.String())
}

func (id LandID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

func (id *LandID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseLandID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

func (id LandID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(id.String())
}

func (id *LandID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return err
	}

	parsed, err := ParseLandID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}
