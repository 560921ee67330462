package land

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// TxHash is a ledger transaction hash, 0x-prefixed hex on the wire.
type TxHash []byte

// Enforce compile-time interface conformance
var (
	_ fmt.Stringer          = (*TxHash)(nil)
	_ json.Marshaler        = (*TxHash)(nil)
	_ json.Unmarshaler      = (*TxHash)(nil)
	_ bson.ValueMarshaler   = (*TxHash)(nil)
	_ bson.ValueUnmarshaler = (*TxHash)(nil)
)

var txHashRegex = regexp.MustCompile("^0x[0-9a-fA-F]{64}$")

var ErrInvalidTxHash = errors.New("invalid transaction hash: expected 0x-prefixed 32-byte hex string")

func ParseTxHash(s string) (TxHash, error) {
	if !txHashRegex.MatchString(s) {
		return nil, ErrInvalidTxHash
	}

	decoded, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, ErrInvalidTxHash
	}

	return decoded, nil
}

func (t TxHash) String() string {
	if len(t) == 0 {
		return ""
	}

	return "0x" + hex.EncodeToString(t)
}

func (t TxHash) Equal(other TxHash) bool {
	return t.String() == other.String()
}

func (t TxHash) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TxHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" {
		*t = nil
		return nil
	}

	parsed, err := ParseTxHash(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

func (t TxHash) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.String())
}

func (t *TxHash) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(bt, data, &s); err != nil {
		return err
	}

	if s == "" {
		*t = nil
		return nil
	}

	parsed, err := ParseTxHash(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}
