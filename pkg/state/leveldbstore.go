package state

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/smartlands/landregistry/internal/config"
	"github.com/smartlands/landregistry/pkg/types/land"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type LevelDBStore struct {
	db *leveldb.DB
}

const keyPrefixPendingRegistration = "pending_registration_"

// Enforce interface constraints at compile time
var _ Store = (*LevelDBStore)(nil)

func NewLevelDBStore(cfg config.Config) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(cfg.State.Path, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDBStore{
		db: db,
	}, nil
}

func (s *LevelDBStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *LevelDBStore) PendingRegistrations(ctx context.Context) ([]PendingRegistration, error) {
	it := s.db.NewIterator(util.BytesPrefix(bz(keyPrefixPendingRegistration)), nil)
	defer it.Release()

	var pending []PendingRegistration
	for it.Next() {
		value := make([]byte, len(it.Value()))
		copy(value, it.Value())

		registration, err := unmarshalPendingRegistration(value)
		if err != nil {
			return nil, err
		}

		pending = append(pending, registration)
	}

	return pending, nil
}

func (s *LevelDBStore) PutPendingRegistration(ctx context.Context, pending PendingRegistration) error {
	encoded, err := marshalPendingRegistration(pending)
	if err != nil {
		return err
	}

	return s.db.Put(registrationKey(pending.LandId), encoded, nil)
}

func (s *LevelDBStore) IncrementRetryCount(ctx context.Context, landId land.LandID) error {
	return s.withTransaction(func(tx *leveldb.Transaction) error {
		key := registrationKey(landId)

		value, err := tx.Get(key, nil)
		if err != nil {
			if errors.Is(err, leveldb.ErrNotFound) {
				return fmt.Errorf("error incrementing retry count: pending registration not found")
			}

			return err
		}

		pending, err := unmarshalPendingRegistration(value)
		if err != nil {
			return err
		}

		pending.LastRetryTime = time.Now()
		pending.RetryCount++

		encoded, err := marshalPendingRegistration(pending)
		if err != nil {
			return err
		}

		return tx.Put(key, encoded, nil)
	})
}

func (s *LevelDBStore) RemovePendingRegistration(ctx context.Context, landId land.LandID) error {
	if err := s.db.Delete(registrationKey(landId), nil); err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return err
	}

	return nil
}

func (s *LevelDBStore) withTransaction(f func(tx *leveldb.Transaction) error) error {
	tx, err := s.db.OpenTransaction()
	if err != nil {
		return err
	}

	defer tx.Discard()

	if err := f(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func registrationKey(landId land.LandID) []byte {
	return append(bz(keyPrefixPendingRegistration), landId...)
}

func marshalPendingRegistration(pending PendingRegistration) ([]byte, error) {
	submittedAt, err := pending.SubmittedAt.MarshalBinary()
	if err != nil {
		return nil, err
	}

	lastRetryTime, err := pending.LastRetryTime.MarshalBinary()
	if err != nil {
		return nil, err
	}

	idLen := int16ToBytes(int16(len(pending.LandId)))
	submittedAtLen := int16ToBytes(int16(len(submittedAt)))
	txHashLen := int16ToBytes(int16(len(pending.TxHash)))
	lastRetryTimeLen := int16ToBytes(int16(len(lastRetryTime)))
	retryCount := int64ToBytes(int64(pending.RetryCount))

	return join(
		idLen,
		pending.LandId,
		submittedAtLen,
		submittedAt,
		txHashLen,
		pending.TxHash,
		lastRetryTimeLen,
		lastRetryTime,
		retryCount,
	), nil
}

func unmarshalPendingRegistration(bytes []byte) (PendingRegistration, error) {
	var pending PendingRegistration

	offset := 0
	readChunk := func() ([]byte, error) {
		if len(bytes) < offset+2 {
			return nil, fmt.Errorf("invalid bytes length for pending registration")
		}

		chunkLen := int(bytesToInt16(bytes[offset : offset+2]))
		offset += 2

		if len(bytes) < offset+chunkLen {
			return nil, fmt.Errorf("invalid bytes length for pending registration")
		}

		chunk := bytes[offset : offset+chunkLen]
		offset += chunkLen
		return chunk, nil
	}

	landId, err := readChunk()
	if err != nil {
		return PendingRegistration{}, err
	}
	pending.LandId = landId

	submittedAtBytes, err := readChunk()
	if err != nil {
		return PendingRegistration{}, err
	}

	if err := pending.SubmittedAt.UnmarshalBinary(submittedAtBytes); err != nil {
		return PendingRegistration{}, err
	}

	txHash, err := readChunk()
	if err != nil {
		return PendingRegistration{}, err
	}
	if len(txHash) > 0 {
		pending.TxHash = txHash
	}

	lastRetryTimeBytes, err := readChunk()
	if err != nil {
		return PendingRegistration{}, err
	}

	if err := pending.LastRetryTime.UnmarshalBinary(lastRetryTimeBytes); err != nil {
		return PendingRegistration{}, err
	}

	if len(bytes) < offset+8 {
		return PendingRegistration{}, fmt.Errorf("invalid bytes length for pending registration")
	}

	pending.RetryCount = int(bytesToInt(bytes[offset : offset+8]))

	return pending, nil
}

func join(bytes ...[]byte) []byte {
	var result []byte
	for _, b := range bytes {
		result = append(result, b...)
	}
	return result
}

func int16ToBytes(i int16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(i))
	return b
}

func int64ToBytes(i int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(i))
	return b
}

func bytesToInt16(b []byte) int16 {
	return int16(binary.LittleEndian.Uint16(b))
}

func bytesToInt(b []byte) int64 {
	return int64(binary.LittleEndian.Uint64(b))
}

func bz(s string) []byte {
	return []byte(s)
}
