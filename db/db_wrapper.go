package db

import (
	"encoding/binary"
	"fmt"

	eth "github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/torusresearch/bijson"

	"github.com/quickex-network/xraynode/common"
)

type DBWrapper struct {
	db *leveldb.DB
}

var adminStateBytes = []byte("a")
var privacyFlagBytes = []byte("p")
var escrowCounterBytes = []byte("ec")
var escrowRecordBytes = []byte("er")

type privacyFlag struct {
	Enabled bool `json:"enabled"`
}

func NewDB(path string) (*DBWrapper, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &DBWrapper{db: db}, nil
}

func (w *DBWrapper) Close() error {
	return w.db.Close()
}

// StoreAdminState writes the singleton administrative record.
func (w *DBWrapper) StoreAdminState(state common.AdminState) error {
	data, err := bijson.Marshal(state)
	if err != nil {
		return err
	}
	w.Set(adminStateBytes, data)
	return nil
}

// RetrieveAdminState returns the singleton record and whether it exists.
// Absence is a legal state, not an error: it means pre-initialization.
func (w *DBWrapper) RetrieveAdminState() (state common.AdminState, exists bool, err error) {
	data := w.Get(adminStateBytes)
	if data == nil {
		return state, false, nil
	}
	err = bijson.Unmarshal(data, &state)
	if err != nil {
		return state, false, err
	}
	return state, true, nil
}

func (w *DBWrapper) StorePrivacyFlag(owner eth.Address, enabled bool) error {
	key := append(privacyFlagBytes, owner[:]...)
	data, err := bijson.Marshal(privacyFlag{Enabled: enabled})
	if err != nil {
		return err
	}
	w.Set(key, data)
	return nil
}

// RetrievePrivacyFlag returns the stored flag; a missing entry reads as
// false.
func (w *DBWrapper) RetrievePrivacyFlag(owner eth.Address) (bool, error) {
	key := append(privacyFlagBytes, owner[:]...)
	data := w.Get(key)
	if data == nil {
		return false, nil
	}
	var flag privacyFlag
	err := bijson.Unmarshal(data, &flag)
	if err != nil {
		return false, err
	}
	return flag.Enabled, nil
}

// NextEscrowID increments and persists the escrow counter, returning the new
// value. IDs start at 1.
func (w *DBWrapper) NextEscrowID() (uint64, error) {
	var count uint64
	data := w.Get(escrowCounterBytes)
	if data != nil {
		if len(data) != 8 {
			return 0, errors.New("escrow counter is corrupted")
		}
		count = binary.BigEndian.Uint64(data)
	}
	count++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, count)
	w.Set(escrowCounterBytes, buf)
	return count, nil
}

func (w *DBWrapper) StoreEscrowRecord(record common.EscrowRecord) error {
	data, err := bijson.Marshal(record)
	if err != nil {
		return err
	}
	w.Set(escrowKey(record.ID), data)
	return nil
}

func (w *DBWrapper) RetrieveEscrowRecord(id uint64) (record common.EscrowRecord, err error) {
	data := w.Get(escrowKey(id))
	if data == nil {
		return record, fmt.Errorf("could not find escrow record for id %d", id)
	}
	err = bijson.Unmarshal(data, &record)
	return record, err
}

func escrowKey(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return append(escrowRecordBytes, buf...)
}

func (w *DBWrapper) Set(key []byte, value []byte) {
	key = nonNilBytes(key)
	value = nonNilBytes(value)
	err := w.db.Put(key, value, nil)
	if err != nil {
		log.WithError(err).Fatal()
	}
}

func (w *DBWrapper) Get(key []byte) []byte {
	key = nonNilBytes(key)
	res, err := w.db.Get(key, nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil
		}
		panic(err)
	}
	return res
}

func nonNilBytes(bz []byte) []byte {
	if bz == nil {
		return []byte{}
	}
	return bz
}
