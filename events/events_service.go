// Package events is the boundary between the contract core and off-chain
// observers. Notifications are appended to a leveldb-backed log in emission
// order and republished on the bus; re-delivery and ordering guarantees
// beyond that belong to the hosting layer, not to this service.
package events

import (
	"encoding/binary"
	"fmt"

	eth "github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/torusresearch/bijson"

	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/config"
	"github.com/quickex-network/xraynode/eventbus"
)

// NotificationTopic is the bus topic every appended record is republished
// on, for in-process observers.
const NotificationTopic = "contract_events"

var sequenceBytes = []byte("s")
var recordBytes = []byte("r")
var accountIndexBytes = []byte("i")

type EventsService struct {
	bus eventbus.Bus
	db  *leveldb.DB
}

func New(bus eventbus.Bus) *EventsService {
	return &EventsService{bus: bus}
}

func (s *EventsService) ID() string {
	return common.EVENTS_SERVICE_NAME
}

func (s *EventsService) Start() error {
	db, err := leveldb.OpenFile(fmt.Sprintf("%s/events", config.GlobalConfig.BasePath), nil)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *EventsService) Stop() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *EventsService) IsRunning() bool {
	return s.db != nil
}

func (s *EventsService) Call(method string, args ...interface{}) (interface{}, error) {
	switch method {
	case "emit_privacy_toggled":

		var event common.PrivacyToggledEvent
		_ = common.CastOrUnmarshal(args[0], &event)

		return nil, s.append(common.PrivacyToggledKind, event, event.Owner)
	case "emit_contract_paused":

		var event common.ContractPausedEvent
		_ = common.CastOrUnmarshal(args[0], &event)

		return nil, s.append(common.ContractPausedKind, event)
	case "emit_admin_changed":

		var event common.AdminChangedEvent
		_ = common.CastOrUnmarshal(args[0], &event)

		return nil, s.append(common.AdminChangedKind, event, event.OldAdmin, event.NewAdmin)
	case "retrieve_by_account":

		var account eth.Address
		_ = common.CastOrUnmarshal(args[0], &account)

		return s.retrieveByAccount(account)
	}
	return nil, fmt.Errorf("events service method %v not found", method)
}

// append assigns the next sequence number, stores the record and indexes it
// under every given account so observers can filter by identity.
func (s *EventsService) append(kind string, payload interface{}, accounts ...eth.Address) error {
	data, err := bijson.Marshal(payload)
	if err != nil {
		return err
	}
	seq, err := s.nextSequence()
	if err != nil {
		return err
	}
	record := common.EventRecord{
		Sequence: seq,
		Kind:     kind,
		Payload:  data,
	}
	recordData, err := bijson.Marshal(&record)
	if err != nil {
		return err
	}
	if err := s.db.Put(recordKey(seq), recordData, nil); err != nil {
		return err
	}
	for _, account := range accounts {
		if err := s.db.Put(accountKey(account, seq), nil, nil); err != nil {
			return err
		}
	}
	log.WithFields(log.Fields{
		"Kind":     kind,
		"Sequence": seq,
	}).Debug("event appended")
	s.bus.Publish(NotificationTopic, record)
	return nil
}

func (s *EventsService) retrieveByAccount(account eth.Address) ([]common.EventRecord, error) {
	prefix := append(append([]byte{}, accountIndexBytes...), account[:]...)
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var records []common.EventRecord
	for iter.Next() {
		key := iter.Key()
		seq := binary.BigEndian.Uint64(key[len(key)-8:])
		data, err := s.db.Get(recordKey(seq), nil)
		if err != nil {
			return nil, err
		}
		var record common.EventRecord
		if err := bijson.Unmarshal(data, &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, iter.Error()
}

func (s *EventsService) nextSequence() (uint64, error) {
	var seq uint64
	data, err := s.db.Get(sequenceBytes, nil)
	if err != nil && err != leveldberrors.ErrNotFound {
		return 0, err
	}
	if len(data) == 8 {
		seq = binary.BigEndian.Uint64(data)
	}
	seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	if err := s.db.Put(sequenceBytes, buf, nil); err != nil {
		return 0, err
	}
	return seq, nil
}

func recordKey(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return append(append([]byte{}, recordBytes...), buf...)
}

func accountKey(account eth.Address, seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	key := append(append([]byte{}, accountIndexBytes...), account[:]...)
	return append(key, buf...)
}
