package contract

import (
	"fmt"
	"sync"

	eth "github.com/ethereum/go-ethereum/common"

	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/eventbus"
	"github.com/quickex-network/xraynode/telemetry"
)

type ContractService struct {
	bus      eventbus.Bus
	broker   *common.MessageBroker
	contract *Contract

	// callMutex serializes dispatch: the registry routes every broker
	// request in its own goroutine, and the contract's check-then-write
	// sequences must not interleave.
	callMutex sync.Mutex
}

func New(bus eventbus.Bus) *ContractService {
	return &ContractService{
		bus:    bus,
		broker: common.NewServiceBroker(bus, common.CONTRACT_SERVICE_NAME),
	}
}

func (s *ContractService) ID() string {
	return common.CONTRACT_SERVICE_NAME
}

func (s *ContractService) Start() error {
	store := &brokerStore{db: s.broker.DBMethods()}
	emitter := &brokerEmitter{events: s.broker.EventsMethods()}
	s.contract = NewContract(store, emitter)
	return nil
}

func (s *ContractService) Stop() error {
	return nil
}

func (s *ContractService) IsRunning() bool {
	return s.contract != nil
}

func (s *ContractService) Call(method string, args ...interface{}) (interface{}, error) {
	s.callMutex.Lock()
	defer s.callMutex.Unlock()

	switch method {
	case "initialize":

		var admin eth.Address
		_ = common.CastOrUnmarshal(args[0], &admin)

		return nil, s.contract.Initialize(admin)
	case "set_paused":

		var caller eth.Address
		var paused bool
		_ = common.CastOrUnmarshal(args[0], &caller)
		_ = common.CastOrUnmarshal(args[1], &paused)

		err := s.contract.SetPaused(caller, paused)
		if err == nil {
			telemetry.IncrementPauseChanged()
		}
		return nil, err
	case "set_admin":

		var caller, newAdmin eth.Address
		_ = common.CastOrUnmarshal(args[0], &caller)
		_ = common.CastOrUnmarshal(args[1], &newAdmin)

		err := s.contract.SetAdmin(caller, newAdmin)
		if err == nil {
			telemetry.IncrementAdminTransferred()
		}
		return nil, err
	case "is_paused":

		return s.contract.IsPaused()
	case "get_admin":

		admin, exists, err := s.contract.GetAdmin()
		if err != nil {
			return nil, err
		}
		return common.AdminStateLookup{
			State:  common.AdminState{Admin: admin},
			Exists: exists,
		}, nil
	case "set_privacy":

		var owner eth.Address
		var enabled bool
		_ = common.CastOrUnmarshal(args[0], &owner)
		_ = common.CastOrUnmarshal(args[1], &enabled)

		err := s.contract.SetPrivacy(owner, enabled)
		if err == nil {
			telemetry.IncrementPrivacyToggled()
			_ = s.broker.CacheMethods().CachePrivacyFlag(owner, enabled)
		}
		return nil, err
	case "get_privacy":

		var owner eth.Address
		_ = common.CastOrUnmarshal(args[0], &owner)

		if enabled, found, err := s.broker.CacheMethods().CachedPrivacyFlag(owner); err == nil && found {
			return enabled, nil
		}
		return s.contract.GetPrivacy(owner)
	case "create_escrow":

		var from, to eth.Address
		var amount uint64
		_ = common.CastOrUnmarshal(args[0], &from)
		_ = common.CastOrUnmarshal(args[1], &to)
		_ = common.CastOrUnmarshal(args[2], &amount)

		id, err := s.contract.CreateEscrow(from, to, amount)
		if err == nil {
			telemetry.IncrementEscrowCreated()
		}
		return id, err
	case "get_escrow":

		var id uint64
		_ = common.CastOrUnmarshal(args[0], &id)

		return s.contract.GetEscrow(id)
	case "health_check":

		return s.contract.HealthCheck(), nil
	}
	return nil, fmt.Errorf("contract service method %v not found", method)
}

// brokerStore adapts the db service into the contract's Store interface.
type brokerStore struct {
	db *common.DBMethods
}

func (s *brokerStore) RetrieveAdminState() (common.AdminState, bool, error) {
	return s.db.RetrieveAdminState()
}

func (s *brokerStore) StoreAdminState(state common.AdminState) error {
	return s.db.StoreAdminState(state)
}

func (s *brokerStore) RetrievePrivacyFlag(owner eth.Address) (bool, error) {
	return s.db.RetrievePrivacyFlag(owner)
}

func (s *brokerStore) StorePrivacyFlag(owner eth.Address, enabled bool) error {
	return s.db.StorePrivacyFlag(owner, enabled)
}

func (s *brokerStore) NextEscrowID() (uint64, error) {
	return s.db.NextEscrowID()
}

func (s *brokerStore) StoreEscrowRecord(record common.EscrowRecord) error {
	return s.db.StoreEscrowRecord(record)
}

func (s *brokerStore) RetrieveEscrowRecord(id uint64) (common.EscrowRecord, error) {
	return s.db.RetrieveEscrowRecord(id)
}

// brokerEmitter forwards domain events to the events service.
type brokerEmitter struct {
	events *common.EventsMethods
}

func (e *brokerEmitter) PrivacyToggled(event common.PrivacyToggledEvent) {
	e.events.EmitPrivacyToggled(event)
}

func (e *brokerEmitter) ContractPaused(event common.ContractPausedEvent) {
	e.events.EmitContractPaused(event)
}

func (e *brokerEmitter) AdminChanged(event common.AdminChangedEvent) {
	e.events.EmitAdminChanged(event)
}
