package common

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"reflect"
	"runtime/debug"

	eth "github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/torusresearch/bijson"

	"github.com/quickex-network/xraynode/eventbus"
)

// MessageBroker hands out typed method wrappers over the service bus. Every
// wrapper resolves to a ServiceMethod round trip against the named service.
type MessageBroker struct {
	bus    eventbus.Bus
	caller string
}

func NewServiceBroker(bus eventbus.Bus, caller string) *MessageBroker {
	return &MessageBroker{
		bus:    bus,
		caller: caller,
	}
}

type MethodRequest struct {
	Caller  string
	Service string
	Method  string
	ID      string
	Data    []interface{}
}

type MethodResponse struct {
	Request MethodRequest
	Error   error
	Data    interface{}
}

func ServiceMethod(eventBus eventbus.Bus, caller string, service string, method string, data ...interface{}) MethodResponse {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return MethodResponse{
			Error: errors.New("could not generate random nonce"),
			Data:  nil,
		}
	}
	nonceStr := hex.EncodeToString(nonce)
	responseCh := AwaitTopic(eventBus, nonceStr)
	eventBus.Publish("method", MethodRequest{
		Caller:  caller,
		Service: service,
		Method:  method,
		ID:      nonceStr,
		Data:    data,
	})
	methodResponseInter := <-responseCh
	methodResponse, ok := methodResponseInter.(MethodResponse)
	if !ok {
		return MethodResponse{
			Error: errors.New("method response was not of MethodResponse type"),
			Data:  nil,
		}
	}
	return methodResponse
}

func AwaitTopic(eventBus eventbus.Bus, topic string) <-chan interface{} {
	responseCh := make(chan interface{})
	err := eventBus.SubscribeOnceAsync(topic, func(res interface{}) {
		responseCh <- res
		close(responseCh)
	})
	if err != nil {
		log.WithError(err).Error("could not subscribe async")
	}
	return responseCh
}

func CastOrUnmarshal(dataInter interface{}, v interface{}, flags ...bool) (err error) {
	var silent bool
	if len(flags) >= 1 && flags[0] {
		silent = true
	}
	defer func() {
		if r := recover(); r != nil {
			if !silent {
				log.WithField("recover", r).WithField("stack", string(debug.Stack())).Info("could not cast in castOrUnmarshal")
			}
			err = errors.New("could not cast in castOrUnmarshal")
		}
	}()

	data, ok := dataInter.(EventBusBytes)
	if ok {
		err = bijson.Unmarshal(data, v)
		if err != nil {
			log.WithField("data", data).WithError(err).Info("could not unmarshal in castOrUnmarshal")
		}
	} else {
		lhs := reflect.ValueOf(dataInter)
		rhs := reflect.ValueOf(v)
		if lhs.Kind() == reflect.Ptr {
			el := lhs.Elem()
			if !el.IsValid() {
				return errors.New("LHS' element is invalid and may not be casted to the RHS")
			}
			rhs.Elem().Set(el)
		} else {
			rhs.Elem().Set(lhs)
		}
	}
	return
}

func (broker *MessageBroker) DBMethods() *DBMethods {
	return &DBMethods{
		bus:     broker.bus,
		caller:  broker.caller,
		service: DB_SERVICE_NAME,
	}
}

func (broker *MessageBroker) ContractMethods() *ContractMethods {
	return &ContractMethods{
		bus:     broker.bus,
		caller:  broker.caller,
		service: CONTRACT_SERVICE_NAME,
	}
}

func (broker *MessageBroker) CacheMethods() *CacheMethods {
	return &CacheMethods{
		bus:     broker.bus,
		caller:  broker.caller,
		service: CACHE_SERVICE_NAME,
	}
}

func (broker *MessageBroker) EventsMethods() *EventsMethods {
	return &EventsMethods{
		bus:     broker.bus,
		caller:  broker.caller,
		service: EVENTS_SERVICE_NAME,
	}
}

type DBMethods struct {
	bus     eventbus.Bus
	caller  string
	service string
}

func (dm *DBMethods) StoreAdminState(state AdminState) error {
	methodResponse := ServiceMethod(dm.bus, dm.caller, dm.service, "store_admin_state", state)
	return methodResponse.Error
}

func (dm *DBMethods) RetrieveAdminState() (state AdminState, exists bool, err error) {
	methodResponse := ServiceMethod(dm.bus, dm.caller, dm.service, "retrieve_admin_state")
	if methodResponse.Error != nil {
		return state, false, methodResponse.Error
	}
	var data AdminStateLookup
	err = CastOrUnmarshal(methodResponse.Data, &data)
	if err != nil {
		return state, false, err
	}
	return data.State, data.Exists, nil
}

func (dm *DBMethods) StorePrivacyFlag(owner eth.Address, enabled bool) error {
	methodResponse := ServiceMethod(dm.bus, dm.caller, dm.service, "store_privacy_flag", owner, enabled)
	return methodResponse.Error
}

func (dm *DBMethods) RetrievePrivacyFlag(owner eth.Address) (enabled bool, err error) {
	methodResponse := ServiceMethod(dm.bus, dm.caller, dm.service, "retrieve_privacy_flag", owner)
	if methodResponse.Error != nil {
		return false, methodResponse.Error
	}
	err = CastOrUnmarshal(methodResponse.Data, &enabled)
	return enabled, err
}

func (dm *DBMethods) NextEscrowID() (id uint64, err error) {
	methodResponse := ServiceMethod(dm.bus, dm.caller, dm.service, "next_escrow_id")
	if methodResponse.Error != nil {
		return 0, methodResponse.Error
	}
	err = CastOrUnmarshal(methodResponse.Data, &id)
	return id, err
}

func (dm *DBMethods) StoreEscrowRecord(record EscrowRecord) error {
	methodResponse := ServiceMethod(dm.bus, dm.caller, dm.service, "store_escrow_record", record)
	return methodResponse.Error
}

func (dm *DBMethods) RetrieveEscrowRecord(id uint64) (record EscrowRecord, err error) {
	methodResponse := ServiceMethod(dm.bus, dm.caller, dm.service, "retrieve_escrow_record", id)
	if methodResponse.Error != nil {
		return record, methodResponse.Error
	}
	err = CastOrUnmarshal(methodResponse.Data, &record)
	return record, err
}

type ContractMethods struct {
	bus     eventbus.Bus
	caller  string
	service string
}

func (cm *ContractMethods) Initialize(admin eth.Address) error {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "initialize", admin)
	return methodResponse.Error
}

func (cm *ContractMethods) SetPaused(caller eth.Address, paused bool) error {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "set_paused", caller, paused)
	return methodResponse.Error
}

func (cm *ContractMethods) SetAdmin(caller eth.Address, newAdmin eth.Address) error {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "set_admin", caller, newAdmin)
	return methodResponse.Error
}

func (cm *ContractMethods) IsPaused() (paused bool, err error) {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "is_paused")
	if methodResponse.Error != nil {
		return false, methodResponse.Error
	}
	err = CastOrUnmarshal(methodResponse.Data, &paused)
	return paused, err
}

func (cm *ContractMethods) GetAdmin() (admin eth.Address, exists bool, err error) {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "get_admin")
	if methodResponse.Error != nil {
		return admin, false, methodResponse.Error
	}
	var data AdminStateLookup
	err = CastOrUnmarshal(methodResponse.Data, &data)
	if err != nil {
		return admin, false, err
	}
	return data.State.Admin, data.Exists, nil
}

func (cm *ContractMethods) SetPrivacy(owner eth.Address, enabled bool) error {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "set_privacy", owner, enabled)
	return methodResponse.Error
}

func (cm *ContractMethods) GetPrivacy(owner eth.Address) (enabled bool, err error) {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "get_privacy", owner)
	if methodResponse.Error != nil {
		return false, methodResponse.Error
	}
	err = CastOrUnmarshal(methodResponse.Data, &enabled)
	return enabled, err
}

func (cm *ContractMethods) CreateEscrow(from eth.Address, to eth.Address, amount uint64) (id uint64, err error) {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "create_escrow", from, to, amount)
	if methodResponse.Error != nil {
		return 0, methodResponse.Error
	}
	err = CastOrUnmarshal(methodResponse.Data, &id)
	return id, err
}

type CacheMethods struct {
	bus     eventbus.Bus
	caller  string
	service string
}

func (cm *CacheMethods) SignerSigExists(signature string) (exists bool, err error) {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "signer_sig_exists", signature)
	if methodResponse.Error != nil {
		return false, methodResponse.Error
	}
	err = CastOrUnmarshal(methodResponse.Data, &exists)
	return exists, err
}

func (cm *CacheMethods) RecordSignerSig(signature string) error {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "record_signer_sig", signature)
	return methodResponse.Error
}

func (cm *CacheMethods) CachePrivacyFlag(owner eth.Address, enabled bool) error {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "cache_privacy_flag", owner, enabled)
	return methodResponse.Error
}

func (cm *CacheMethods) CachedPrivacyFlag(owner eth.Address) (enabled bool, found bool, err error) {
	methodResponse := ServiceMethod(cm.bus, cm.caller, cm.service, "cached_privacy_flag", owner)
	if methodResponse.Error != nil {
		return false, false, methodResponse.Error
	}
	var data PrivacyFlagLookup
	err = CastOrUnmarshal(methodResponse.Data, &data)
	if err != nil {
		return false, false, err
	}
	return data.Enabled, data.Found, nil
}

type EventsMethods struct {
	bus     eventbus.Bus
	caller  string
	service string
}

// The Emit* methods are fire-and-forget: a failing emitter must never fail
// the state transition that triggered it, so errors are logged and dropped.

func (em *EventsMethods) EmitPrivacyToggled(event PrivacyToggledEvent) {
	methodResponse := ServiceMethod(em.bus, em.caller, em.service, "emit_privacy_toggled", event)
	if methodResponse.Error != nil {
		log.WithError(methodResponse.Error).Error("could not emit PrivacyToggled event")
	}
}

func (em *EventsMethods) EmitContractPaused(event ContractPausedEvent) {
	methodResponse := ServiceMethod(em.bus, em.caller, em.service, "emit_contract_paused", event)
	if methodResponse.Error != nil {
		log.WithError(methodResponse.Error).Error("could not emit ContractPaused event")
	}
}

func (em *EventsMethods) EmitAdminChanged(event AdminChangedEvent) {
	methodResponse := ServiceMethod(em.bus, em.caller, em.service, "emit_admin_changed", event)
	if methodResponse.Error != nil {
		log.WithError(methodResponse.Error).Error("could not emit AdminChanged event")
	}
}

func (em *EventsMethods) RetrieveByAccount(account eth.Address) (records []EventRecord, err error) {
	methodResponse := ServiceMethod(em.bus, em.caller, em.service, "retrieve_by_account", account)
	if methodResponse.Error != nil {
		return nil, methodResponse.Error
	}
	err = CastOrUnmarshal(methodResponse.Data, &records)
	return records, err
}
