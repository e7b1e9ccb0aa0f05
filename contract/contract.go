// Package contract holds the ledger-state core: the admin/pause state
// machine, the per-account privacy registry and the escrow placeholder.
// Persistence and event delivery are injected, so the core only compares
// already-authenticated identities against stored state and never talks to
// a backend directly.
package contract

import (
	"time"

	eth "github.com/ethereum/go-ethereum/common"

	"github.com/quickex-network/xraynode/common"
)

// Store is the persisted state the contract mutates. Absence of an
// AdminState means the contract is uninitialized; absence of a privacy flag
// entry is equivalent to enabled=false.
type Store interface {
	RetrieveAdminState() (common.AdminState, bool, error)
	StoreAdminState(state common.AdminState) error
	RetrievePrivacyFlag(owner eth.Address) (bool, error)
	StorePrivacyFlag(owner eth.Address, enabled bool) error
	NextEscrowID() (uint64, error)
	StoreEscrowRecord(record common.EscrowRecord) error
	RetrieveEscrowRecord(id uint64) (common.EscrowRecord, error)
}

// Emitter receives domain events on successful state transitions. Emission
// is fire-and-forget: implementations must not fail the triggering
// operation.
type Emitter interface {
	PrivacyToggled(event common.PrivacyToggledEvent)
	ContractPaused(event common.ContractPausedEvent)
	AdminChanged(event common.AdminChangedEvent)
}

type Contract struct {
	store   Store
	events  Emitter
	TimeNow func() time.Time
}

func NewContract(store Store, events Emitter) *Contract {
	return &Contract{
		store:   store,
		events:  events,
		TimeNow: time.Now,
	}
}

// Initialize creates the singleton admin record with paused=false. It is the
// one-time bootstrap: the caller identity is not validated against anything,
// since no administrator exists yet. Fails with ErrAlreadyInitialized if the
// record already exists, regardless of who asks.
func (c *Contract) Initialize(admin eth.Address) error {
	_, exists, err := c.store.RetrieveAdminState()
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInitialized
	}
	return c.store.StoreAdminState(common.AdminState{Admin: admin, Paused: false})
}

// SetPaused flips the emergency switch. The caller must be the current
// administrator; authorization is re-checked on every call rather than
// cached. Setting the same value twice is legal and re-emits the event.
func (c *Contract) SetPaused(caller eth.Address, paused bool) error {
	state, err := c.requireAdmin(caller)
	if err != nil {
		return err
	}
	state.Paused = paused
	if err := c.store.StoreAdminState(state); err != nil {
		return err
	}
	c.events.ContractPaused(common.ContractPausedEvent{
		Paused:    paused,
		Timestamp: c.TimeNow().Unix(),
	})
	return nil
}

// SetAdmin transfers administrative rights. On success the former
// administrator immediately loses all capability; there is no overlap.
func (c *Contract) SetAdmin(caller eth.Address, newAdmin eth.Address) error {
	state, err := c.requireAdmin(caller)
	if err != nil {
		return err
	}
	oldAdmin := state.Admin
	state.Admin = newAdmin
	if err := c.store.StoreAdminState(state); err != nil {
		return err
	}
	c.events.AdminChanged(common.AdminChangedEvent{
		OldAdmin:  oldAdmin,
		NewAdmin:  newAdmin,
		Timestamp: c.TimeNow().Unix(),
	})
	return nil
}

func (c *Contract) IsPaused() (bool, error) {
	state, exists, err := c.store.RetrieveAdminState()
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	return state.Paused, nil
}

func (c *Contract) GetAdmin() (admin eth.Address, exists bool, err error) {
	state, exists, err := c.store.RetrieveAdminState()
	if err != nil {
		return admin, false, err
	}
	if !exists {
		return admin, false, nil
	}
	return state.Admin, true, nil
}

// requireAdmin loads the singleton and checks the caller against it. All
// checks happen before any write, so a failing privileged operation leaves
// persisted state untouched.
func (c *Contract) requireAdmin(caller eth.Address) (common.AdminState, error) {
	state, exists, err := c.store.RetrieveAdminState()
	if err != nil {
		return state, err
	}
	if !exists {
		return state, ErrNotInitialized
	}
	if caller != state.Admin {
		return state, ErrUnauthorized
	}
	return state, nil
}
