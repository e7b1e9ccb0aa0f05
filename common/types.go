package common

import (
	eth "github.com/ethereum/go-ethereum/common"
	"github.com/torusresearch/bijson"
)

// AdminState is the singleton administrative record of the contract. It
// either exists with exactly one administrator or does not exist at all
// (pre-initialization); no operation may create a second instance.
type AdminState struct {
	Admin  eth.Address `json:"admin"`
	Paused bool        `json:"paused"`
}

// AdminStateLookup carries an AdminState together with its existence flag
// across the service bus.
type AdminStateLookup struct {
	State  AdminState `json:"state"`
	Exists bool       `json:"exists"`
}

// PrivacyFlagLookup carries a cached privacy flag together with its
// presence flag across the service bus.
type PrivacyFlagLookup struct {
	Enabled bool `json:"enabled"`
	Found   bool `json:"found"`
}

// EscrowRecord is the two-party placeholder record stored by CreateEscrow.
// There is no release/claim/dispute flow attached to it.
type EscrowRecord struct {
	ID   uint64      `json:"id"`
	From eth.Address `json:"from"`
	To   eth.Address `json:"to"`
}

// Event kinds published on successful state transitions.
const (
	PrivacyToggledKind = "PrivacyToggled"
	ContractPausedKind = "ContractPaused"
	AdminChangedKind   = "AdminChanged"
)

type PrivacyToggledEvent struct {
	Owner     eth.Address `json:"owner"`
	Enabled   bool        `json:"enabled"`
	Timestamp int64       `json:"timestamp"`
}

type ContractPausedEvent struct {
	Paused    bool  `json:"paused"`
	Timestamp int64 `json:"timestamp"`
}

type AdminChangedEvent struct {
	OldAdmin  eth.Address `json:"old_admin"`
	NewAdmin  eth.Address `json:"new_admin"`
	Timestamp int64       `json:"timestamp"`
}

// EventRecord is one entry of the append-only notification log kept by the
// events service.
type EventRecord struct {
	Sequence uint64            `json:"sequence"`
	Kind     string            `json:"kind"`
	Payload  bijson.RawMessage `json:"payload"`
}
