package events

import (
	"sync"

	"github.com/quickex-network/xraynode/common"
)

// Recorder is an in-memory emitter that keeps every notification in
// emission order. It backs the contract tests so the core stays testable
// without an observability backend.
type Recorder struct {
	mu            sync.Mutex
	PrivacyEvents []common.PrivacyToggledEvent
	PausedEvents  []common.ContractPausedEvent
	AdminEvents   []common.AdminChangedEvent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) PrivacyToggled(event common.PrivacyToggledEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PrivacyEvents = append(r.PrivacyEvents, event)
}

func (r *Recorder) ContractPaused(event common.ContractPausedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PausedEvents = append(r.PausedEvents, event)
}

func (r *Recorder) AdminChanged(event common.AdminChangedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AdminEvents = append(r.AdminEvents, event)
}
