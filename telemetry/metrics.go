package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type privacyToggleCounter struct {
	privacyToggles prometheus.Counter
}
type adminOpsCounter struct {
	pauseChanges   prometheus.Counter
	adminTransfers prometheus.Counter
}
type commitmentCounter struct {
	created  prometheus.Counter
	verified prometheus.Counter
}
type escrowCounter struct {
	escrowsCreated prometheus.Counter
}

func NewPrivacyToggleCounter() *privacyToggleCounter {
	m := &privacyToggleCounter{
		privacyToggles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "privacy_toggles",
			Help: "Privacy flag writes accepted",
		}),
	}
	_ = prometheus.Register(m.privacyToggles)
	return m
}

func NewAdminOpsCounter() *adminOpsCounter {
	m := &adminOpsCounter{
		pauseChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pause_changes",
			Help: "Pause switch writes accepted",
		}),
		adminTransfers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "admin_transfers",
			Help: "Administrator transfers accepted",
		}),
	}
	_ = prometheus.Register(m.pauseChanges)
	_ = prometheus.Register(m.adminTransfers)
	return m
}

func NewCommitmentCounter() *commitmentCounter {
	m := &commitmentCounter{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commitments_created",
			Help: "Amount commitments created",
		}),
		verified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commitments_verified",
			Help: "Amount commitment verifications served",
		}),
	}
	_ = prometheus.Register(m.created)
	_ = prometheus.Register(m.verified)
	return m
}

func NewEscrowCounter() *escrowCounter {
	m := &escrowCounter{
		escrowsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escrows_created",
			Help: "Escrow placeholder records created",
		}),
	}
	_ = prometheus.Register(m.escrowsCreated)
	return m
}
