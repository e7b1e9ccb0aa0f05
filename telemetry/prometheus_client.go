package telemetry

import (
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var privacyToggles *privacyToggleCounter
var adminOps *adminOpsCounter
var commitments *commitmentCounter
var escrows *escrowCounter

var setupOnce sync.Once

func setupCounters() {
	setupOnce.Do(func() {
		privacyToggles = NewPrivacyToggleCounter()
		adminOps = NewAdminOpsCounter()
		commitments = NewCommitmentCounter()
		escrows = NewEscrowCounter()
	})
}

func IncrementPrivacyToggled() {
	setupCounters()
	privacyToggles.privacyToggles.Inc()
}

func IncrementPauseChanged() {
	setupCounters()
	adminOps.pauseChanges.Inc()
}

func IncrementAdminTransferred() {
	setupCounters()
	adminOps.adminTransfers.Inc()
}

func IncrementCommitmentCreated() {
	setupCounters()
	commitments.created.Inc()
}

func IncrementCommitmentVerified() {
	setupCounters()
	commitments.verified.Inc()
}

func IncrementEscrowCreated() {
	setupCounters()
	escrows.escrowsCreated.Inc()
}

func StartClient(port string) {
	setupCounters()

	http.Handle("/metrics", promhttp.Handler())
	log.Fatalln(http.ListenAndServe(":"+port, nil))
}
