package node

import (
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/quickex-network/xraynode/bft"
	"github.com/quickex-network/xraynode/cache"
	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/config"
	"github.com/quickex-network/xraynode/contract"
	"github.com/quickex-network/xraynode/db"
	"github.com/quickex-network/xraynode/eventbus"
	"github.com/quickex-network/xraynode/events"
	"github.com/quickex-network/xraynode/server"
)

func Start(conf *config.Config) {

	config.GlobalConfig = conf

	log.SetLevel(log.InfoLevel)
	bus := eventbus.New()

	serviceRegistry := common.NewServiceRegistry(bus)
	serviceRegistry.SetupMethodRouting()

	services := []common.IService{
		db.New(),
		cache.New(),
		events.New(bus),
		contract.New(bus),
		bft.NewABCI(bus),
		server.New(bus),
	}

	for _, s := range services {
		err := serviceRegistry.RegisterService(s)
		if err != nil {
			log.Fatalf("Error while registering service=%s, err=%s", s.ID(), err)
		}
	}

	err := serviceRegistry.StartAll()
	if err != nil {
		log.Fatalf("Error while starting all services: err=%s", err)
	}

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			debug.FreeOSMemory()
		}
	}()

	stopOnInterrupt(serviceRegistry)
}

func stopOnInterrupt(serviceRegistry *common.ServiceRegistry) {
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	osSig := <-osSignal
	log.Println("Termination started, signal: " + osSig.String())
	err := serviceRegistry.StopAll()
	if err != nil {
		log.Fatalf("Error while stopping all services: err=%s", err)
	}
}
