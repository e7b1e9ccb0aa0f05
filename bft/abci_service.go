package bft

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tendermint/tendermint/abci/server"
	tmlog "github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"

	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/config"
	"github.com/quickex-network/xraynode/eventbus"
)

type ABCIService struct {
	bus          eventbus.Bus
	ABCI         *ABCI
	broker       *common.MessageBroker
	socketServer service.Service
}

// must remove old socket file
func cleanupSockFile(p string) {
	sockFile := strings.Split(p, "//")[1]
	if common.DoesFileExist(sockFile) {
		_ = os.Remove(sockFile)
	}
}

func NewABCI(bus eventbus.Bus) *ABCIService {
	abciService := ABCIService{
		bus:    bus,
		broker: common.NewServiceBroker(bus, common.ABCI_SERVICE_NAME),
	}
	return &abciService
}

func (s *ABCIService) ID() string {
	return common.ABCI_SERVICE_NAME
}

func (s *ABCIService) Start() error {
	s.ABCI = s.ABCI.NewABCI(s.broker)
	socketAddr := config.GlobalConfig.AbciListenAddress
	cleanupSockFile(socketAddr)
	s.socketServer = server.NewSocketServer(socketAddr, s.ABCI)
	logger := tmlog.NewTMLogger(tmlog.NewSyncWriter(os.Stdout))

	s.socketServer.SetLogger(logger.With("module", "abci-service"))
	log.Info("Starting ABCI server")

	if err := s.socketServer.Start(); err != nil {
		log.WithError(err).Error("ABCI.SocketServer.Start()")
		return err
	}
	return nil
}

func (service *ABCIService) IsRunning() bool {
	return service.ABCI != nil
}

func (service *ABCIService) Stop() error {
	if service.socketServer == nil {
		return nil
	}
	return service.socketServer.Stop()
}

func (a *ABCIService) Call(method string, args ...interface{}) (interface{}, error) {

	switch method {
	case "app_height":
		return a.ABCI.info.Height, nil
	case "app_hash":
		return a.ABCI.info.AppHash, nil
	case "tx_count":
		return a.ABCI.state.TxCount, nil
	}

	return nil, fmt.Errorf("ABCI service method %v not found", method)
}
