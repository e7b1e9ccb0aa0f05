package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/config"
	"github.com/quickex-network/xraynode/eventbus"
	"github.com/quickex-network/xraynode/server/rpc"
)

type ServerService struct {
	bus    eventbus.Bus
	server *http.Server
	broker *common.MessageBroker
}

func New(bus eventbus.Bus) *ServerService {
	return &ServerService{
		bus:    bus,
		broker: common.NewServiceBroker(bus, common.SERVER_SERVICE_NAME),
	}
}

func (s *ServerService) ID() string {
	return common.SERVER_SERVICE_NAME
}

func (s *ServerService) Start() error {
	addr := fmt.Sprintf(":%s", config.GlobalConfig.HttpServerPort)
	s.server = createServer(s.bus, addr)
	go startServer(s.server)

	return nil
}

func startServer(server *http.Server) {
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal()
	}
}

func createServer(bus eventbus.Bus, addr string) *http.Server {
	router := setUpRouter(bus)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server
}

func (s *ServerService) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(context.Background())
}

func (service *ServerService) IsRunning() bool {
	return service.server != nil
}

func (service *ServerService) Call(method string, args ...interface{}) (interface{}, error) {
	return nil, fmt.Errorf("server service method %v not found", method)
}

func setUpRouter(eventBus eventbus.Bus) http.Handler {
	mr, err := rpc.SetUpJRPCHandler(eventBus)
	if err != nil {
		log.WithError(err).Fatal()
	}

	router := mux.NewRouter().StrictSlash(true)

	router.Handle("/rpc", mr)

	router.Use(parseBodyMiddleware)
	router.Use(loggingMiddleware)

	handler := cors.Default().Handler(router)
	return handler
}
