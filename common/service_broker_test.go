package common

import (
	"errors"
	"testing"

	eth "github.com/ethereum/go-ethereum/common"
	"github.com/torusresearch/bijson"

	"github.com/quickex-network/xraynode/eventbus"
)

type echoService struct {
	running bool
}

func (*echoService) ID() string        { return "echo" }
func (s *echoService) Start() error    { s.running = true; return nil }
func (s *echoService) Stop() error     { s.running = false; return nil }
func (s *echoService) IsRunning() bool { return s.running }

func (s *echoService) Call(method string, args ...interface{}) (interface{}, error) {
	switch method {
	case "echo":
		return args[0], nil
	case "fail":
		return nil, errors.New("expected failure")
	case "boom":
		panic("service panic")
	}
	return nil, errors.New("method not found")
}

func newTestRegistry(t *testing.T) eventbus.Bus {
	t.Helper()
	bus := eventbus.New()
	registry := NewServiceRegistry(bus)
	registry.SetupMethodRouting()
	service := &echoService{}
	if err := registry.RegisterService(service); err != nil {
		t.Fatal(err)
	}
	if err := service.Start(); err != nil {
		t.Fatal(err)
	}
	return bus
}

func TestServiceMethodRoundTrip(t *testing.T) {
	bus := newTestRegistry(t)

	response := ServiceMethod(bus, "test", "echo", "echo", "hello")
	if response.Error != nil {
		t.Fatal(response.Error)
	}
	var got string
	if err := CastOrUnmarshal(response.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
}

func TestServiceMethodPropagatesErrors(t *testing.T) {
	bus := newTestRegistry(t)

	response := ServiceMethod(bus, "test", "echo", "fail")
	if response.Error == nil || response.Error.Error() != "expected failure" {
		t.Fatalf("expected service error, got %v", response.Error)
	}
}

func TestServiceMethodRecoversFromPanic(t *testing.T) {
	bus := newTestRegistry(t)

	response := ServiceMethod(bus, "test", "echo", "boom")
	if response.Error == nil {
		t.Fatal("panicking service should surface an error, not crash")
	}
}

func TestCastOrUnmarshalCasts(t *testing.T) {
	addr := eth.HexToAddress("0x1111111111111111111111111111111111111111")

	var got eth.Address
	if err := CastOrUnmarshal(addr, &got); err != nil {
		t.Fatal(err)
	}
	if got != addr {
		t.Fatal("in-process value should cast through unchanged")
	}
}

func TestCastOrUnmarshalUnmarshals(t *testing.T) {
	addr := eth.HexToAddress("0x1111111111111111111111111111111111111111")
	data, err := bijson.Marshal(addr)
	if err != nil {
		t.Fatal(err)
	}

	var got eth.Address
	if err := CastOrUnmarshal(EventBusBytes(data), &got); err != nil {
		t.Fatal(err)
	}
	if got != addr {
		t.Fatal("serialized value should unmarshal")
	}
}

func TestCastOrUnmarshalTypeMismatch(t *testing.T) {
	var got int
	if err := CastOrUnmarshal("not an int", &got, true); err == nil {
		t.Fatal("mismatched types should report an error")
	}
}
