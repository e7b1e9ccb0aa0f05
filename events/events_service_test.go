package events

import (
	"testing"
	"time"

	eth "github.com/ethereum/go-ethereum/common"
	"github.com/torusresearch/bijson"

	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/config"
	"github.com/quickex-network/xraynode/eventbus"
)

var (
	alice = eth.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = eth.HexToAddress("0x2222222222222222222222222222222222222222")
)

func newTestEventsService(t *testing.T) (*EventsService, eventbus.Bus) {
	t.Helper()
	config.GlobalConfig = &config.Config{BasePath: t.TempDir()}
	bus := eventbus.New()
	service := New(bus)
	if err := service.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = service.Stop() })
	return service, bus
}

func TestAppendAssignsSequence(t *testing.T) {
	service, _ := newTestEventsService(t)

	events := []common.PrivacyToggledEvent{
		{Owner: alice, Enabled: true, Timestamp: 1700000000},
		{Owner: alice, Enabled: false, Timestamp: 1700000001},
	}
	for _, event := range events {
		if _, err := service.Call("emit_privacy_toggled", event); err != nil {
			t.Fatal(err)
		}
	}

	result, err := service.Call("retrieve_by_account", alice)
	if err != nil {
		t.Fatal(err)
	}
	records := result.([]common.EventRecord)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Sequence != 1 || records[1].Sequence != 2 {
		t.Fatalf("sequences should count from 1, got %d and %d", records[0].Sequence, records[1].Sequence)
	}
	for i, record := range records {
		if record.Kind != common.PrivacyToggledKind {
			t.Fatalf("record kind mismatch: %s", record.Kind)
		}
		var payload common.PrivacyToggledEvent
		if err := bijson.Unmarshal(record.Payload, &payload); err != nil {
			t.Fatal(err)
		}
		if payload != events[i] {
			t.Fatalf("payload mismatch: %+v", payload)
		}
	}
}

func TestAdminChangedIndexesBothAccounts(t *testing.T) {
	service, _ := newTestEventsService(t)

	event := common.AdminChangedEvent{OldAdmin: alice, NewAdmin: bob, Timestamp: 1700000000}
	if _, err := service.Call("emit_admin_changed", event); err != nil {
		t.Fatal(err)
	}

	for _, account := range []eth.Address{alice, bob} {
		result, err := service.Call("retrieve_by_account", account)
		if err != nil {
			t.Fatal(err)
		}
		records := result.([]common.EventRecord)
		if len(records) != 1 {
			t.Fatalf("expected 1 record for %v, got %d", account, len(records))
		}
		if records[0].Kind != common.AdminChangedKind {
			t.Fatalf("record kind mismatch: %s", records[0].Kind)
		}
	}
}

func TestContractPausedIsNotAccountIndexed(t *testing.T) {
	service, _ := newTestEventsService(t)

	if _, err := service.Call("emit_contract_paused", common.ContractPausedEvent{Paused: true, Timestamp: 1700000000}); err != nil {
		t.Fatal(err)
	}

	result, err := service.Call("retrieve_by_account", alice)
	if err != nil {
		t.Fatal(err)
	}
	if records := result.([]common.EventRecord); len(records) != 0 {
		t.Fatalf("pause events carry no account, got %d records", len(records))
	}
}

func TestAppendRepublishesOnBus(t *testing.T) {
	service, bus := newTestEventsService(t)

	received := make(chan common.EventRecord, 1)
	err := bus.SubscribeOnceAsync(NotificationTopic, func(data interface{}) {
		if record, ok := data.(common.EventRecord); ok {
			received <- record
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := service.Call("emit_privacy_toggled", common.PrivacyToggledEvent{Owner: alice, Enabled: true, Timestamp: 1700000000}); err != nil {
		t.Fatal(err)
	}

	select {
	case record := <-received:
		if record.Kind != common.PrivacyToggledKind || record.Sequence != 1 {
			t.Fatalf("republished record mismatch: %+v", record)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected record republished on the bus")
	}
}
