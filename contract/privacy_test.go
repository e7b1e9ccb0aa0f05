package contract

import (
	"testing"
)

func TestPrivacyDefaultsToDisabled(t *testing.T) {
	c, _, _ := newTestContract()

	enabled, err := c.GetPrivacy(alice)
	if err != nil {
		t.Fatal(err)
	}
	if enabled {
		t.Fatal("account without an entry should read as disabled")
	}
}

func TestSetPrivacyWithoutInitialize(t *testing.T) {
	// the registry is independent of the admin machine: writes succeed even
	// before initialization
	c, _, recorder := newTestContract()

	if err := c.SetPrivacy(alice, true); err != nil {
		t.Fatal(err)
	}
	enabled, err := c.GetPrivacy(alice)
	if err != nil {
		t.Fatal(err)
	}
	if !enabled {
		t.Fatal("privacy flag should be enabled after write")
	}
	if len(recorder.PrivacyEvents) != 1 {
		t.Fatalf("expected 1 PrivacyToggled event, got %d", len(recorder.PrivacyEvents))
	}
}

func TestSetPrivacyToggleAndReEmit(t *testing.T) {
	c, _, recorder := newTestContract()

	if err := c.SetPrivacy(alice, true); err != nil {
		t.Fatal(err)
	}
	if err := c.SetPrivacy(alice, false); err != nil {
		t.Fatal(err)
	}
	// overwriting with the same value is legal and emits again
	if err := c.SetPrivacy(alice, false); err != nil {
		t.Fatal(err)
	}

	enabled, _ := c.GetPrivacy(alice)
	if enabled {
		t.Fatal("privacy flag should be disabled after toggle back")
	}
	if len(recorder.PrivacyEvents) != 3 {
		t.Fatalf("expected 3 PrivacyToggled events, got %d", len(recorder.PrivacyEvents))
	}
	last := recorder.PrivacyEvents[2]
	if last.Owner != alice || last.Enabled {
		t.Fatalf("PrivacyToggled payload mismatch: %+v", last)
	}
}

func TestPrivacyFlagsAreIndependent(t *testing.T) {
	c, _, _ := newTestContract()

	if err := c.SetPrivacy(alice, true); err != nil {
		t.Fatal(err)
	}
	enabledBob, err := c.GetPrivacy(bob)
	if err != nil {
		t.Fatal(err)
	}
	if enabledBob {
		t.Fatal("writing one account must not affect another")
	}
}
