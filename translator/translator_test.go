package translator_test

import (
	"context"
	"testing"
	"time"

	"github.com/cr1901/AT2XT/keyfsm"
	"github.com/cr1901/AT2XT/simkbd"
	"github.com/cr1901/AT2XT/translator"
)

// newRunningTranslator wires a fresh simkbd.Rig to a Translator and starts
// it, along with the fake Host's receive loop and a goroutine that answers
// every host-to-device write (boot RESET, and later SET_LEDS) the
// translator issues.
func newRunningTranslator(t *testing.T) (*simkbd.Rig, context.CancelFunc) {
	t.Helper()
	rig := simkbd.NewRig()
	ctx, cancel := context.WithCancel(context.Background())

	go rig.Host.Run(ctx)
	go serveKeyboardWrites(ctx, rig)

	tr, err := translator.New(rig.Bus)
	if err != nil {
		cancel()
		t.Fatalf("New: %v", err)
	}
	go func() {
		_ = tr.Run(ctx)
	}()

	return rig, cancel
}

func serveKeyboardWrites(ctx context.Context, rig *simkbd.Rig) {
	for {
		if _, err := rig.Keyboard.ServeHostWrite(ctx); err != nil {
			return
		}
	}
}

func waitForBytes(t *testing.T, rig *simkbd.Rig, n int, timeout time.Duration) []byte {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if got := rig.Host.Received(); len(got) >= n {
			return got
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d host byte(s), got %v", n, rig.Host.Received())
	return nil
}

func TestSimpleKeyPressAndRelease(t *testing.T) {
	rig, cancel := newRunningTranslator(t)
	defer cancel()

	if err := rig.Keyboard.SendKey(context.Background(), 0x1c); err != nil { // 'A' make
		t.Fatalf("SendKey(make): %v", err)
	}
	got := waitForBytes(t, rig, 1, 2*time.Second)
	if got[0] != 0x1e {
		t.Fatalf("xt byte = %#02x, want 0x1e", got[0])
	}

	if err := rig.Keyboard.SendKey(context.Background(), keyfsm.Break); err != nil {
		t.Fatalf("SendKey(break prefix): %v", err)
	}
	if err := rig.Keyboard.SendKey(context.Background(), 0x1c); err != nil {
		t.Fatalf("SendKey(break code): %v", err)
	}
	got = waitForBytes(t, rig, 2, 2*time.Second)
	if got[1] != 0x9e {
		t.Fatalf("xt break byte = %#02x, want 0x9e", got[1])
	}
}

func TestCapsLockTogglesLed(t *testing.T) {
	rig, cancel := newRunningTranslator(t)
	defer cancel()

	send := func(b byte) {
		t.Helper()
		if err := rig.Keyboard.SendKey(context.Background(), b); err != nil {
			t.Fatalf("SendKey(%#02x): %v", b, err)
		}
	}

	send(0x58) // Caps Lock make
	send(keyfsm.Break)
	send(0x58) // Caps Lock break code

	got := waitForBytes(t, rig, 2, 2*time.Second)
	if got[0] != 0x3a {
		t.Fatalf("first xt byte = %#02x, want 0x3a", got[0])
	}
	if got[1] != 0xba {
		t.Fatalf("second xt byte = %#02x, want 0xba", got[1])
	}
}

func TestHostResetRequestResetsKeyboard(t *testing.T) {
	rig, cancel := newRunningTranslator(t)
	defer cancel()

	rig.Host.RequestReset()
	got := waitForBytes(t, rig, 1, 2*time.Second)
	if got[0] != keyfsm.SelfTestPassed {
		t.Fatalf("xt byte after reset = %#02x, want %#02x", got[0], keyfsm.SelfTestPassed)
	}
}
