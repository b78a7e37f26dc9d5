package keyfsm_test

import (
	"testing"

	"github.com/cr1901/AT2XT/keyfsm"
)

func TestToXTBoundaries(t *testing.T) {
	if got := keyfsm.ToXT(0x00); got != 0x00 {
		t.Fatalf("ToXT(0x00) = %#02x, want 0x00", got)
	}
	if got := keyfsm.ToXT(0x1c); got != 0x1e { // 'A' key
		t.Fatalf("ToXT(0x1c) = %#02x, want 0x1e", got)
	}
	if got := keyfsm.ToXT(0x83); got != 0x41 { // last table entry
		t.Fatalf("ToXT(0x83) = %#02x, want 0x41", got)
	}
	if got := keyfsm.ToXT(0x84); got != 0x00 {
		t.Fatalf("ToXT(0x84) (out of range) = %#02x, want 0x00", got)
	}
}

func TestSimpleKeyPressReleaseSequence(t *testing.T) {
	f := keyfsm.New()

	cmd, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: 0x1c})
	if err != nil {
		t.Fatalf("Run(GrabbedKey): %v", err)
	}
	sk, ok := cmd.(keyfsm.CmdSendXTKey)
	if !ok || sk.Byte != 0x1e {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{0x1e}", cmd)
	}

	cmd, err = f.Run(keyfsm.ReplySentKey{Byte: sk.Byte})
	if err != nil {
		t.Fatalf("Run(SentKey): %v", err)
	}
	if _, ok := cmd.(keyfsm.CmdWaitForKey); !ok {
		t.Fatalf("cmd = %#v, want CmdWaitForKey", cmd)
	}
}

func TestBreakCodeSetsHighBit(t *testing.T) {
	f := keyfsm.New()

	if _, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: keyfsm.Break}); err != nil {
		t.Fatalf("Run(Break): %v", err)
	}
	cmd, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: 0x1c})
	if err != nil {
		t.Fatalf("Run(GrabbedKey after Break): %v", err)
	}
	sk, ok := cmd.(keyfsm.CmdSendXTKey)
	if !ok || sk.Byte != 0x9e {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{0x9e}", cmd)
	}
}

// TestExtendedPrefixPassesThroughUnmodified traces Scenario C: 0xE0, 0x4A
// (keypad '/') must emit 0xE0 then the raw 0x4A, not LUT[0x4A] (0x35).
func TestExtendedPrefixPassesThroughUnmodified(t *testing.T) {
	f := keyfsm.New()
	cmd, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: keyfsm.PrefixExtended})
	if err != nil {
		t.Fatalf("Run(prefix): %v", err)
	}
	uk, ok := cmd.(keyfsm.CmdSendXTKey)
	if !ok || uk.Byte != keyfsm.PrefixExtended {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{0xe0}", cmd)
	}

	if _, err := f.Run(keyfsm.ReplySentKey{Byte: uk.Byte}); err != nil {
		t.Fatalf("Run(SentKey): %v", err)
	}

	cmd, err = f.Run(keyfsm.ReplyGrabbedKey{Byte: 0x4a})
	if err != nil {
		t.Fatalf("Run(GrabbedKey after prefix): %v", err)
	}
	sk, ok := cmd.(keyfsm.CmdSendXTKey)
	if !ok || sk.Byte != 0x4a {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{0x4a} (raw, not LUT-translated)", cmd)
	}

	if _, err := f.Run(keyfsm.ReplySentKey{Byte: sk.Byte}); err != nil {
		t.Fatalf("Run(SentKey): %v", err)
	}
	cmd, err = f.Run(keyfsm.ReplyGrabbedKey{Byte: 0x1c})
	if err != nil {
		t.Fatalf("Run(GrabbedKey after extended sequence): %v", err)
	}
	if sk, ok := cmd.(keyfsm.CmdSendXTKey); !ok || sk.Byte != 0x1e {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{0x1e} (back to ordinary LUT translation)", cmd)
	}
}

// TestExtendedBreakStillUsesKnownBreakCode pins down the documented
// ambiguity (DESIGN.md Open Question #3): a release inside an extended
// sequence (0xE0, 0xF0, k) still goes through the ordinary KnownBreakCode
// path (LUT[k] | 0x80), rather than passing k through raw.
func TestExtendedBreakStillUsesKnownBreakCode(t *testing.T) {
	f := keyfsm.New()
	if _, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: keyfsm.PrefixExtended}); err != nil {
		t.Fatalf("Run(prefix): %v", err)
	}
	if _, err := f.Run(keyfsm.ReplySentKey{Byte: keyfsm.PrefixExtended}); err != nil {
		t.Fatalf("Run(SentKey): %v", err)
	}
	if _, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: keyfsm.Break}); err != nil {
		t.Fatalf("Run(Break): %v", err)
	}
	cmd, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: 0x1c})
	if err != nil {
		t.Fatalf("Run(break code): %v", err)
	}
	sk, ok := cmd.(keyfsm.CmdSendXTKey)
	if !ok || sk.Byte != 0x9e {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{0x9e}", cmd)
	}
}

// TestPauseSequenceSuppressesNumLockToggle traces Scenario E: neither 0x77
// occurrence inside the 0xE1, 0x14, 0x77, 0xE1, 0xF0, 0x14, 0xF0, 0x77
// sequence may toggle Num Lock.
func TestPauseSequenceSuppressesNumLockToggle(t *testing.T) {
	f := keyfsm.New()

	run := func(reply keyfsm.ProcReply) keyfsm.Cmd {
		t.Helper()
		cmd, err := f.Run(reply)
		if err != nil {
			t.Fatalf("Run(%#v): %v", reply, err)
		}
		return cmd
	}
	grab := func(b byte) keyfsm.Cmd { return run(keyfsm.ReplyGrabbedKey{Byte: b}) }
	sendXT := func(cmd keyfsm.Cmd) byte {
		t.Helper()
		sk, ok := cmd.(keyfsm.CmdSendXTKey)
		if !ok {
			t.Fatalf("cmd = %#v, want CmdSendXTKey", cmd)
		}
		run(keyfsm.ReplySentKey{Byte: sk.Byte})
		return sk.Byte
	}

	sendXT(grab(keyfsm.PrefixPause)) // 0xE1
	sendXT(grab(0x14))               // raw pass-through payload
	sendXT(grab(0x77))               // ordinary make, not after a break

	sendXT(grab(keyfsm.PrefixPause)) // second 0xE1
	grab(keyfsm.Break)               // 0xF0, routed to PossibleBreakCode

	cmd := grab(0x14)
	if sk, ok := cmd.(keyfsm.CmdSendXTKey); !ok || sk.Byte != keyfsm.ToXT(0x14)|0x80 {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{%#02x}", cmd, keyfsm.ToXT(0x14)|0x80)
	}
	sendXT(cmd)

	grab(keyfsm.Break) // second 0xF0

	cmd = grab(0x77)
	if _, ok := cmd.(keyfsm.CmdToggleLed); ok {
		t.Fatalf("cmd = %#v, Num Lock must not toggle inside a pause sequence", cmd)
	}
	sk, ok := cmd.(keyfsm.CmdSendXTKey)
	if !ok || sk.Byte != keyfsm.ToXT(0x77)|0x80 {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{%#02x}", cmd, keyfsm.ToXT(0x77)|0x80)
	}
}

// TestCapsLockTogglesLedThenSendsBreakCode traces the same Caps Lock
// press+release sequence the translator's scenario tests drive through
// simkbd, but directly against the FSM.
func TestCapsLockTogglesLedThenSendsBreakCode(t *testing.T) {
	f := keyfsm.New()
	const capsCode = 0x58

	cmd, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: capsCode})
	if err != nil {
		t.Fatalf("Run(make): %v", err)
	}
	if sk, ok := cmd.(keyfsm.CmdSendXTKey); !ok || sk.Byte != 0x3a {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{0x3a}", cmd)
	}
	if _, err := f.Run(keyfsm.ReplySentKey{Byte: 0x3a}); err != nil {
		t.Fatalf("Run(SentKey): %v", err)
	}

	if _, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: keyfsm.Break}); err != nil {
		t.Fatalf("Run(Break): %v", err)
	}

	cmd, err = f.Run(keyfsm.ReplyGrabbedKey{Byte: capsCode})
	if err != nil {
		t.Fatalf("Run(break code): %v", err)
	}
	toggle, ok := cmd.(keyfsm.CmdToggleLed)
	if !ok || toggle.Mask != keyfsm.Caps {
		t.Fatalf("cmd = %#v, want CmdToggleLed{Caps}", cmd)
	}

	cmd, err = f.Run(keyfsm.ReplyLedToggled{Mask: toggle.Mask})
	if err != nil {
		t.Fatalf("Run(LedToggled): %v", err)
	}
	sk, ok := cmd.(keyfsm.CmdSendXTKey)
	if !ok || sk.Byte != 0xba {
		t.Fatalf("cmd = %#v, want CmdSendXTKey{0xba}", cmd)
	}
	if f.LedMask() != keyfsm.Caps {
		t.Fatalf("LedMask() = %v, want Caps", f.LedMask())
	}
}

func TestKeyboardResetOverridesCurrentState(t *testing.T) {
	f := keyfsm.New()
	if _, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: keyfsm.Break}); err != nil {
		t.Fatalf("Run(Break): %v", err)
	}
	cmd, err := f.Run(keyfsm.ReplyKeyboardReset{})
	if err != nil {
		t.Fatalf("Run(KeyboardReset): %v", err)
	}
	if _, ok := cmd.(keyfsm.CmdClearBuffer); !ok {
		t.Fatalf("cmd = %#v, want CmdClearBuffer", cmd)
	}
	cmd, err = f.Run(keyfsm.ReplyClearedBuffer{})
	if err != nil {
		t.Fatalf("Run(ClearedBuffer): %v", err)
	}
	if _, ok := cmd.(keyfsm.CmdWaitForKey); !ok {
		t.Fatalf("cmd = %#v, want CmdWaitForKey", cmd)
	}
}

func TestUnpromptedAcksAreDropped(t *testing.T) {
	for _, b := range []byte{keyfsm.SelfTestPassed, keyfsm.Ack, keyfsm.Nak, keyfsm.Echo} {
		f := keyfsm.New()
		cmd, err := f.Run(keyfsm.ReplyGrabbedKey{Byte: b})
		if err != nil {
			t.Fatalf("Run(%#02x): %v", b, err)
		}
		if _, ok := cmd.(keyfsm.CmdWaitForKey); !ok {
			t.Fatalf("byte %#02x: cmd = %#v, want CmdWaitForKey", b, cmd)
		}
	}
}
