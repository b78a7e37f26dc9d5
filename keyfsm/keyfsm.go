// Package keyfsm implements the AT-to-XT scan code translation state
// machine: spec.md §4.6, ported from the original firmware's keyfsm.rs
// with its scan code table unchanged. The transition structure adds one
// state, stateAfterExtendedPrefix, for the byte after a 0xE0/0xE1 prefix.
package keyfsm

import "fmt"

// LedMask is the keyboard LED bitmask sent after SET_LEDS (0xED).
type LedMask uint8

// Bit assignments, matching spec.md §3/§6.
const (
	Scroll LedMask = 1 << iota
	Num
	Caps
)

// AT command/response bytes this translator recognizes.
const (
	SelfTestPassed byte = 0xaa
	SetLEDs        byte = 0xed
	Echo           byte = 0xee
	Reset          byte = 0xff
	PrefixExtended byte = 0xe0
	PrefixPause    byte = 0xe1
	Break          byte = 0xf0
	Ack            byte = 0xfa
	Nak            byte = 0xfe

	capsCode   byte = 0x58
	numCode    byte = 0x77
	scrollCode byte = 0x7e
)

// keycodeLUT is the fixed 132-byte AT-to-XT scan code table, given verbatim
// by the original firmware (keyfsm.rs). Index is the raw AT scan code;
// out-of-range indices translate to 0, same as a press of an unmapped key.
var keycodeLUT = [132]byte{
	0x00, 0x43, 0x00, 0x3F, 0x3D, 0x3B, 0x3C, 0x58, 0x00, 0x44, 0x42, 0x40, 0x3E, 0x0F, 0x29, 0x00,
	0x00, 0x38, 0x2A, 0x00, 0x1D, 0x10, 0x02, 0x00, 0x00, 0x00, 0x2C, 0x1F, 0x1E, 0x11, 0x03, 0x00,
	0x00, 0x2E, 0x2D, 0x20, 0x12, 0x05, 0x04, 0x00, 0x00, 0x39, 0x2F, 0x21, 0x14, 0x13, 0x06, 0x00,
	0x00, 0x31, 0x30, 0x23, 0x22, 0x15, 0x07, 0x00, 0x00, 0x00, 0x32, 0x24, 0x16, 0x08, 0x09, 0x00,
	0x00, 0x33, 0x25, 0x17, 0x18, 0x0B, 0x0A, 0x00, 0x00, 0x34, 0x35, 0x26, 0x27, 0x19, 0x0C, 0x00,
	0x00, 0x00, 0x28, 0x00, 0x1A, 0x0D, 0x00, 0x00, 0x3A, 0x36, 0x1C, 0x1B, 0x00, 0x2B, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0E, 0x00, 0x00, 0x4F, 0x00, 0x4B, 0x47, 0x00, 0x00, 0x00,
	0x52, 0x53, 0x50, 0x4C, 0x4D, 0x48, 0x01, 0x45, 0x57, 0x4E, 0x51, 0x4A, 0x37, 0x49, 0x46, 0x00,
	0x00, 0x00, 0x00, 0x41,
}

// ToXT looks up the XT scan code for an AT scan code. Out-of-range codes
// translate to 0, per spec.md §8 boundary property 8.
func ToXT(at byte) byte {
	if int(at) >= len(keycodeLUT) {
		return 0
	}
	return keycodeLUT[at]
}

// ProcReply is the foreground's report of what it did in response to the
// previous Cmd, feeding the next Fsm.Run call.
type ProcReply interface {
	isProcReply()
}

type (
	// ReplyNothingToDo is the initial reply, before any command has run.
	ReplyNothingToDo struct{}
	// ReplyGrabbedKey reports a raw AT byte pulled from the ring.
	ReplyGrabbedKey struct{ Byte byte }
	// ReplySentKey reports an XT byte was sent to the host.
	ReplySentKey struct{ Byte byte }
	// ReplyClearedBuffer reports the inbound ring was flushed.
	ReplyClearedBuffer struct{}
	// ReplyLedToggled reports the new LED mask took effect.
	ReplyLedToggled struct{ Mask LedMask }
	// ReplyKeyboardReset reports the host asked for (and got) a reset.
	ReplyKeyboardReset struct{}
)

func (ReplyNothingToDo) isProcReply()    {}
func (ReplyGrabbedKey) isProcReply()     {}
func (ReplySentKey) isProcReply()        {}
func (ReplyClearedBuffer) isProcReply()  {}
func (ReplyLedToggled) isProcReply()     {}
func (ReplyKeyboardReset) isProcReply()  {}

// Cmd is the command the FSM asks the foreground to execute next.
type Cmd interface {
	isCmd()
}

type (
	// CmdWaitForKey asks the foreground to block for the next ring entry
	// or an XT reset request.
	CmdWaitForKey struct{}
	// CmdClearBuffer asks the foreground to flush the inbound ring.
	CmdClearBuffer struct{}
	// CmdToggleLed asks the foreground to send SET_LEDS with the new mask.
	CmdToggleLed struct{ Mask LedMask }
	// CmdSendXTKey asks the foreground to emit one XT byte to the host.
	CmdSendXTKey struct{ Byte byte }
)

func (CmdWaitForKey) isCmd()   {}
func (CmdClearBuffer) isCmd()  {}
func (CmdToggleLed) isCmd()    {}
func (CmdSendXTKey) isCmd()    {}

// state is the FSM's internal state, spec.md §3.
type state interface {
	isState()
}

type (
	stateNotInKey             struct{}
	stateSimpleKey            struct{ key byte }
	statePossibleBreakCode    struct{}
	stateKnownBreakCode       struct{ key byte }
	// stateUnmodifiedKey sends key raw. prefix is set only for the 0xE0/0xE1
	// prefix byte itself, so nextState knows to route the byte that follows
	// it to stateAfterExtendedPrefix rather than straight back to NotInKey.
	stateUnmodifiedKey struct {
		key    byte
		prefix bool
	}
	stateToggleLedFirst struct{ key byte }
	// stateAfterExtendedPrefix is entered once the 0xE0/0xE1 prefix byte
	// itself has been sent; the byte grabbed from this state passes through
	// raw too (spec.md §6/§8 Scenario C), except a break prefix, which still
	// follows the ordinary break path (see DESIGN.md Open Question #3).
	stateAfterExtendedPrefix  struct{}
	stateExpectingBufferClear struct{}
	stateInconsistent         struct{}
)

func (stateNotInKey) isState()             {}
func (stateSimpleKey) isState()            {}
func (statePossibleBreakCode) isState()    {}
func (stateKnownBreakCode) isState()       {}
func (stateUnmodifiedKey) isState()        {}
func (stateToggleLedFirst) isState()       {}
func (stateAfterExtendedPrefix) isState()  {}
func (stateExpectingBufferClear) isState() {}
func (stateInconsistent) isState()         {}

// Fsm is the AT-to-XT translation state machine.
type Fsm struct {
	curr           state
	expectingPause bool
	ledMask        LedMask
}

// New returns an Fsm in its start state (NotInKey, no LEDs lit).
func New() *Fsm {
	return &Fsm{curr: stateNotInKey{}}
}

// LedMask reports the FSM's current notion of which LEDs are lit.
func (f *Fsm) LedMask() LedMask {
	return f.ledMask
}

// Run advances the FSM given the foreground's report of the previous
// command's outcome, and returns the next command to execute.
//
// An error return means the FSM landed in its Inconsistent state: spec.md §7
// treats this as "keep waiting," not a fatal condition.
func (f *Fsm) Run(reply ProcReply) (Cmd, error) {
	next := f.nextState(reply)
	f.curr = next

	switch s := next.(type) {
	case stateNotInKey:
		return CmdWaitForKey{}, nil
	case statePossibleBreakCode:
		return CmdWaitForKey{}, nil
	case stateSimpleKey:
		return CmdSendXTKey{Byte: ToXT(s.key)}, nil
	case stateKnownBreakCode:
		return CmdSendXTKey{Byte: ToXT(s.key) | 0x80}, nil
	case stateUnmodifiedKey:
		return CmdSendXTKey{Byte: s.key}, nil
	case stateToggleLedFirst:
		switch s.key {
		case scrollCode:
			return CmdToggleLed{Mask: f.ledMask ^ Scroll}, nil
		case numCode:
			return CmdToggleLed{Mask: f.ledMask ^ Num}, nil
		case capsCode:
			return CmdToggleLed{Mask: f.ledMask ^ Caps}, nil
		default:
			return nil, fmt.Errorf("keyfsm: inconsistent ToggleLedFirst key %#x", s.key)
		}
	case stateExpectingBufferClear:
		return CmdClearBuffer{}, nil
	case stateAfterExtendedPrefix:
		return CmdWaitForKey{}, nil
	default:
		return nil, fmt.Errorf("keyfsm: inconsistent state/reply pair")
	}
}

func (f *Fsm) nextState(reply ProcReply) state {
	if _, ok := reply.(ReplyKeyboardReset); ok {
		return stateExpectingBufferClear{}
	}

	switch cur := f.curr.(type) {
	case stateNotInKey:
		switch r := reply.(type) {
		case ReplyNothingToDo:
			return stateNotInKey{}
		case ReplyGrabbedKey:
			return f.onGrabbedFromNotInKey(r.Byte)
		}
	case stateSimpleKey:
		if _, ok := reply.(ReplySentKey); ok {
			return stateNotInKey{}
		}
	case statePossibleBreakCode:
		if r, ok := reply.(ReplyGrabbedKey); ok {
			return f.onGrabbedFromPossibleBreak(r.Byte)
		}
	case stateKnownBreakCode:
		if _, ok := reply.(ReplySentKey); ok {
			return stateNotInKey{}
		}
	case stateUnmodifiedKey:
		if _, ok := reply.(ReplySentKey); ok {
			if cur.prefix {
				return stateAfterExtendedPrefix{}
			}
			return stateNotInKey{}
		}
	case stateAfterExtendedPrefix:
		if r, ok := reply.(ReplyGrabbedKey); ok {
			if r.Byte == Break {
				return statePossibleBreakCode{}
			}
			return stateUnmodifiedKey{key: r.Byte}
		}
	case stateToggleLedFirst:
		if r, ok := reply.(ReplyLedToggled); ok {
			f.ledMask = r.Mask
			return stateKnownBreakCode{key: cur.key}
		}
	case stateExpectingBufferClear:
		if _, ok := reply.(ReplyClearedBuffer); ok {
			return stateNotInKey{}
		}
	}
	return stateInconsistent{}
}

func (f *Fsm) onGrabbedFromNotInKey(k byte) state {
	switch k {
	case SelfTestPassed, Ack, Nak, Echo:
		// Unprompted acks/echoes/self-test bytes are dropped.
		return stateNotInKey{}
	case Break:
		return statePossibleBreakCode{}
	case PrefixExtended, PrefixPause:
		f.expectingPause = k == PrefixPause
		return stateUnmodifiedKey{key: k, prefix: true}
	default:
		return stateSimpleKey{key: k}
	}
}

func (f *Fsm) onGrabbedFromPossibleBreak(k byte) state {
	switch k {
	case scrollCode, capsCode:
		return stateToggleLedFirst{key: k}
	case numCode:
		if f.expectingPause {
			f.expectingPause = false
			return stateKnownBreakCode{key: k}
		}
		return stateToggleLedFirst{key: k}
	default:
		return stateKnownBreakCode{key: k}
	}
}
