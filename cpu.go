// cpu.go - architectural state: registers, flags, run state (component D)
//
// Generalizes cpu_x86.go's register layout (there: 32-bit EAX/EBX/... with
// AL/AH/AX views) down to the 8086's 16-bit GP registers, and replaces the
// teacher's 32-bit EFLAGS bitfield with the eight-flag subset spec.md names.
// The callback registry follows spec §9's "opaque token, not address-of-
// function" guidance rather than debug_cpu_x86.go's bare function pointers.

package main

import "sync"

// flag bit positions within the packed flags word, matching spec §4.E's
// PUSHF/POPF encoding exactly so pushFlags/popFlags need no translation.
const (
	flagCF = 1 << 0
	flagPF = 1 << 2
	flagAF = 1 << 4
	flagZF = 1 << 6
	flagSF = 1 << 7
	flagIF = 1 << 9
	flagDF = 1 << 10
	flagOF = 1 << 11
)

// RunState is the machine's coarse lifecycle state (spec §3).
type RunState int

const (
	Stopped RunState = iota
	Running
	Paused
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// RepeatMode is the latch set by the F2/F3 prefixes (spec §3).
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	Repeat
	RepeatZero
	RepeatNonZero
)

// StateCallback is invoked on the emulator thread whenever RunState
// transitions. Callbacks must be short and non-blocking (spec §5).
type StateCallback func(RunState)

// CPU holds the 14 registers and 8 flags plus the latches and subscriber
// list spec §3/§4.D describe. The mutex guards run state and the
// subscriber list; register, flag and latch accessors do not lock. The
// memory array is owned separately and left lock-free (spec §5).
type CPU struct {
	mu sync.Mutex

	ax, bx, cx, dx uint16
	cs, ds, es, ss uint16
	ip, bp, sp, si, di uint16
	flags uint16

	lastCS, lastIP uint16

	state  RunState
	repeat RepeatMode

	callbacks map[int]StateCallback
	nextToken int
}

func NewCPU() *CPU {
	return &CPU{
		flags:     0x0002, // bit 1 is always set, matching PUSHF's encoding
		state:     Stopped,
		callbacks: make(map[int]StateCallback),
	}
}

// --- 16-bit register access ---

func (c *CPU) AX() uint16 { return c.ax }
func (c *CPU) BX() uint16 { return c.bx }
func (c *CPU) CX() uint16 { return c.cx }
func (c *CPU) DX() uint16 { return c.dx }
func (c *CPU) CS() uint16 { return c.cs }
func (c *CPU) DS() uint16 { return c.ds }
func (c *CPU) ES() uint16 { return c.es }
func (c *CPU) SS() uint16 { return c.ss }
func (c *CPU) IP() uint16 { return c.ip }
func (c *CPU) BP() uint16 { return c.bp }
func (c *CPU) SP() uint16 { return c.sp }
func (c *CPU) SI() uint16 { return c.si }
func (c *CPU) DI() uint16 { return c.di }

func (c *CPU) SetAX(v uint16) { c.ax = v }
func (c *CPU) SetBX(v uint16) { c.bx = v }
func (c *CPU) SetCX(v uint16) { c.cx = v }
func (c *CPU) SetDX(v uint16) { c.dx = v }
func (c *CPU) SetCS(v uint16) { c.cs = v }
func (c *CPU) SetDS(v uint16) { c.ds = v }
func (c *CPU) SetES(v uint16) { c.es = v }
func (c *CPU) SetSS(v uint16) { c.ss = v }
func (c *CPU) SetIP(v uint16) { c.ip = v }
func (c *CPU) SetBP(v uint16) { c.bp = v }
func (c *CPU) SetSP(v uint16) { c.sp = v }
func (c *CPU) SetSI(v uint16) { c.si = v }
func (c *CPU) SetDI(v uint16) { c.di = v }

// --- high/low byte views; AH/AL alias AX exactly, and so on ---

func (c *CPU) AL() byte { return byte(c.ax) }
func (c *CPU) AH() byte { return byte(c.ax >> 8) }
func (c *CPU) BL() byte { return byte(c.bx) }
func (c *CPU) BH() byte { return byte(c.bx >> 8) }
func (c *CPU) CL() byte { return byte(c.cx) }
func (c *CPU) CH() byte { return byte(c.cx >> 8) }
func (c *CPU) DL() byte { return byte(c.dx) }
func (c *CPU) DH() byte { return byte(c.dx >> 8) }

func (c *CPU) SetAL(v byte) { c.ax = c.ax&0xFF00 | uint16(v) }
func (c *CPU) SetAH(v byte) { c.ax = c.ax&0x00FF | uint16(v)<<8 }
func (c *CPU) SetBL(v byte) { c.bx = c.bx&0xFF00 | uint16(v) }
func (c *CPU) SetBH(v byte) { c.bx = c.bx&0x00FF | uint16(v)<<8 }
func (c *CPU) SetCL(v byte) { c.cx = c.cx&0xFF00 | uint16(v) }
func (c *CPU) SetCH(v byte) { c.cx = c.cx&0x00FF | uint16(v)<<8 }
func (c *CPU) SetDL(v byte) { c.dx = c.dx&0xFF00 | uint16(v) }
func (c *CPU) SetDH(v byte) { c.dx = c.dx&0x00FF | uint16(v)<<8 }

// ReadReg/WriteReg dispatch by Reg enum, used by the engine's generic
// operand read/write paths so MOV/ADD/etc. don't need per-register switches
// at every call site.
func (c *CPU) ReadReg(r Reg) uint16 {
	switch r {
	case AL:
		return uint16(c.AL())
	case AH:
		return uint16(c.AH())
	case BL:
		return uint16(c.BL())
	case BH:
		return uint16(c.BH())
	case CL:
		return uint16(c.CL())
	case CH:
		return uint16(c.CH())
	case DL:
		return uint16(c.DL())
	case DH:
		return uint16(c.DH())
	case AX:
		return c.ax
	case BX:
		return c.bx
	case CX:
		return c.cx
	case DX:
		return c.dx
	case SP:
		return c.sp
	case BP:
		return c.bp
	case SI:
		return c.si
	case DI:
		return c.di
	case RegCS:
		return c.cs
	case RegDS:
		return c.ds
	case RegES:
		return c.es
	case RegSS:
		return c.ss
	case RegIP:
		return c.ip
	default:
		return 0
	}
}

func (c *CPU) WriteReg(r Reg, v uint16) {
	switch r {
	case AL:
		c.SetAL(byte(v))
	case AH:
		c.SetAH(byte(v))
	case BL:
		c.SetBL(byte(v))
	case BH:
		c.SetBH(byte(v))
	case CL:
		c.SetCL(byte(v))
	case CH:
		c.SetCH(byte(v))
	case DL:
		c.SetDL(byte(v))
	case DH:
		c.SetDH(byte(v))
	case AX:
		c.ax = v
	case BX:
		c.bx = v
	case CX:
		c.cx = v
	case DX:
		c.dx = v
	case SP:
		c.sp = v
	case BP:
		c.bp = v
	case SI:
		c.si = v
	case DI:
		c.di = v
	case RegCS:
		c.cs = v
	case RegDS:
		c.ds = v
	case RegES:
		c.es = v
	case RegSS:
		c.ss = v
	case RegIP:
		c.ip = v
	}
}

func isByteReg(r Reg) bool {
	switch r {
	case AL, AH, BL, BH, CL, CH, DL, DH:
		return true
	}
	return false
}

// --- flags ---

func (c *CPU) getFlag(mask uint16) bool { return c.flags&mask != 0 }

func (c *CPU) setFlag(mask uint16, v bool) {
	if v {
		c.flags |= mask
	} else {
		c.flags &^= mask
	}
}

func (c *CPU) CF() bool      { return c.getFlag(flagCF) }
func (c *CPU) PF() bool      { return c.getFlag(flagPF) }
func (c *CPU) AF() bool      { return c.getFlag(flagAF) }
func (c *CPU) ZF() bool      { return c.getFlag(flagZF) }
func (c *CPU) SF() bool      { return c.getFlag(flagSF) }
func (c *CPU) IF() bool      { return c.getFlag(flagIF) }
func (c *CPU) DF() bool      { return c.getFlag(flagDF) }
func (c *CPU) OF() bool      { return c.getFlag(flagOF) }
func (c *CPU) SetCF(v bool)  { c.setFlag(flagCF, v) }
func (c *CPU) SetPF(v bool)  { c.setFlag(flagPF, v) }
func (c *CPU) SetAF(v bool)  { c.setFlag(flagAF, v) }
func (c *CPU) SetZF(v bool)  { c.setFlag(flagZF, v) }
func (c *CPU) SetSF(v bool)  { c.setFlag(flagSF, v) }
func (c *CPU) SetIF(v bool)  { c.setFlag(flagIF, v) }
func (c *CPU) SetDF(v bool)  { c.setFlag(flagDF, v) }
func (c *CPU) SetOF(v bool)  { c.setFlag(flagOF, v) }

// reservedFlagBits are always 1 in the pushed/popped word per spec §4.E:
// bit 1, bit 14, bit 15.
const reservedFlagBits = 1<<1 | 1<<14 | 1<<15

// Flags returns the packed flags word as PUSHF would encode it.
func (c *CPU) Flags() uint16 { return c.flags | reservedFlagBits }

// SetFlags loads the packed flags word as POPF would decode it.
func (c *CPU) SetFlags(v uint16) { c.flags = v | reservedFlagBits }

// --- diagnostic shadow fields ---

func (c *CPU) LastCS() uint16 { return c.lastCS }
func (c *CPU) LastIP() uint16 { return c.lastIP }
func (c *CPU) snapshotLast()  { c.lastCS, c.lastIP = c.cs, c.ip }

// --- latches ---

func (c *CPU) RepeatLatch() RepeatMode     { return c.repeat }
func (c *CPU) SetRepeatLatch(m RepeatMode) { c.repeat = m }
func (c *CPU) ClearRepeatLatch()           { c.repeat = RepeatNone }

// --- run state ---

func (c *CPU) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState transitions run state and fans out to subscribers. It locks
// internally rather than requiring the caller to hold the mutex, since the
// engine may be deep inside a blocking interrupt service call (console
// read) when HLT or INT 20h/21h-4Ch triggers a transition, and the
// front-end's Stop/Pause must be able to acquire the lock independently of
// that call (spec §5's cancellation requirement).
func (c *CPU) SetState(s RunState) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	callbacks := make([]StateCallback, 0, len(c.callbacks))
	for _, cb := range c.callbacks {
		callbacks = append(callbacks, cb)
	}
	c.mu.Unlock()
	for _, cb := range callbacks {
		cb(s)
	}
}

func (c *CPU) Lock()   { c.mu.Lock() }
func (c *CPU) Unlock() { c.mu.Unlock() }

// stateUnlocked reads run state without locking, for callers that already
// hold the mutex via Lock() (State() would deadlock since sync.Mutex isn't
// reentrant).
func (c *CPU) stateUnlocked() RunState { return c.state }

// Subscribe registers a state-change callback and returns an opaque token
// for later Unsubscribe, per spec §9 ("the source's address-of-function
// trick is fragile and unnecessary").
func (c *CPU) Subscribe(cb StateCallback) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok := c.nextToken
	c.nextToken++
	c.callbacks[tok] = cb
	return tok
}

func (c *CPU) Unsubscribe(token int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.callbacks, token)
}
