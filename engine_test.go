// engine_test.go - fetch-decode-execute loop and instruction semantics tests

package main

import "testing"

// fakeServicer records the vectors it was asked to handle and stops the
// machine on INT 20h, mimicking just enough of the real BIOS/DOS layer for
// dispatch-level tests. Full INT 10h/13h/16h/17h/21h semantics belong to
// bios_test.go, dos_test.go and services_test.go.
type fakeServicer struct {
	calls []byte
}

func (f *fakeServicer) HandleInterrupt(cpu *CPU, mem *Memory, vector byte) (bool, error) {
	f.calls = append(f.calls, vector)
	return vector == 0x20, nil
}

func newTestEngine() (*Engine, *CPU, *Memory, *fakeServicer) {
	cpu := NewCPU()
	mem := NewMemory()
	svc := &fakeServicer{}
	return NewEngine(cpu, mem, svc), cpu, mem, svc
}

func loadCode(t *testing.T, mem *Memory, cs, ip uint16, code []byte) {
	t.Helper()
	for i, b := range code {
		if err := mem.Write8(cs, ip+uint16(i), b); err != nil {
			t.Fatalf("loadCode: %v", err)
		}
	}
}

func runUntilStopped(t *testing.T, e *Engine, cpu *CPU, maxSteps int) {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		if cpu.State() == Stopped {
			return
		}
		if err := e.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	t.Fatalf("machine did not reach Stopped within %d steps", maxSteps)
}

func TestTickMovRegImmAdvancesIP(t *testing.T) {
	e, cpu, mem, _ := newTestEngine()
	loadCode(t, mem, 0, 0x7C00, []byte{0xB0, 0x41}) // MOV AL, 0x41
	cpu.SetCS(0)
	cpu.SetIP(0x7C00)

	if err := e.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if cpu.AL() != 0x41 {
		t.Errorf("AL = 0x%02X, want 0x41", cpu.AL())
	}
	if cpu.IP() != 0x7C02 {
		t.Errorf("IP = 0x%04X, want 0x7C02", cpu.IP())
	}
}

// TestAddByteOverflowSetsCarryAndZero runs B0 FF 04 01 F4: MOV AL,0xFF ;
// ADD AL,1 ; HLT. 0xFF+1 wraps to 0 at byte width, setting CF, AF and ZF.
func TestAddByteOverflowSetsCarryAndZero(t *testing.T) {
	e, cpu, mem, _ := newTestEngine()
	loadCode(t, mem, 0, 0x100, []byte{0xB0, 0xFF, 0x04, 0x01, 0xF4})
	cpu.SetCS(0)
	cpu.SetIP(0x100)

	runUntilStopped(t, e, cpu, 10)

	if cpu.AL() != 0x00 {
		t.Errorf("AL = 0x%02X, want 0x00", cpu.AL())
	}
	if !cpu.CF() {
		t.Error("CF should be set on byte overflow")
	}
	if !cpu.ZF() {
		t.Error("ZF should be set when the result is zero")
	}
	if !cpu.AF() {
		t.Error("AF should be set, low nibble carried")
	}
}

func TestRepMovsbCopiesCXBytesAndStopsAtZero(t *testing.T) {
	e, cpu, mem, _ := newTestEngine()
	cpu.SetDS(0)
	cpu.SetES(0)
	cpu.SetSI(0x200)
	cpu.SetDI(0x300)
	cpu.SetCX(3)
	cpu.SetDF(false)
	cpu.SetRepeatLatch(Repeat)
	loadCode(t, mem, 0, 0x200, []byte{'A', 'B', 'C'})

	if err := e.stringOp(MOVSB, SegNone); err != nil {
		t.Fatalf("stringOp: %v", err)
	}
	if cpu.CX() != 0 {
		t.Errorf("CX = %d, want 0", cpu.CX())
	}
	if cpu.SI() != 0x203 || cpu.DI() != 0x303 {
		t.Errorf("SI:DI = %04X:%04X, want 0203:0303", cpu.SI(), cpu.DI())
	}
	for i, want := range []byte{'A', 'B', 'C'} {
		got, _ := mem.Read8(0, 0x300+uint16(i))
		if got != want {
			t.Errorf("dest[%d] = %q, want %q", i, got, want)
		}
	}
}

func TestRepMovsbZeroCountDoesNothing(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetCX(0)
	cpu.SetRepeatLatch(Repeat)
	cpu.SetSI(0x10)
	cpu.SetDI(0x20)
	if err := e.stringOp(MOVSB, SegNone); err != nil {
		t.Fatalf("stringOp: %v", err)
	}
	if cpu.SI() != 0x10 || cpu.DI() != 0x20 {
		t.Error("CX=0 should leave SI/DI untouched")
	}
}

func TestScasbRepeatZeroStopsOnMismatch(t *testing.T) {
	e, cpu, mem, _ := newTestEngine()
	cpu.SetES(0)
	cpu.SetDI(0x400)
	cpu.SetCX(5)
	cpu.SetAL('X')
	cpu.SetRepeatLatch(RepeatZero)
	loadCode(t, mem, 0, 0x400, []byte{'X', 'X', 'Y', 'X', 'X'})

	if err := e.stringOp(SCASB, SegNone); err != nil {
		t.Fatalf("stringOp: %v", err)
	}
	// Stops as soon as AL != memory byte: third byte ('Y') breaks the match,
	// so DI advances past exactly 3 bytes and CX is decremented 3 times.
	if cpu.DI() != 0x403 {
		t.Errorf("DI = 0x%04X, want 0x0403", cpu.DI())
	}
	if cpu.CX() != 2 {
		t.Errorf("CX = %d, want 2", cpu.CX())
	}
}

func TestShiftLeftSetsCarryFromVacatedBit(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetAL(0x80)
	dst := Param{Kind: ParamReg, Reg: AL}
	count := Param{Kind: ParamImmByte, ImmByte: 1}
	if err := e.shiftRotate(SHL, dst, count, SegNone); err != nil {
		t.Fatalf("shiftRotate: %v", err)
	}
	if cpu.AL() != 0x00 {
		t.Errorf("AL = 0x%02X, want 0x00", cpu.AL())
	}
	if !cpu.CF() {
		t.Error("CF should carry out the vacated high bit")
	}
	if !cpu.ZF() {
		t.Error("ZF should be set, result is zero")
	}
}

func TestShiftRightByZeroLeavesFlagsAlone(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetAL(0x55)
	cpu.SetCF(true)
	dst := Param{Kind: ParamReg, Reg: AL}
	count := Param{Kind: ParamImmByte, ImmByte: 0}
	if err := e.shiftRotate(SHR, dst, count, SegNone); err != nil {
		t.Fatalf("shiftRotate: %v", err)
	}
	if cpu.AL() != 0x55 {
		t.Errorf("AL = 0x%02X, want unchanged 0x55", cpu.AL())
	}
	if !cpu.CF() {
		t.Error("a shift by zero must not touch CF")
	}
}

func TestIMULByteSignedWithinRange(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetAL(0xFE) // -2
	src := Param{Kind: ParamImmByte, ImmByte: 0xFD, Word: false}
	if err := e.mulDiv(IMUL, src, SegNone); err != nil {
		t.Fatalf("mulDiv: %v", err)
	}
	if cpu.AX() != 6 {
		t.Errorf("AX = %d, want 6 (-2 * -3)", int16(cpu.AX()))
	}
	if cpu.CF() || cpu.OF() {
		t.Error("CF/OF should be clear, product fits in AL")
	}
}

func TestDivByZeroFaults(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetAX(100)
	src := Param{Kind: ParamImmByte, ImmByte: 0, Word: false}
	if err := e.mulDiv(DIV, src, SegNone); err == nil {
		t.Error("DIV by zero should return an error")
	}
}

func TestDAATwoNibbleAdjustments(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetAL(0x0F)
	e.daa()
	if cpu.AL() != 0x15 {
		t.Errorf("AL = 0x%02X, want 0x15 after low-nibble adjust", cpu.AL())
	}
	if !cpu.AF() {
		t.Error("AF should be set by the low-nibble adjustment")
	}

	e2, cpu2, _, _ := newTestEngine()
	cpu2.SetAL(0x9A)
	e2.daa()
	if cpu2.AL() != 0x00 {
		t.Errorf("AL = 0x%02X, want 0x00 after both adjustments wrap", cpu2.AL())
	}
	if !cpu2.CF() {
		t.Error("CF should be set by the high-nibble adjustment")
	}
}

func TestCBWSignExtendsAH(t *testing.T) {
	e, cpu, mem, _ := newTestEngine()
	cpu.SetAL(0x80)
	loadCode(t, mem, 0, 0, []byte{0x98}) // CBW
	cpu.SetCS(0)
	cpu.SetIP(0)
	if err := e.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if cpu.AH() != 0xFF {
		t.Errorf("AH = 0x%02X, want 0xFF", cpu.AH())
	}
}

func TestJLEMatchesSignedLessOrEqual(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetZF(false)
	cpu.SetSF(true)
	cpu.SetOF(false) // SF != OF -> signed less-than, JLE must take
	cpu.SetIP(0x10)
	p := Param{Kind: ParamRelByte, RelByte: 5}
	if err := e.condJump(JLE, p); err != nil {
		t.Fatalf("condJump: %v", err)
	}
	if cpu.IP() != 0x15 {
		t.Errorf("IP = 0x%04X, want 0x0015 (jump taken)", cpu.IP())
	}

	cpu.SetSF(false)
	cpu.SetOF(false)
	cpu.SetIP(0x10)
	if err := e.condJump(JLE, p); err != nil {
		t.Fatalf("condJump: %v", err)
	}
	if cpu.IP() != 0x10 {
		t.Errorf("IP = 0x%04X, want unchanged 0x0010 (not less-or-equal)", cpu.IP())
	}
}

func TestJmpFarSetsCSAndIP(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	p := Param{Kind: ParamFarPtr, Far: FarPtr{Segment: 0x0050, Offset: 0x0010}}
	if err := e.jump(p); err != nil {
		t.Fatalf("jump: %v", err)
	}
	if cpu.CS() != 0x0050 || cpu.IP() != 0x0010 {
		t.Errorf("CS:IP = %04X:%04X, want 0050:0010", cpu.CS(), cpu.IP())
	}
}

func TestCallPushesReturnAddressRetRestoresIt(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetSS(0)
	cpu.SetSP(0x100)
	cpu.SetIP(0x200)
	if err := e.call(Param{Kind: ParamRelWord, RelWord: 0x10}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if cpu.IP() != 0x210 {
		t.Errorf("IP after call = 0x%04X, want 0x0210", cpu.IP())
	}
	if cpu.SP() != 0xFE {
		t.Errorf("SP after call = 0x%04X, want 0x00FE", cpu.SP())
	}

	ins := &Instruction{Mnemonic: RET, NumParams: 0}
	if err := e.dispatch(ins); err != nil {
		t.Fatalf("dispatch RET: %v", err)
	}
	if cpu.IP() != 0x200 {
		t.Errorf("IP after ret = 0x%04X, want 0x0200", cpu.IP())
	}
	if cpu.SP() != 0x100 {
		t.Errorf("SP after ret = 0x%04X, want 0x0100", cpu.SP())
	}
}

func TestLoopDecrementsCXAndStopsAtZero(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetCX(1)
	cpu.SetIP(0x50)
	if err := e.loop(LOOP, Param{Kind: ParamRelByte, RelByte: -3}); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if cpu.CX() != 0 {
		t.Errorf("CX = %d, want 0", cpu.CX())
	}
	if cpu.IP() != 0x50 {
		t.Error("LOOP must not branch once CX reaches zero")
	}
}

func TestIntDispatchRoutesToServicerAndStopsOn20h(t *testing.T) {
	e, cpu, mem, svc := newTestEngine()
	loadCode(t, mem, 0, 0, []byte{0xCD, 0x20}) // INT 20h
	cpu.SetCS(0)
	cpu.SetIP(0)
	if err := e.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(svc.calls) != 1 || svc.calls[0] != 0x20 {
		t.Errorf("servicer calls = %v, want [0x20]", svc.calls)
	}
	if cpu.State() != Stopped {
		t.Error("INT 20h should stop the machine")
	}
}

func TestBreakpointPausesOnceThenProceeds(t *testing.T) {
	e, cpu, mem, _ := newTestEngine()
	loadCode(t, mem, 0, 0x10, []byte{0x90, 0x90}) // NOP; NOP
	cpu.SetCS(0)
	cpu.SetIP(0x10)
	e.SetBreakpoint(0, 0x10)

	if err := e.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if cpu.State() != Paused {
		t.Fatal("first tick at a breakpoint should pause without executing")
	}
	if cpu.IP() != 0x10 {
		t.Error("IP must not advance while parked on a breakpoint")
	}

	cpu.SetState(Running)
	if err := e.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if cpu.IP() != 0x11 {
		t.Errorf("second tick at the same address should execute, IP = 0x%04X", cpu.IP())
	}
}

func TestXchgSwapsBothOperands(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetAX(0x1111)
	cpu.SetBX(0x2222)
	ins := &Instruction{
		Mnemonic:  XCHG,
		NumParams: 2,
		Params: [2]Param{
			{Kind: ParamReg, Reg: AX, Word: true},
			{Kind: ParamReg, Reg: BX, Word: true},
		},
	}
	if err := e.dispatch(ins); err != nil {
		t.Fatalf("dispatch XCHG: %v", err)
	}
	if cpu.AX() != 0x2222 || cpu.BX() != 0x1111 {
		t.Errorf("AX:BX = %04X:%04X, want 2222:1111", cpu.AX(), cpu.BX())
	}
}

func TestIncDecLeaveCarryUntouched(t *testing.T) {
	e, cpu, _, _ := newTestEngine()
	cpu.SetCF(true)
	cpu.SetAL(0xFF)
	if err := e.incDec(Param{Kind: ParamReg, Reg: AL}, SegNone, 1); err != nil {
		t.Fatalf("incDec: %v", err)
	}
	if cpu.AL() != 0x00 {
		t.Errorf("AL = 0x%02X, want 0x00", cpu.AL())
	}
	if !cpu.CF() {
		t.Error("INC must not clear a carry flag set before it ran")
	}
	if !cpu.ZF() {
		t.Error("ZF should reflect the wrapped result")
	}
}
