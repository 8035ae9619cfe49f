// cpu_test.go - register/flag/run-state unit tests

package main

import "testing"

func TestByteRegisterViews(t *testing.T) {
	c := NewCPU()
	c.SetAX(0x1234)
	if c.AH() != 0x12 || c.AL() != 0x34 {
		t.Errorf("AH/AL = %02X/%02X, want 12/34", c.AH(), c.AL())
	}
	c.SetAL(0xAB)
	if c.AX() != 0x12AB {
		t.Errorf("AX after SetAL = 0x%04X, want 0x12AB", c.AX())
	}
	c.SetAH(0xCD)
	if c.AX() != 0xCDAB {
		t.Errorf("AX after SetAH = 0x%04X, want 0xCDAB", c.AX())
	}
}

func TestReadWriteRegDispatch(t *testing.T) {
	c := NewCPU()
	c.WriteReg(BX, 0x55AA)
	if c.ReadReg(BX) != 0x55AA {
		t.Errorf("ReadReg(BX) = 0x%04X, want 0x55AA", c.ReadReg(BX))
	}
	c.WriteReg(BL, 0x01)
	if c.BX() != 0x5501 {
		t.Errorf("BX after WriteReg(BL) = 0x%04X, want 0x5501", c.BX())
	}
	c.WriteReg(RegCS, 0x07C0)
	if c.CS() != 0x07C0 {
		t.Errorf("CS = 0x%04X, want 0x07C0", c.CS())
	}
}

func TestFlagsReservedBitsAlwaysSet(t *testing.T) {
	c := NewCPU()
	c.SetFlags(0x0000)
	got := c.Flags()
	if got&reservedFlagBits != reservedFlagBits {
		t.Errorf("Flags() = 0x%04X, reserved bits not set", got)
	}
	c.SetCF(true)
	if !c.CF() {
		t.Error("CF should read back set")
	}
	c.SetCF(false)
	if c.CF() {
		t.Error("CF should read back clear")
	}
}

func TestSnapshotLastCSIP(t *testing.T) {
	c := NewCPU()
	c.SetCS(0x1000)
	c.SetIP(0x0010)
	c.snapshotLast()
	c.SetIP(0x0020)
	if c.LastCS() != 0x1000 || c.LastIP() != 0x0010 {
		t.Errorf("LastCS:LastIP = %04X:%04X, want 1000:0010", c.LastCS(), c.LastIP())
	}
}

func TestStateTransitionsFanOutToSubscribers(t *testing.T) {
	c := NewCPU()
	var seen []RunState
	tok := c.Subscribe(func(s RunState) { seen = append(seen, s) })

	c.SetState(Running)
	c.SetState(Paused)
	c.SetState(Paused) // no-op transition must not re-fire
	c.SetState(Stopped)

	if len(seen) != 3 {
		t.Fatalf("got %d callbacks, want 3: %v", len(seen), seen)
	}
	if seen[0] != Running || seen[1] != Paused || seen[2] != Stopped {
		t.Errorf("callback sequence = %v", seen)
	}

	c.Unsubscribe(tok)
	c.SetState(Running)
	if len(seen) != 3 {
		t.Error("callback fired after Unsubscribe")
	}
}

func TestStateSelfLocksIndependentlyOfLock(t *testing.T) {
	c := NewCPU()
	c.SetState(Running)
	if c.State() != Running {
		t.Errorf("State() = %v, want Running", c.State())
	}
	// A caller already holding Lock() must use the unlocked accessor,
	// since State() would deadlock re-entering the same mutex.
	c.Lock()
	if c.stateUnlocked() != Running {
		t.Error("stateUnlocked() disagrees with State() under Lock()")
	}
	c.Unlock()
}
