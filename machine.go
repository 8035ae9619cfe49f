// machine.go - machine lifecycle: boot, run, stop, pause (component I)
//
// Machine is the single owner spec §9 asks for, replacing the original's
// Machine<->CPU back-reference: it holds CPU, Memory, Engine, and the
// service layer, and wires them together at construction instead of
// threading a pointer back through the engine. The goroutine start/stop
// shape is grounded on cpu_x86_runner.go's StartExecution/Stop.

package main

import (
	"log"
	"os"
	"sync"
	"time"
)

const defaultClockHz = 5_000_000

// logger reports the diagnostics spec §7 asks the lifecycle owner to
// surface, the way the teacher's video_chip.go/audio_chip.go log through
// the stdlib log package rather than a structured logging library.
var logger = log.New(os.Stderr, "ape86: ", log.LstdFlags)

// Machine owns every piece of emulator state and drives the fetch-decode-
// execute loop on its own goroutine.
type Machine struct {
	cpu      *CPU
	mem      *Memory
	engine   *Engine
	floppy   *FloppyDrive
	video    *TextBuffer
	dosFiles *DOSFileTable
	services *Services

	clockHz float64

	execMu     sync.Mutex
	execActive bool
	execDone   chan struct{}
	stopReq    chan struct{}

	faultMu   sync.Mutex
	lastFault *EmulationError
}

func NewMachine() *Machine {
	cpu := NewCPU()
	mem := NewMemory()
	floppy := NewFloppyDrive()
	video := NewTextBuffer(mem)
	dosFiles := NewDOSFileTable()
	services := NewServices(floppy, video, dosFiles)
	engine := NewEngine(cpu, mem, services)

	return &Machine{
		cpu:      cpu,
		mem:      mem,
		engine:   engine,
		floppy:   floppy,
		video:    video,
		dosFiles: dosFiles,
		services: services,
		clockHz:  defaultClockHz,
	}
}

func (m *Machine) CPU() *CPU               { return m.cpu }
func (m *Machine) Memory() *Memory         { return m.mem }
func (m *Machine) Engine() *Engine         { return m.engine }
func (m *Machine) Floppy() *FloppyDrive    { return m.floppy }
func (m *Machine) Video() *TextBuffer      { return m.video }
func (m *Machine) DOSFiles() *DOSFileTable { return m.dosFiles }

// LastFault returns the diagnostic that stopped the machine, per spec §7's
// propagation policy, or nil if the machine hasn't faulted (a clean halt,
// an explicit Stop, or no run yet).
func (m *Machine) LastFault() error {
	m.faultMu.Lock()
	defer m.faultMu.Unlock()
	if m.lastFault == nil {
		return nil
	}
	return m.lastFault
}

func (m *Machine) setFault(err *EmulationError) {
	m.faultMu.Lock()
	m.lastFault = err
	m.faultMu.Unlock()
}

// BootFloppy loads the inserted floppy's boot sector at 0000:7C00 and
// starts execution there.
func (m *Machine) BootFloppy() error {
	if !m.floppy.HasDisk() {
		return newErr(IoFailure, 0, 0, "no floppy inserted")
	}
	dst, err := m.mem.SliceMut(0, 0x7C00, sectorSize)
	if err != nil {
		return err
	}
	if err := m.floppy.ReadLinear(0, sectorSize, dst); err != nil {
		return err
	}
	m.cpu.SetCS(0)
	m.cpu.SetIP(0x7C00)
	m.startExecution()
	return nil
}

// BootCOM loads a flat .COM binary at 0000:0100, builds the PSP command
// tail at 0000:0080, and starts execution at the load address.
func (m *Machine) BootCOM(data []byte, cmdline string) error {
	dst, err := m.mem.SliceMut(0, 0x100, len(data))
	if err != nil {
		return err
	}
	copy(dst, data)

	if err := m.writePSPCommandTail(cmdline); err != nil {
		return err
	}

	m.cpu.SetDS(0)
	m.cpu.SetCS(0)
	m.cpu.SetIP(0x100)
	m.startExecution()
	return nil
}

// writePSPCommandTail encodes the DOS command tail at 0000:0080: a length
// byte, the ASCII bytes, and a trailing carriage return.
func (m *Machine) writePSPCommandTail(cmdline string) error {
	if len(cmdline) > 126 {
		cmdline = cmdline[:126]
	}
	dst, err := m.mem.SliceMut(0, 0x0080, len(cmdline)+2)
	if err != nil {
		return err
	}
	dst[0] = byte(len(cmdline))
	copy(dst[1:], cmdline)
	dst[len(cmdline)+1] = 0x0D
	return nil
}

func (m *Machine) startExecution() {
	m.execMu.Lock()
	defer m.execMu.Unlock()
	if m.execActive {
		return
	}
	m.execActive = true
	m.video.Reset()
	m.setFault(nil)
	m.cpu.SetState(Running)
	m.execDone = make(chan struct{})
	m.stopReq = make(chan struct{})
	go m.run(m.execDone, m.stopReq)
}

func (m *Machine) run(done, stopReq chan struct{}) {
	defer func() {
		m.execMu.Lock()
		m.execActive = false
		m.execMu.Unlock()
		close(done)
	}()

	period := time.Duration(float64(time.Second) / m.clockHz)

	for {
		select {
		case <-stopReq:
			return
		default:
		}

		state := m.cpu.State()
		if state == Stopped {
			return
		}
		if state == Paused {
			time.Sleep(time.Millisecond)
			continue
		}

		if err := m.engine.Tick(); err != nil {
			ee, ok := err.(*EmulationError)
			if !ok {
				ee = wrapErr(IoFailure, m.cpu.CS(), m.cpu.IP(), "tick failed", err)
			}
			m.setFault(ee)
			logger.Printf("%s", ee.Error())
			m.cpu.SetState(Stopped)
			return
		}

		if period > 0 {
			time.Sleep(period)
		}
	}
}

// Stop requests the emulator goroutine to halt and blocks until it has,
// interrupting any in-flight blocking console read so the wait is bounded
// (spec §5's cancellation requirement).
func (m *Machine) Stop() {
	m.execMu.Lock()
	if !m.execActive {
		m.cpu.SetState(Stopped)
		m.execMu.Unlock()
		return
	}
	stopReq := m.stopReq
	done := m.execDone
	m.execMu.Unlock()

	m.cpu.SetState(Stopped)
	m.video.Shutdown()
	close(stopReq)
	<-done
}

// Pause toggles the Paused/Running state; it does not stop the goroutine.
func (m *Machine) Pause() {
	switch m.cpu.State() {
	case Running:
		m.cpu.SetState(Paused)
	case Paused:
		m.cpu.SetState(Running)
	}
}
