// main.go - command-line entry point
//
// Grounded on terminal_host.go's raw-stdin reader (x/term, byte translation
// for CR and DEL) for keyboard input, oisee-z80-optimizer's cobra command
// shape for the subcommand/flag layout, and hejops-gone's debugger.go for
// driving a bubbletea program off CPU state. Everything here composes the
// already-built Machine; it holds no emulation logic of its own.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	clockHz float64
	trace   bool
)

func main() {
	root := &cobra.Command{
		Use:   "ape86run",
		Short: "Run real-mode 8086 floppy images and .COM programs",
	}
	root.PersistentFlags().Float64Var(&clockHz, "clock-hz", defaultClockHz, "nominal instruction clock rate")
	root.PersistentFlags().BoolVar(&trace, "trace", false, "dump CPU state if the machine stops on an error")

	floppyCmd := &cobra.Command{
		Use:   "floppy <image>",
		Short: "Boot a floppy disk image from its boot sector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := NewMachine()
			m.clockHz = clockHz
			if err := m.Floppy().Insert(args[0]); err != nil {
				return err
			}
			if !m.Floppy().IsBootable() {
				return fmt.Errorf("%s: missing 0x55AA boot signature", args[0])
			}
			if err := m.BootFloppy(); err != nil {
				return err
			}
			return runTUI(m)
		},
	}

	comCmd := &cobra.Command{
		Use:   "com <file> [args...]",
		Short: "Load and run a flat .COM program",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m := NewMachine()
			m.clockHz = clockHz
			cmdline := strings.Join(args[1:], " ")
			if err := m.BootCOM(data, cmdline); err != nil {
				return err
			}
			return runTUI(m)
		},
	}

	root.AddCommand(floppyCmd, comCmd)
	if err := root.Execute(); err != nil {
		logger.Printf("%v", err)
		os.Exit(1)
	}
}

// runHostInput puts stdin in raw mode and feeds keystrokes into the
// machine's text buffer until stop is closed, translating CR to LF and DEL
// to BS the way a real console driver would.
func runHostInput(m *Machine, stop <-chan struct{}) (restore func()) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 1)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if err := syscall.SetNonblock(fd, true); err == nil {
				n, _ := syscall.Read(fd, buf)
				if n > 0 {
					b := buf[0]
					if b == '\r' {
						b = '\n'
					}
					if b == 0x7F {
						b = 0x08
					}
					m.Video().Feed(b)
				} else {
					time.Sleep(5 * time.Millisecond)
				}
			}
		}
	}()
	return func() {
		<-done
		_ = term.Restore(fd, old)
	}
}

// tuiModel renders the machine's 80x25 text buffer and forwards an exit
// key to Stop. Polling between ticks (rather than a shared-state push)
// matches spec §5's front-end/engine split.
type tuiModel struct {
	m        *Machine
	stop     chan struct{}
	stopOnce *sync.Once
}

func (md tuiModel) closeStop() { md.stopOnce.Do(func() { close(md.stop) }) }

type tickMsg time.Time

func tuiTick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (md tuiModel) Init() tea.Cmd { return tuiTick() }

func (md tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			md.m.Stop()
			md.closeStop()
			return md, tea.Quit
		}
	case tickMsg:
		if md.m.CPU().State() == Stopped {
			md.closeStop()
			return md, tea.Quit
		}
		return md, tuiTick()
	}
	return md, nil
}

var cellStyle = lipgloss.NewStyle()

func (md tuiModel) View() string {
	rows, cols := md.m.Video().Dims()
	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			ch, _ := md.m.Video().Cell(r, c)
			if ch == 0 {
				ch = ' '
			}
			b.WriteByte(ch)
		}
		b.WriteByte('\n')
	}
	return cellStyle.Render(b.String())
}

func runTUI(m *Machine) error {
	stop := make(chan struct{})
	var stopOnce sync.Once
	restore := runHostInput(m, stop)
	defer restore()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		m.Stop()
		stopOnce.Do(func() { close(stop) })
	}()

	_, err := tea.NewProgram(tuiModel{m: m, stop: stop, stopOnce: &stopOnce}).Run()
	if err != nil {
		return err
	}

	if trace && m.LastFault() != nil {
		fmt.Fprintln(os.Stderr, DumpState(m.CPU(), m.LastFault()))
	}
	return nil
}
