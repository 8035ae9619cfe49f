// bios.go - BIOS interrupt services (component F)
//
// Grounded on original_source/Core/BIOS/Interrupt.cpp's AH-keyed subfunction
// switches, extended to the full AH table spec §4.F names.

package main

// handleBIOS dispatches one BIOS interrupt vector. handled is false if the
// vector itself isn't a BIOS vector this emulator answers.
func (s *Services) handleBIOS(cpu *CPU, mem *Memory, vector byte) (handled bool, stop bool, err error) {
	switch vector {
	case 0x10:
		return true, false, s.bios10(cpu)
	case 0x13:
		return true, false, s.bios13(cpu, mem)
	case 0x16:
		return true, false, s.bios16(cpu)
	case 0x17:
		cpu.SetAH(0x30)
		return true, false, nil
	case 0x19:
		return true, true, nil
	}
	return false, false, nil
}

func (s *Services) bios10(cpu *CPU) error {
	switch cpu.AH() {
	case 0x02:
		s.video.MoveCursor(int(cpu.DH()), int(cpu.DL()))
		return nil
	case 0x03:
		row, col := s.video.Cursor()
		cpu.SetDH(byte(row))
		cpu.SetDL(byte(col))
		cpu.SetCH(0)
		cpu.SetCL(0)
		cpu.SetAX(0)
		return nil
	case 0x06:
		s.video.Scroll(int(cpu.BL()), cpu.BH())
		return nil
	case 0x0E:
		s.video.WriteChar(cpu.AL())
		return nil
	}
	return newErr(UnhandledInterrupt, 0, 0, "INT 10h: unhandled AH subfunction")
}

func (s *Services) bios13(cpu *CPU, mem *Memory) error {
	switch cpu.AH() {
	case 0x00:
		cpu.SetAH(0)
		cpu.SetCF(false)
		return nil
	case 0x02:
		count := cpu.AL()
		cylinder := cpu.CH()
		sector := cpu.CL()
		head := cpu.DH()
		drive := cpu.DL()

		if drive != 0 {
			cpu.SetAH(0xAA)
			cpu.SetCF(true)
			return nil
		}

		dst, err := mem.SliceMut(cpu.ES(), cpu.BX(), int(count)*sectorSize)
		if err != nil {
			return err
		}
		if err := s.floppy.ReadCHS(cylinder, head, sector, count, dst); err != nil {
			cpu.SetAH(0x40)
			cpu.SetCF(true)
			return nil
		}
		cpu.SetAH(0)
		cpu.SetCF(false)
		return nil
	}
	return newErr(UnhandledInterrupt, 0, 0, "INT 13h: unhandled AH subfunction")
}

func (s *Services) bios16(cpu *CPU) error {
	switch cpu.AH() {
	case 0x00:
		c, ok := s.video.ReadChar()
		if !ok {
			return newErr(IoFailure, 0, 0, "keyboard read interrupted by shutdown")
		}
		cpu.SetAL(c)
		cpu.SetAH(0)
		cpu.SetCF(false)
		return nil
	}
	return newErr(UnhandledInterrupt, 0, 0, "INT 16h: unhandled AH subfunction")
}
