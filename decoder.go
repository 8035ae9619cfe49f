// decoder.go - stateless byte-stream decoder (component C)
//
// Split out of the teacher's cpu_x86.go (which decodes and executes in the
// same function via per-opcode function pointers) per spec §9's explicit
// direction: Decode here is a pure function from bytes to an Instruction
// value and knows nothing about architectural state beyond the bytes it is
// handed.

package main

// byteRegTable and wordRegTable map a 3-bit modrm field (reg or rm when
// mod=11) to a register name.
var byteRegTable = [8]Reg{AL, CL, DL, BL, AH, CH, DH, BH}
var wordRegTable = [8]Reg{AX, CX, DX, BX, SP, BP, SI, DI}
var segRegTable = [4]SegReg{SegES, SegCS, SegSS, SegDS}

// rmMemTable gives the base/index pair for each rm value 0..7 when the
// operand is a memory reference (mod != 11); rm==6 is special-cased by the
// caller (mod=00 -> direct [disp16], mod=01/10 -> BP+disp).
var rmMemTable = [8]struct {
	base  baseReg
	index indexReg
}{
	{baseBX, indexSI},
	{baseBX, indexDI},
	{baseBP, indexSI},
	{baseBP, indexDI},
	{baseNone, indexSI},
	{baseNone, indexDI},
	{baseBP, indexNone},
	{baseBX, indexNone},
}

// byteReader is anything Decode can pull sequential bytes from; cpu tick
// fetch and Disassemble satisfy this with a small closure over Memory, the
// decoder tests with one over a byte slice.
type byteReader func(offset int) byte

// Decode reads one instruction starting at logical offset 0 of fetch (the
// caller translates offsets to CS:IP before calling). It returns the
// resolved Instruction or an *EmulationError with CS=IP=0 (the caller fills
// in the real (CS,IP) for diagnostics).
func Decode(fetch byteReader, startOffset uint16) (*Instruction, error) {
	pos := 0
	segPrefix := SegNone

	for {
		b := fetch(pos)
		switch b {
		case 0x26:
			segPrefix = SegES
			pos++
			continue
		case 0x2E:
			segPrefix = SegCS
			pos++
			continue
		case 0x36:
			segPrefix = SegSS
			pos++
			continue
		case 0x3E:
			segPrefix = SegDS
			pos++
			continue
		case 0xF0: // LOCK: accepted, no architectural effect here
			pos++
			continue
		case 0xF2:
			pos++
			ins, n, err := decodeOne(fetch, pos)
			if err != nil {
				return nil, err
			}
			ins.SegPrefix = segPrefix
			ins.Length = pos + n
			ins.Offset = startOffset
			if isCompareString(ins.Mnemonic) {
				ins.repeatPrefix = RepeatNonZero
			} else {
				ins.repeatPrefix = Repeat
			}
			return ins, nil
		case 0xF3:
			pos++
			ins, n, err := decodeOne(fetch, pos)
			if err != nil {
				return nil, err
			}
			ins.SegPrefix = segPrefix
			ins.Length = pos + n
			ins.Offset = startOffset
			if isCompareString(ins.Mnemonic) {
				ins.repeatPrefix = RepeatZero
			} else {
				ins.repeatPrefix = Repeat
			}
			return ins, nil
		}
		ins, n, err := decodeOne(fetch, pos)
		if err != nil {
			return nil, err
		}
		ins.SegPrefix = segPrefix
		ins.Length = pos + n
		ins.Offset = startOffset
		return ins, nil
	}
}

// decodeOne decodes the opcode (and everything after it) starting at pos,
// returning the instruction and the number of bytes consumed from pos
// (i.e. not including any prefix bytes already consumed by the caller).
func decodeOne(fetch byteReader, pos int) (*Instruction, int, error) {
	opcodeByte := fetch(pos)
	entry := opcodeTable[opcodeByte]
	if !entry.valid {
		return nil, 0, newErr(InvalidOpcode, 0, 0, "no decoder entry for opcode")
	}

	cursor := pos + 1
	ins := &Instruction{Mnemonic: entry.mn}

	var modrm *modrmInfo
	needsModRM := entry.p1 == ptModAnyByte || entry.p1 == ptModAnyWord ||
		entry.p1 == ptModRegByte || entry.p1 == ptModRegWord || entry.p1 == ptModRegSeg ||
		entry.p2 == ptModAnyByte || entry.p2 == ptModAnyWord ||
		entry.p2 == ptModRegByte || entry.p2 == ptModRegWord || entry.p2 == ptModRegSeg ||
		isGroupMnemonic(entry.mn)

	if needsModRM {
		info, n, err := readModRM(fetch, cursor)
		if err != nil {
			return nil, 0, err
		}
		modrm = info
		cursor += n
	}

	p2Type := entry.p2
	if isGroupMnemonic(entry.mn) {
		resolved, err := resolveGroup(entry.mn, modrm.reg)
		if err != nil {
			return nil, 0, err
		}
		ins.Mnemonic = resolved
		// F6/F7 reg=0/1 (TEST Eb/Ev,imm) is the one group3 variant that
		// carries a trailing immediate; the table can't express this
		// since the other six reg values take no second operand.
		if entry.mn == grp3 && resolved == TEST {
			if entry.p1 == ptModAnyWord {
				p2Type = ptLitWord
			} else {
				p2Type = ptLitByte
			}
		}
	}

	p1, n, err := resolveParam(fetch, cursor, entry.p1, modrm, true)
	if err != nil {
		return nil, 0, err
	}
	cursor += n
	p2, n, err := resolveParam(fetch, cursor, p2Type, modrm, false)
	if err != nil {
		return nil, 0, err
	}
	cursor += n

	ins.NumParams = 0
	if entry.p1 != ptNone {
		ins.Params[0] = p1
		ins.NumParams = 1
	}
	if p2Type != ptNone {
		ins.Params[1] = p2
		ins.NumParams = 2
	}

	return ins, cursor - pos, nil
}

func isCompareString(m Mnemonic) bool {
	return m == CMPSB || m == CMPSW || m == SCASB || m == SCASW
}

func isGroupMnemonic(m Mnemonic) bool {
	return m == grp1 || m == grp2 || m == grp3 || m == grp4 || m == grp5
}

func resolveGroup(group Mnemonic, reg int) (Mnemonic, error) {
	switch group {
	case grp1:
		return group1Mnemonics[reg], nil
	case grp2:
		return group2Mnemonics[reg], nil
	case grp3:
		return group3Mnemonics[reg], nil
	case grp4:
		if mn, ok := group4Mnemonics[reg]; ok {
			return mn, nil
		}
		return 0, newErr(InvalidParameter, 0, 0, "unmapped Grp4 reg field")
	case grp5:
		if mn, ok := group5Mnemonics[reg]; ok {
			return mn, nil
		}
		return 0, newErr(InvalidParameter, 0, 0, "unmapped Grp5 reg field")
	}
	return 0, newErr(InvalidParameter, 0, 0, "not a group opcode")
}

// modrmInfo is the decoded mod/rm byte plus any displacement already read.
type modrmInfo struct {
	mod  int
	reg  int
	rm   int
	mem  MemOperand // populated when mod != 11
	isRM bool       // true if rm names a memory operand (mod != 11)
}

func readModRM(fetch byteReader, pos int) (*modrmInfo, int, error) {
	b := fetch(pos)
	mod := int(b >> 6 & 0x03)
	reg := int(b >> 3 & 0x07)
	rm := int(b & 0x07)
	info := &modrmInfo{mod: mod, reg: reg, rm: rm}

	if mod == 3 {
		return info, 1, nil
	}
	info.isRM = true
	n := 1
	entry := rmMemTable[rm]
	info.mem.Base = entry.base
	info.mem.Index = entry.index

	switch {
	case mod == 0 && rm == 6:
		// direct [disp16]
		lo := fetch(pos + n)
		hi := fetch(pos + n + 1)
		info.mem.Base = baseNone
		info.mem.Index = indexNone
		info.mem.Disp = int16(uint16(lo) | uint16(hi)<<8)
		n += 2
	case mod == 0:
		// no displacement
	case mod == 1:
		d := fetch(pos + n)
		info.mem.Disp = int16(int8(d))
		n++
	case mod == 2:
		lo := fetch(pos + n)
		hi := fetch(pos + n + 1)
		info.mem.Disp = int16(uint16(lo) | uint16(hi)<<8)
		n += 2
	}
	return info, n, nil
}

// resolveParam reads any trailing bytes a parameter type requires and
// produces the resolved Param. The final bool argument (true for the first
// operand, false for the second at the call sites) is ignored: operand
// width comes from the pType itself (ptModAnyByte/Word, ptLitByte/Word...).
func resolveParam(fetch byteReader, pos int, pt pType, modrm *modrmInfo, _ bool) (Param, int, error) {
	switch pt {
	case ptNone:
		return Param{Kind: ParamNone}, 0, nil

	case ptModAnyByte, ptModAnyWord:
		word := pt == ptModAnyWord
		if modrm.mod == 3 {
			var r Reg
			if word {
				r = wordRegTable[modrm.rm]
			} else {
				r = byteRegTable[modrm.rm]
			}
			return Param{Kind: ParamReg, Reg: r, Word: word}, 0, nil
		}
		mem := modrm.mem
		mem.Word = word
		return Param{Kind: ParamMem, Mem: mem, Word: word}, 0, nil

	case ptModRegByte:
		return Param{Kind: ParamReg, Reg: byteRegTable[modrm.reg], Word: false}, 0, nil
	case ptModRegWord:
		return Param{Kind: ParamReg, Reg: wordRegTable[modrm.reg], Word: true}, 0, nil
	case ptModRegSeg:
		if modrm.reg > 3 {
			return Param{}, 0, newErr(InvalidParameter, 0, 0, "segment register field out of range")
		}
		return Param{Kind: ParamSegReg, SegReg: segRegTable[modrm.reg], Word: true}, 0, nil

	case ptLitByte:
		return Param{Kind: ParamImmByte, ImmByte: fetch(pos)}, 1, nil
	case ptLitWord:
		lo, hi := fetch(pos), fetch(pos+1)
		return Param{Kind: ParamImmWord, ImmWord: uint16(lo) | uint16(hi)<<8}, 2, nil
	case ptLitByteSignExtend:
		b := fetch(pos)
		return Param{Kind: ParamImmWord, ImmWord: uint16(int16(int8(b)))}, 1, nil

	case ptRelByte:
		return Param{Kind: ParamRelByte, RelByte: int8(fetch(pos))}, 1, nil
	case ptRelWord:
		lo, hi := fetch(pos), fetch(pos+1)
		return Param{Kind: ParamRelWord, RelWord: int16(uint16(lo) | uint16(hi)<<8)}, 2, nil
	case ptFarPtr:
		// offset16 : segment16, little-endian per half (spec §9: the
		// first 16 bits read are the offset, the second the segment).
		offLo, offHi := fetch(pos), fetch(pos+1)
		segLo, segHi := fetch(pos+2), fetch(pos+3)
		offset := uint16(offLo) | uint16(offHi)<<8
		segment := uint16(segLo) | uint16(segHi)<<8
		return Param{Kind: ParamFarPtr, Far: FarPtr{Segment: segment, Offset: offset}}, 4, nil

	case ptImplied0:
		return Param{Kind: ParamImplied, Implied: 0}, 0, nil
	case ptImplied1:
		return Param{Kind: ParamImplied, Implied: 1}, 0, nil
	case ptImplied3:
		return Param{Kind: ParamImplied, Implied: 3}, 0, nil

	case ptDirectAddrByte, ptDirectAddrWord:
		lo, hi := fetch(pos), fetch(pos+1)
		disp := int16(uint16(lo) | uint16(hi)<<8)
		return Param{Kind: ParamMem, Mem: MemOperand{Disp: disp, Word: pt == ptDirectAddrWord}, Word: pt == ptDirectAddrWord}, 2, nil

	case ptRegAL:
		return Param{Kind: ParamReg, Reg: AL}, 0, nil
	case ptRegAH:
		return Param{Kind: ParamReg, Reg: AH}, 0, nil
	case ptRegBL:
		return Param{Kind: ParamReg, Reg: BL}, 0, nil
	case ptRegBH:
		return Param{Kind: ParamReg, Reg: BH}, 0, nil
	case ptRegCL:
		return Param{Kind: ParamReg, Reg: CL}, 0, nil
	case ptRegCH:
		return Param{Kind: ParamReg, Reg: CH}, 0, nil
	case ptRegDL:
		return Param{Kind: ParamReg, Reg: DL}, 0, nil
	case ptRegDH:
		return Param{Kind: ParamReg, Reg: DH}, 0, nil
	case ptRegAX:
		return Param{Kind: ParamReg, Reg: AX, Word: true}, 0, nil
	case ptRegBX:
		return Param{Kind: ParamReg, Reg: BX, Word: true}, 0, nil
	case ptRegCX:
		return Param{Kind: ParamReg, Reg: CX, Word: true}, 0, nil
	case ptRegDX:
		return Param{Kind: ParamReg, Reg: DX, Word: true}, 0, nil
	case ptRegSP:
		return Param{Kind: ParamReg, Reg: SP, Word: true}, 0, nil
	case ptRegBP:
		return Param{Kind: ParamReg, Reg: BP, Word: true}, 0, nil
	case ptRegSI:
		return Param{Kind: ParamReg, Reg: SI, Word: true}, 0, nil
	case ptRegDI:
		return Param{Kind: ParamReg, Reg: DI, Word: true}, 0, nil
	case ptSegCS:
		return Param{Kind: ParamSegReg, SegReg: SegCS, Word: true}, 0, nil
	case ptSegDS:
		return Param{Kind: ParamSegReg, SegReg: SegDS, Word: true}, 0, nil
	case ptSegES:
		return Param{Kind: ParamSegReg, SegReg: SegES, Word: true}, 0, nil
	case ptSegSS:
		return Param{Kind: ParamSegReg, SegReg: SegSS, Word: true}, 0, nil
	}
	return Param{}, 0, newErr(InvalidParameter, 0, 0, "unresolvable parameter type")
}
