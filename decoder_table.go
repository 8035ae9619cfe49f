// decoder_table.go - declarative opcode table (component C)
//
// Ported from original_source/Core/CPU/Decoder.cpp's reg_op(...) table,
// restricted to spec.md §4.E's closed mnemonic set (AAA/AAS/AAM/AAD/DAS/
// WAIT/XLAT/IN/OUT/INTO/LAHF/SAHF/RETF/far CALL are not in that set and
// have no table entry here; such opcodes decode as InvalidOpcode).

package main

// pType tags what kind of trailing bytes/placeholder an operand slot needs
// at decode time, before modrm/displacement/immediate resolution.
type pType int

const (
	ptNone pType = iota
	ptModAnyByte
	ptModAnyWord
	ptModRegByte
	ptModRegWord
	ptModRegSeg
	ptLitByte
	ptLitWord
	ptLitByteSignExtend // 0x83: byte immediate, sign-extended to word
	ptRelByte           // short jump/loop displacement
	ptRelWord           // near call/jmp displacement (E8/E9)
	ptFarPtr            // 32-bit segment:offset literal (EA)
	ptImplied0
	ptImplied1
	ptImplied3
	ptDirectAddrByte // [disp16] direct memory, byte width (A0/A2)
	ptDirectAddrWord // [disp16] direct memory, word width (A1/A3)

	ptRegAL
	ptRegAH
	ptRegBL
	ptRegBH
	ptRegCL
	ptRegCH
	ptRegDL
	ptRegDH
	ptRegAX
	ptRegBX
	ptRegCX
	ptRegDX
	ptRegSP
	ptRegBP
	ptRegSI
	ptRegDI
	ptSegCS
	ptSegDS
	ptSegES
	ptSegSS
)

type opEntry struct {
	valid bool
	mn    Mnemonic
	p1    pType
	p2    pType
}

var opcodeTable [256]opEntry

func op(b byte, mn Mnemonic, p1, p2 pType) {
	opcodeTable[b] = opEntry{valid: true, mn: mn, p1: p1, p2: p2}
}

func init() {
	op(0x00, ADD, ptModAnyByte, ptModRegByte)
	op(0x01, ADD, ptModAnyWord, ptModRegWord)
	op(0x02, ADD, ptModRegByte, ptModAnyByte)
	op(0x03, ADD, ptModRegWord, ptModAnyWord)
	op(0x04, ADD, ptRegAL, ptLitByte)
	op(0x05, ADD, ptRegAX, ptLitWord)
	op(0x06, PUSH, ptSegES, ptNone)
	op(0x07, POP, ptSegES, ptNone)
	op(0x08, OR, ptModAnyByte, ptModRegByte)
	op(0x09, OR, ptModAnyWord, ptModRegWord)
	op(0x0A, OR, ptModRegByte, ptModAnyByte)
	op(0x0B, OR, ptModRegWord, ptModAnyWord)
	op(0x0C, OR, ptRegAL, ptLitByte)
	op(0x0D, OR, ptRegAX, ptLitWord)
	op(0x0E, PUSH, ptSegCS, ptNone)

	op(0x10, ADC, ptModAnyByte, ptModRegByte)
	op(0x11, ADC, ptModAnyWord, ptModRegWord)
	op(0x12, ADC, ptModRegByte, ptModAnyByte)
	op(0x13, ADC, ptModRegWord, ptModAnyWord)
	op(0x14, ADC, ptRegAL, ptLitByte)
	op(0x15, ADC, ptRegAX, ptLitWord)
	op(0x16, PUSH, ptSegSS, ptNone)
	op(0x17, POP, ptSegSS, ptNone)
	op(0x18, SBB, ptModAnyByte, ptModRegByte)
	op(0x19, SBB, ptModAnyWord, ptModRegWord)
	op(0x1A, SBB, ptModRegByte, ptModAnyByte)
	op(0x1B, SBB, ptModRegWord, ptModAnyWord)
	op(0x1C, SBB, ptRegAL, ptLitByte)
	op(0x1D, SBB, ptRegAX, ptLitWord)
	op(0x1E, PUSH, ptSegDS, ptNone)
	op(0x1F, POP, ptSegDS, ptNone)

	op(0x20, AND, ptModAnyByte, ptModRegByte)
	op(0x21, AND, ptModAnyWord, ptModRegWord)
	op(0x22, AND, ptModRegByte, ptModAnyByte)
	op(0x23, AND, ptModRegWord, ptModAnyWord)
	op(0x24, AND, ptRegAL, ptLitByte)
	op(0x25, AND, ptRegAX, ptLitWord)
	// 0x26 ES prefix, 0x2E CS, 0x36 SS, 0x3E DS are handled in the
	// prefix-scanning stage below, not as table entries.
	op(0x27, DAA, ptNone, ptNone)
	op(0x28, SUB, ptModAnyByte, ptModRegByte)
	op(0x29, SUB, ptModAnyWord, ptModRegWord)
	op(0x2A, SUB, ptModRegByte, ptModAnyByte)
	op(0x2B, SUB, ptModRegWord, ptModAnyWord)
	op(0x2C, SUB, ptRegAL, ptLitByte)
	op(0x2D, SUB, ptRegAX, ptLitWord)

	op(0x30, XOR, ptModAnyByte, ptModRegByte)
	op(0x31, XOR, ptModAnyWord, ptModRegWord)
	op(0x32, XOR, ptModRegByte, ptModAnyByte)
	op(0x33, XOR, ptModRegWord, ptModAnyWord)
	op(0x34, XOR, ptRegAL, ptLitByte)
	op(0x35, XOR, ptRegAX, ptLitWord)
	op(0x38, CMP, ptModAnyByte, ptModRegByte)
	op(0x39, CMP, ptModAnyWord, ptModRegWord)
	op(0x3A, CMP, ptModRegByte, ptModAnyByte)
	op(0x3B, CMP, ptModRegWord, ptModAnyWord)
	op(0x3C, CMP, ptRegAL, ptLitByte)
	op(0x3D, CMP, ptRegAX, ptLitWord)

	op(0x40, INC, ptRegAX, ptNone)
	op(0x41, INC, ptRegCX, ptNone)
	op(0x42, INC, ptRegDX, ptNone)
	op(0x43, INC, ptRegBX, ptNone)
	op(0x44, INC, ptRegSP, ptNone)
	op(0x45, INC, ptRegBP, ptNone)
	op(0x46, INC, ptRegSI, ptNone)
	op(0x47, INC, ptRegDI, ptNone)
	op(0x48, DEC, ptRegAX, ptNone)
	op(0x49, DEC, ptRegCX, ptNone)
	op(0x4A, DEC, ptRegDX, ptNone)
	op(0x4B, DEC, ptRegBX, ptNone)
	op(0x4C, DEC, ptRegSP, ptNone)
	op(0x4D, DEC, ptRegBP, ptNone)
	op(0x4E, DEC, ptRegSI, ptNone)
	op(0x4F, DEC, ptRegDI, ptNone)

	op(0x50, PUSH, ptRegAX, ptNone)
	op(0x51, PUSH, ptRegCX, ptNone)
	op(0x52, PUSH, ptRegDX, ptNone)
	op(0x53, PUSH, ptRegBX, ptNone)
	op(0x54, PUSH, ptRegSP, ptNone)
	op(0x55, PUSH, ptRegBP, ptNone)
	op(0x56, PUSH, ptRegSI, ptNone)
	op(0x57, PUSH, ptRegDI, ptNone)
	op(0x58, POP, ptRegAX, ptNone)
	op(0x59, POP, ptRegCX, ptNone)
	op(0x5A, POP, ptRegDX, ptNone)
	op(0x5B, POP, ptRegBX, ptNone)
	op(0x5C, POP, ptRegSP, ptNone)
	op(0x5D, POP, ptRegBP, ptNone)
	op(0x5E, POP, ptRegSI, ptNone)
	op(0x5F, POP, ptRegDI, ptNone)

	op(0x70, JO, ptRelByte, ptNone)
	op(0x71, JNO, ptRelByte, ptNone)
	op(0x72, JB, ptRelByte, ptNone)
	op(0x73, JNB, ptRelByte, ptNone)
	op(0x74, JZ, ptRelByte, ptNone)
	op(0x75, JNZ, ptRelByte, ptNone)
	op(0x76, JBE, ptRelByte, ptNone)
	op(0x77, JA, ptRelByte, ptNone)
	op(0x78, JS, ptRelByte, ptNone)
	op(0x79, JNS, ptRelByte, ptNone)
	op(0x7A, JPE, ptRelByte, ptNone)
	op(0x7B, JPO, ptRelByte, ptNone)
	op(0x7C, JL, ptRelByte, ptNone)
	op(0x7D, JGE, ptRelByte, ptNone)
	op(0x7E, JLE, ptRelByte, ptNone)
	op(0x7F, JG, ptRelByte, ptNone)

	op(0x80, grp1, ptModAnyByte, ptLitByte)
	op(0x81, grp1, ptModAnyWord, ptLitWord)
	op(0x82, grp1, ptModAnyByte, ptLitByte)
	op(0x83, grp1, ptModAnyWord, ptLitByteSignExtend)
	op(0x84, TEST, ptModRegByte, ptModAnyByte)
	op(0x85, TEST, ptModRegWord, ptModAnyWord)
	op(0x86, XCHG, ptModRegByte, ptModAnyByte)
	op(0x87, XCHG, ptModRegWord, ptModAnyWord)
	op(0x88, MOV, ptModAnyByte, ptModRegByte)
	op(0x89, MOV, ptModAnyWord, ptModRegWord)
	op(0x8A, MOV, ptModRegByte, ptModAnyByte)
	op(0x8B, MOV, ptModRegWord, ptModAnyWord)
	op(0x8C, MOV, ptModAnyWord, ptModRegSeg)
	op(0x8D, LEA, ptModRegWord, ptModAnyWord)
	op(0x8E, MOV, ptModRegSeg, ptModAnyWord)
	op(0x8F, POP, ptModAnyWord, ptNone)

	op(0x90, NOP, ptNone, ptNone)
	op(0x91, XCHG, ptRegCX, ptRegAX)
	op(0x92, XCHG, ptRegDX, ptRegAX)
	op(0x93, XCHG, ptRegBX, ptRegAX)
	op(0x94, XCHG, ptRegSP, ptRegAX)
	op(0x95, XCHG, ptRegBP, ptRegAX)
	op(0x96, XCHG, ptRegSI, ptRegAX)
	op(0x97, XCHG, ptRegDI, ptRegAX)
	op(0x98, CBW, ptNone, ptNone)
	op(0x99, CWD, ptNone, ptNone)
	op(0x9C, PUSHF, ptNone, ptNone)
	op(0x9D, POPF, ptNone, ptNone)

	op(0xA0, MOV, ptRegAL, ptDirectAddrByte)
	op(0xA1, MOV, ptRegAX, ptDirectAddrWord)
	op(0xA2, MOV, ptDirectAddrByte, ptRegAL)
	op(0xA3, MOV, ptDirectAddrWord, ptRegAX)

	op(0xA4, MOVSB, ptNone, ptNone)
	op(0xA5, MOVSW, ptNone, ptNone)
	op(0xA6, CMPSB, ptNone, ptNone)
	op(0xA7, CMPSW, ptNone, ptNone)
	op(0xA8, TEST, ptRegAL, ptLitByte)
	op(0xA9, TEST, ptRegAX, ptLitWord)
	op(0xAA, STOSB, ptNone, ptNone)
	op(0xAB, STOSW, ptNone, ptNone)
	op(0xAC, LODSB, ptNone, ptNone)
	op(0xAD, LODSW, ptNone, ptNone)
	op(0xAE, SCASB, ptNone, ptNone)
	op(0xAF, SCASW, ptNone, ptNone)

	op(0xB0, MOV, ptRegAL, ptLitByte)
	op(0xB1, MOV, ptRegCL, ptLitByte)
	op(0xB2, MOV, ptRegDL, ptLitByte)
	op(0xB3, MOV, ptRegBL, ptLitByte)
	op(0xB4, MOV, ptRegAH, ptLitByte)
	op(0xB5, MOV, ptRegCH, ptLitByte)
	op(0xB6, MOV, ptRegDH, ptLitByte)
	op(0xB7, MOV, ptRegBH, ptLitByte)
	op(0xB8, MOV, ptRegAX, ptLitWord)
	op(0xB9, MOV, ptRegCX, ptLitWord)
	op(0xBA, MOV, ptRegDX, ptLitWord)
	op(0xBB, MOV, ptRegBX, ptLitWord)
	op(0xBC, MOV, ptRegSP, ptLitWord)
	op(0xBD, MOV, ptRegBP, ptLitWord)
	op(0xBE, MOV, ptRegSI, ptLitWord)
	op(0xBF, MOV, ptRegDI, ptLitWord)

	op(0xC2, RET, ptLitWord, ptNone)
	op(0xC3, RET, ptNone, ptNone)
	op(0xC4, LES, ptModRegWord, ptModAnyWord)
	op(0xC5, LDS, ptModRegWord, ptModAnyWord)
	op(0xC6, MOV, ptModAnyByte, ptLitByte)
	op(0xC7, MOV, ptModAnyWord, ptLitWord)
	op(0xCC, INT, ptImplied3, ptNone)
	op(0xCD, INT, ptLitByte, ptNone)
	op(0xCF, IRET, ptNone, ptNone)

	op(0xD0, grp2, ptModAnyByte, ptImplied1)
	op(0xD1, grp2, ptModAnyWord, ptImplied1)
	op(0xD2, grp2, ptModAnyByte, ptRegCL)
	op(0xD3, grp2, ptModAnyWord, ptRegCL)

	op(0xE0, LOOPNZ, ptRelByte, ptNone)
	op(0xE1, LOOPZ, ptRelByte, ptNone)
	op(0xE2, LOOP, ptRelByte, ptNone)
	op(0xE3, JCXZ, ptRelByte, ptNone)
	op(0xE8, CALL, ptRelWord, ptNone)
	op(0xE9, JMP, ptRelWord, ptNone)
	op(0xEA, JMP, ptFarPtr, ptNone)
	op(0xEB, JMP, ptRelByte, ptNone)

	op(0xF4, HLT, ptNone, ptNone)
	op(0xF5, CMC, ptNone, ptNone)
	op(0xF6, grp3, ptModAnyByte, ptNone)
	op(0xF7, grp3, ptModAnyWord, ptNone)
	op(0xF8, CLC, ptNone, ptNone)
	op(0xF9, STC, ptNone, ptNone)
	op(0xFA, CLI, ptNone, ptNone)
	op(0xFB, STI, ptNone, ptNone)
	op(0xFC, CLD, ptNone, ptNone)
	op(0xFD, STD, ptNone, ptNone)
	op(0xFE, grp4, ptModAnyByte, ptNone)
	op(0xFF, grp5, ptModAnyWord, ptNone)
}

// group1Mnemonics maps the mod/rm reg field for opcodes 80/81/82/83.
var group1Mnemonics = [8]Mnemonic{ADD, OR, ADC, SBB, AND, SUB, XOR, CMP}

// group2Mnemonics maps the mod/rm reg field for opcodes D0/D1/D2/D3. SAL
// (reg=6) is a real 8086 alias of SHL but decodes as its own mnemonic;
// RCL/RCR/SAL/SAR decode but are not implemented by the engine (spec
// §4.E's closed set omits them), which reports UnhandledInstruction.
var group2Mnemonics = [8]Mnemonic{ROL, ROR, RCL, RCR, SHL, SHR, SAL, SAR}

// group3Mnemonics maps the mod/rm reg field for opcodes F6/F7. reg 0 and 1
// are both TEST Eb/Ev,imm.
var group3Mnemonics = [8]Mnemonic{TEST, TEST, NOT, NEG, MUL, IMUL, DIV, IDIV}

// group4Mnemonics maps FE's reg field; only 0 and 1 are defined, reg 2..7
// decode as InvalidParameter.
var group4Mnemonics = map[int]Mnemonic{0: INC, 1: DEC}

// group5Mnemonics maps FF's reg field. reg=3 (CALL Mp, far indirect) and
// reg=5 (JMP Mp, far indirect) have no mnemonic in this engine's closed
// set (spec.md only wants CALL/RET near and JMP far via a literal operand,
// not indirect-through-memory far control transfer) so they decode as
// InvalidParameter, matching spec §4.C's "unmapped reg values fail
// InvalidParameter" rule.
var group5Mnemonics = map[int]Mnemonic{0: INC, 1: DEC, 2: CALL, 4: JMP, 6: PUSH}
