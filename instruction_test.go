// instruction_test.go - Instruction/Param rendering tests

package main

import "testing"

func TestMnemonicStringKnownAndUnknown(t *testing.T) {
	if MOV.String() != "MOV" {
		t.Errorf("MOV.String() = %q, want MOV", MOV.String())
	}
	if got := Mnemonic(9999).String(); got != "Mnemonic(9999)" {
		t.Errorf("unknown mnemonic String() = %q, want Mnemonic(9999)", got)
	}
}

func TestInstructionStringNoParams(t *testing.T) {
	ins := &Instruction{Mnemonic: NOP}
	if got := ins.String(); got != "NOP" {
		t.Errorf("String() = %q, want NOP", got)
	}
}

func TestInstructionStringOneParam(t *testing.T) {
	ins := &Instruction{
		Mnemonic:  PUSH,
		NumParams: 1,
		Params:    [2]Param{{Kind: ParamReg, Reg: AX}},
	}
	if got := ins.String(); got != "PUSH AX" {
		t.Errorf("String() = %q, want PUSH AX", got)
	}
}

func TestInstructionStringTwoParams(t *testing.T) {
	ins := &Instruction{
		Mnemonic:  MOV,
		NumParams: 2,
		Params: [2]Param{
			{Kind: ParamReg, Reg: AX},
			{Kind: ParamImmWord, ImmWord: 0x1234},
		},
	}
	if got := ins.String(); got != "MOV AX, 0x1234" {
		t.Errorf("String() = %q, want MOV AX, 0x1234", got)
	}
}

func TestMemStringForms(t *testing.T) {
	cases := []struct {
		mem  MemOperand
		want string
	}{
		{MemOperand{Base: baseBX, Index: indexSI}, "[BX+SI]"},
		{MemOperand{Base: baseBP, Disp: -2}, "[BP-2]"},
		{MemOperand{Index: indexDI, Disp: 4}, "[DI+4]"},
		{MemOperand{Disp: 0x7C00}, "[0x7C00]"},
	}
	for _, c := range cases {
		if got := memString(c.mem); got != c.want {
			t.Errorf("memString(%+v) = %q, want %q", c.mem, got, c.want)
		}
	}
}

func TestRelByteParamStringSign(t *testing.T) {
	p := Param{Kind: ParamRelByte, RelByte: -5}
	if got := paramString(p); got != "$-5" {
		t.Errorf("paramString = %q, want $-5", got)
	}
	p2 := Param{Kind: ParamRelByte, RelByte: 5}
	if got := paramString(p2); got != "$+5" {
		t.Errorf("paramString = %q, want $+5", got)
	}
}
