// Package scumm decodes and re-encodes SCUMM V4 bytecode scripts into a
// tagged-variant instruction AST. Every decoded instruction keeps its
// original raw bytes in Raw, but Encode rebuilds every instruction that has
// a dedicated encoder case from its Args and returns Raw only for the rest;
// an instruction a mutator never touches therefore encodes back
// byte-for-byte identical only as far as its encoder case reproduces the
// form it was decoded from.
package scumm

import "fmt"

// VarRef identifies a SCUMM variable reference: a plain global/local
// variable id, a bit-flag variable (id with 0x8000 set, Extra holds the
// bit index), or an indexed/array-style reference (id with 0x2000 set,
// Extra holds the extra index word read immediately after the id).
type VarRef struct {
	ID    uint16
	Extra *uint16
}

func (v VarRef) String() string {
	if v.Extra != nil {
		return fmt.Sprintf("VAR[%d+%d]", v.ID, *v.Extra)
	}
	return fmt.Sprintf("VAR[%d]", v.ID)
}

// TextToken is one element of a print/say-line text stream: either a run
// of literal bytes (Name == "text", Data is []byte) or a control token
// (newline, wait, getInt, getVerb, getName, getString, startAnim,
// setColor, setFont — Data holds that token's argument, or nil).
type TextToken struct {
	Name string
	Data any
}

// Instr is one decoded SCUMM V4 instruction. Args holds the
// operation-specific fields keyed by name (documented per opcode in
// decode.go); Target holds the destination variable for instructions that
// assign one (move, add, isEqual's left side is never a target — only
// genuine assignment forms set this). Raw always holds the exact bytes
// this instruction was decoded from, which Encode returns verbatim for
// any opcode it does not have dedicated re-encoding logic for.
type Instr struct {
	Opcode byte
	Name   string
	Args   map[string]any
	Target *VarRef
	Raw    []byte
}

// Nop constructs the canonical zero-offset jumpRelative used throughout
// the pack's script fixups to blank an instruction in place without
// shifting any later offset in the same script.
func Nop() Instr {
	return Instr{
		Opcode: 0x18,
		Name:   "jumpRelative",
		Args:   map[string]any{"offset": int16(0)},
	}
}

// IsNop reports whether instr is a zero-offset jumpRelative.
func (instr Instr) IsNop() bool {
	if instr.Name != "jumpRelative" {
		return false
	}
	off, ok := instr.Args["offset"].(int16)
	return ok && off == 0
}
