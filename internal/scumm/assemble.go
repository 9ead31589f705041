package scumm

import (
	"github.com/pkg/errors"

	"j5.nz/mi1rando/internal/binio"
)

// EncodeScript re-serializes an entire decoded instruction stream,
// repairing every relative jump/branch offset to account for
// instructions whose encoded size changed since decode (because a
// mutator inserted, deleted, or resized one). It never retargets a
// zero-offset jumpRelative: that form is the canonical in-place blank
// used by every fixup in this repo, and must stay a no-op wherever it
// appears in the new layout.
//
// Pass one measures every instruction's encoded length to build an
// old-offset -> new-offset map (old offsets come from decode; this
// function has no access to them directly, so callers supply them via
// oldOffsets, one per instruction, aligned by index). Pass two rewrites
// each instruction's "offset" argument from its original absolute
// target, re-encodes, and emits.
func EncodeScript(instrs []Instr, oldOffsets []int) ([]byte, error) {
	if len(oldOffsets) != len(instrs) {
		return nil, errors.Errorf("scumm: EncodeScript got %d instructions but %d old offsets", len(instrs), len(oldOffsets))
	}

	sizes := make([]int, len(instrs))
	bodies := make([][]byte, len(instrs))
	for i, instr := range instrs {
		b, err := Encode(instr)
		if err != nil {
			return nil, errors.Wrapf(err, "scumm: measuring instruction %d (%s)", i, instr.Name)
		}
		bodies[i] = b
		sizes[i] = len(b)
	}

	newOffsets := make([]int, len(instrs))
	running := 0
	for i, sz := range sizes {
		newOffsets[i] = running
		running += sz
	}

	oldIndex := make(map[int]int, len(oldOffsets))
	for i, off := range oldOffsets {
		oldIndex[off] = i
	}

	var out []byte
	for i, instr := range instrs {
		rawOffset, hasOffset := instr.Args["offset"]
		if !hasOffset || instr.IsNop() {
			out = append(out, bodies[i]...)
			continue
		}
		offset, ok := rawOffset.(int16)
		if !ok {
			return nil, errors.Errorf("scumm: instruction %d (%s) has non-int16 offset arg %v", i, instr.Name, rawOffset)
		}

		targetOld := oldOffsets[i] + sizes[i] + int(offset)
		targetIdx, ok := oldIndex[targetOld]
		var newTarget int
		if ok {
			newTarget = newOffsets[targetIdx]
		} else if targetOld == oldOffsets[i]+sizes[i] && len(instrs) == i+1 {
			// branch to the instruction immediately following the last
			// instruction in the script (i.e. to end-of-script).
			newTarget = running
		} else {
			return nil, errors.Errorf("scumm: instruction %d (%s) branches to offset %d, which is not an instruction boundary", i, instr.Name, targetOld)
		}

		patched := instr
		patchedArgs := make(map[string]any, len(instr.Args))
		for k, v := range instr.Args {
			patchedArgs[k] = v
		}
		patchedArgs["offset"] = int16(newTarget - sizes[i] - newOffsets[i])
		patched.Args = patchedArgs

		b, err := Encode(patched)
		if err != nil {
			return nil, errors.Wrapf(err, "scumm: re-encoding instruction %d (%s)", i, instr.Name)
		}
		if len(b) != sizes[i] {
			return nil, errors.Errorf("scumm: instruction %d (%s) changed size when its offset was patched (%d -> %d); relative-jump repair requires offset patching to be size-stable", i, instr.Name, sizes[i], len(b))
		}
		out = append(out, b...)
	}
	return out, nil
}

// DecodeScript tokenizes a flat instruction stream, returning each
// instruction alongside the byte offset (relative to the start of buf)
// it was decoded from.
func DecodeScript(buf []byte) ([]Instr, []int, error) {
	return decodeScriptReader(buf, -1)
}

// DecodeScriptUntilStop behaves like DecodeScript but stops as soon as a
// stopObjectCode instruction is decoded, matching the per-verb decoding
// used when several verb code blobs are concatenated in one object's data
// buffer and a later verb's bytes must not be misread as part of this
// one.
func DecodeScriptUntilStop(buf []byte) ([]Instr, []int, error) {
	return decodeScriptReader(buf, 0x00)
}

func decodeScriptReader(buf []byte, stopOpcode int) ([]Instr, []int, error) {
	r := binio.NewReader(buf)
	var instrs []Instr
	var offsets []int
	for r.Len() > 0 {
		start := r.Pos()
		instr, err := Decode(r)
		if err != nil {
			return nil, nil, err
		}
		instrs = append(instrs, instr)
		offsets = append(offsets, start)
		if stopOpcode >= 0 && instr.Name == "stopObjectCode" {
			break
		}
	}
	return instrs, offsets, nil
}
