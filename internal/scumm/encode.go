package scumm

import (
	"github.com/pkg/errors"

	"j5.nz/mi1rando/internal/binio"
)

func writeVar(w *binio.Writer, v VarRef) {
	w.U16LE(v.ID)
	if v.Extra != nil {
		w.U16LE(*v.Extra)
	}
}

// writeWordOrVar writes v (a VarRef or an int16) and reports whether it
// was a VarRef, the value callers pass back as a colour bit.
func writeWordOrVar(w *binio.Writer, v any) (bool, error) {
	switch t := v.(type) {
	case VarRef:
		writeVar(w, t)
		return true, nil
	case int16:
		w.I16LE(t)
		return false, nil
	default:
		return false, errors.Errorf("scumm: expected VarRef or int16, got %T", v)
	}
}

func writeByteOrVar(w *binio.Writer, v any) (bool, error) {
	switch t := v.(type) {
	case VarRef:
		writeVar(w, t)
		return true, nil
	case byte:
		w.U8(t)
		return false, nil
	default:
		return false, errors.Errorf("scumm: expected VarRef or byte, got %T", v)
	}
}

func writeVararg(w *binio.Writer, args []any) error {
	for _, a := range args {
		switch t := a.(type) {
		case VarRef:
			w.U8(varargVar)
			writeVar(w, t)
		case int16:
			w.U8(varargWord)
			w.I16LE(t)
		default:
			return errors.Errorf("scumm: vararg entry has type %T", a)
		}
	}
	w.U8(varargEnd)
	return nil
}

func writeClassList(w *binio.Writer, classes []any) error {
	for _, c := range classes {
		switch t := c.(type) {
		case VarRef:
			w.U8(varargVar)
			writeVar(w, t)
		case int16:
			w.U8(varargWord)
			w.I16LE(t)
		default:
			return errors.Errorf("scumm: classList entry has type %T", c)
		}
	}
	w.U8(varargEnd)
	return nil
}

// Encode serializes a single instruction to bytes. Every opcode decodeBody
// understands has a matching case here; anything else (including every
// instruction built by hand without going through Decode first, unless it
// sets one of these names) falls back to Raw, which must be non-nil in
// that case.
func Encode(instr Instr) ([]byte, error) {
	w := binio.NewWriter()
	if err := encodeBody(w, instr); err != nil {
		if errors.Is(err, errUnsupportedOpcode) {
			if instr.Raw == nil {
				return nil, errors.Errorf("scumm: instruction %q has no encoder and no raw fallback", instr.Name)
			}
			return append([]byte(nil), instr.Raw...), nil
		}
		return nil, err
	}
	return w.Bytes(), nil
}

var errUnsupportedOpcode = errors.New("scumm: unsupported opcode for encoding")

func encodeBody(w *binio.Writer, instr Instr) error {
	switch instr.Name {
	case "stopObjectCode":
		w.U8(0x00)
		return nil

	case "putActor":
		f1, err := flagOf(instr.Args["act"])
		if err != nil {
			return err
		}
		f2, err := flagOf(instr.Args["x"])
		if err != nil {
			return err
		}
		f3, err := flagOf(instr.Args["y"])
		if err != nil {
			return err
		}
		op := byte(0x01)
		if f1 {
			op |= 0x80
		}
		if f2 {
			op |= 0x40
		}
		if f3 {
			op |= 0x20
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["act"]); err != nil {
			return err
		}
		if _, err := writeWordOrVar(w, instr.Args["x"]); err != nil {
			return err
		}
		if _, err := writeWordOrVar(w, instr.Args["y"]); err != nil {
			return err
		}
		return nil

	case "startMusic":
		f1, err := flagOf(instr.Args["sound"])
		if err != nil {
			return err
		}
		op := byte(0x02)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		_, err = writeByteOrVar(w, instr.Args["sound"])
		return err

	case "stopMusic":
		w.U8(0x02 | 0x20)
		return nil

	case "getActorRoom":
		f1, err := flagOf(instr.Args["act"])
		if err != nil {
			return err
		}
		op := byte(0x03)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		writeVar(w, *instr.Target)
		_, err = writeByteOrVar(w, instr.Args["act"])
		return err

	case "isGreaterEqual", "isNotEqual", "isLessEqual", "isEqual":
		kinds := map[string][2]bool{
			"isGreaterEqual": {false, false},
			"isNotEqual":     {false, true},
			"isLessEqual":    {true, false},
			"isEqual":        {true, true},
		}
		f1, err := flagOf(instr.Args["b"])
		if err != nil {
			return err
		}
		k := kinds[instr.Name]
		op := byte(0x04)
		if f1 {
			op |= 0x80
		}
		if k[0] {
			op |= 0x40
		}
		if k[1] {
			op |= 0x20
		}
		w.U8(op)
		writeVar(w, instr.Args["a"].(VarRef))
		if _, err := writeWordOrVar(w, instr.Args["b"]); err != nil {
			return err
		}
		w.I16LE(instr.Args["offset"].(int16))
		return nil

	case "drawObject", "pickupObject":
		f1, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		op := byte(0x05)
		if f1 {
			op |= 0x80
		}
		if instr.Name == "pickupObject" {
			op |= 0x20
		}
		w.U8(op)
		_, err = writeWordOrVar(w, instr.Args["obj"])
		return err

	case "getActorElevation", "getActorX":
		f1, err := flagOf(instr.Args["act"])
		if err != nil {
			return err
		}
		op := byte(0x06)
		if f1 {
			op |= 0x80
		}
		if instr.Name == "getActorX" {
			op |= 0x20
		}
		w.U8(op)
		writeVar(w, *instr.Target)
		_, err = writeByteOrVar(w, instr.Args["act"])
		return err

	case "setState", "setOwner":
		f1, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		f2, err := flagOf(instr.Args["val"])
		if err != nil {
			return err
		}
		op := byte(0x07)
		if f1 {
			op |= 0x80
		}
		if f2 {
			op |= 0x40
		}
		if instr.Name == "setOwner" {
			op |= 0x20
		}
		w.U8(op)
		if _, err := writeWordOrVar(w, instr.Args["obj"]); err != nil {
			return err
		}
		_, err = writeByteOrVar(w, instr.Args["val"])
		return err

	case "print", "printEgo":
		if instr.Name == "printEgo" {
			w.U8(0x08 | 0x20)
			return encodeTextOps(w, instr.Args["ops"].([]map[string]any))
		}
		f1, err := flagOf(instr.Args["act"])
		if err != nil {
			return err
		}
		op := byte(0x08)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["act"]); err != nil {
			return err
		}
		return encodeTextOps(w, instr.Args["ops"].([]map[string]any))

	case "startScript":
		f1, err := flagOf(instr.Args["script"])
		if err != nil {
			return err
		}
		op := byte(0x09)
		if f1 {
			op |= 0x80
		}
		if instr.Args["recursive"].(bool) {
			op |= 0x40
		}
		if instr.Args["freezeResistant"].(bool) {
			op |= 0x20
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["script"]); err != nil {
			return err
		}
		return writeVararg(w, instr.Args["args"].([]any))

	case "chainScript":
		f1, err := flagOf(instr.Args["script"])
		if err != nil {
			return err
		}
		op := byte(0x0A) | 0x20
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["script"]); err != nil {
			return err
		}
		return writeVararg(w, instr.Args["args"].([]any))

	case "getVerbEntrypoint":
		f1, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		f2, err := flagOf(instr.Args["verb"])
		if err != nil {
			return err
		}
		op := byte(0x0A)
		if f1 {
			op |= 0x80
		}
		if f2 {
			op |= 0x40
		}
		w.U8(op)
		writeVar(w, *instr.Target)
		if _, err := writeWordOrVar(w, instr.Args["obj"]); err != nil {
			return err
		}
		_, err = writeByteOrVar(w, instr.Args["verb"])
		return err

	case "setClass":
		f1, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		op := byte(0x0B)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		if _, err := writeWordOrVar(w, instr.Args["obj"]); err != nil {
			return err
		}
		return writeClassList(w, instr.Args["classes"].([]any))

	case "roomOps":
		w.U8(0x0C)
		return encodeRoomOps(w, instr.Args["ops"].([]map[string]any))

	case "putActorInRoom":
		f1, err := flagOf(instr.Args["act"])
		if err != nil {
			return err
		}
		f2, err := flagOf(instr.Args["room"])
		if err != nil {
			return err
		}
		op := byte(0x0D)
		if f1 {
			op |= 0x80
		}
		if f2 {
			op |= 0x40
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["act"]); err != nil {
			return err
		}
		_, err = writeByteOrVar(w, instr.Args["room"])
		return err

	case "loadRoomWithEgo":
		f1, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		f2, err := flagOf(instr.Args["room"])
		if err != nil {
			return err
		}
		op := byte(0x0E)
		if f1 {
			op |= 0x80
		}
		if f2 {
			op |= 0x40
		}
		w.U8(op)
		if _, err := writeWordOrVar(w, instr.Args["obj"]); err != nil {
			return err
		}
		if _, err := writeByteOrVar(w, instr.Args["room"]); err != nil {
			return err
		}
		w.I16LE(instr.Args["x"].(int16))
		w.I16LE(instr.Args["y"].(int16))
		return nil

	case "ifState", "ifNotState":
		f1, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		f2, err := flagOf(instr.Args["val"])
		if err != nil {
			return err
		}
		op := byte(0x0F)
		if f1 {
			op |= 0x80
		}
		if f2 {
			op |= 0x40
		}
		if instr.Name == "ifNotState" {
			op |= 0x20
		}
		w.U8(op)
		if _, err := writeWordOrVar(w, instr.Args["obj"]); err != nil {
			return err
		}
		if _, err := writeByteOrVar(w, instr.Args["val"]); err != nil {
			return err
		}
		w.I16LE(instr.Args["offset"].(int16))
		return nil

	case "walkActorTo", "walkActorToObject":
		f1, err := flagOf(instr.Args["act"])
		if err != nil {
			return err
		}
		op := byte(0x10)
		if f1 {
			op |= 0x80
		}
		if instr.Name == "walkActorToObject" {
			op |= 0x20
			f2, err := flagOf(instr.Args["obj"])
			if err != nil {
				return err
			}
			if f2 {
				op |= 0x40
			}
			w.U8(op)
			if _, err := writeByteOrVar(w, instr.Args["act"]); err != nil {
				return err
			}
			_, err = writeWordOrVar(w, instr.Args["obj"])
			return err
		}
		f2, err := flagOf(instr.Args["x"])
		if err != nil {
			return err
		}
		if f2 {
			op |= 0x40
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["act"]); err != nil {
			return err
		}
		if _, err := writeWordOrVar(w, instr.Args["x"]); err != nil {
			return err
		}
		w.I16LE(instr.Args["y"].(int16))
		return nil

	case "getObjectOwner":
		f1, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		op := byte(0x11)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		writeVar(w, *instr.Target)
		_, err = writeWordOrVar(w, instr.Args["obj"])
		return err

	case "panCameraTo":
		f1, err := flagOf(instr.Args["x"])
		if err != nil {
			return err
		}
		op := byte(0x12 | 0x20)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		_, err = writeWordOrVar(w, instr.Args["x"])
		return err

	case "actorFollowCamera":
		f1, err := flagOf(instr.Args["act"])
		if err != nil {
			return err
		}
		op := byte(0x12)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		_, err = writeByteOrVar(w, instr.Args["act"])
		return err

	case "actorOps":
		f1, err := flagOf(instr.Args["act"])
		if err != nil {
			return err
		}
		op := byte(0x13)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["act"]); err != nil {
			return err
		}
		return encodeActorOps(w, instr.Args["ops"].([]map[string]any))

	case "stringOps":
		w.U8(0x14)
		return encodeStringOps(w, instr.Args["ops"].([]map[string]any))

	case "cursorCommand":
		w.U8(0x14 | 0x20)
		return encodeCursorCommand(w, instr.Args["ops"].([]map[string]any))

	case "add", "subtract", "multiply", "divide":
		f1, err := flagOf(instr.Args["a"])
		if err != nil {
			return err
		}
		op := byte(0x15)
		if f1 {
			op |= 0x80
		}
		switch instr.Name {
		case "subtract":
			op |= 0x40
		case "multiply":
			op |= 0x20
		case "divide":
			op |= 0x40 | 0x20
		}
		w.U8(op)
		writeVar(w, *instr.Target)
		_, err = writeWordOrVar(w, instr.Args["a"])
		return err

	case "getRandomNr":
		f1, err := flagOf(instr.Args["max"])
		if err != nil {
			return err
		}
		op := byte(0x16)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		writeVar(w, *instr.Target)
		_, err = writeByteOrVar(w, instr.Args["max"])
		return err

	case "startObject":
		f1, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		f2, err := flagOf(instr.Args["script"])
		if err != nil {
			return err
		}
		op := byte(0x17)
		if f1 {
			op |= 0x80
		}
		if f2 {
			op |= 0x40
		}
		w.U8(op)
		if _, err := writeWordOrVar(w, instr.Args["obj"]); err != nil {
			return err
		}
		if _, err := writeByteOrVar(w, instr.Args["script"]); err != nil {
			return err
		}
		return writeVararg(w, instr.Args["args"].([]any))

	case "jumpRelative":
		w.U8(0x18)
		w.I16LE(instr.Args["offset"].(int16))
		return nil

	case "doSentence":
		f1, err := flagOf(instr.Args["verb"])
		if err != nil {
			return err
		}
		op := byte(0x19)
		if f1 {
			op |= 0x80
		}
		if stop, _ := instr.Args["stop"].(bool); stop {
			w.U8(op)
			_, err = writeByteOrVar(w, instr.Args["verb"])
			return err
		}
		f2, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		f3, err := flagOf(instr.Args["obj2"])
		if err != nil {
			return err
		}
		if f2 {
			op |= 0x40
		}
		if f3 {
			op |= 0x20
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["verb"]); err != nil {
			return err
		}
		if _, err := writeWordOrVar(w, instr.Args["obj"]); err != nil {
			return err
		}
		_, err = writeWordOrVar(w, instr.Args["obj2"])
		return err

	case "move":
		f1, err := flagOf(instr.Args["value"])
		if err != nil {
			return err
		}
		op := byte(0x1A)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		writeVar(w, *instr.Target)
		_, err = writeWordOrVar(w, instr.Args["value"])
		return err

	case "verbOps":
		f1, err := flagOf(instr.Args["verb"])
		if err != nil {
			return err
		}
		op := byte(0x1B)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["verb"]); err != nil {
			return err
		}
		return encodeVerbOps(w, instr.Args["ops"].([]map[string]any))

	case "startSound", "stopSound":
		f1, err := flagOf(instr.Args["sound"])
		if err != nil {
			return err
		}
		op := byte(0x1C)
		if f1 {
			op |= 0x80
		}
		if instr.Name == "stopSound" {
			op |= 0x20
		}
		w.U8(op)
		_, err = writeByteOrVar(w, instr.Args["sound"])
		return err

	case "ifClassOfIs":
		f1, err := flagOf(instr.Args["obj"])
		if err != nil {
			return err
		}
		op := byte(0x1D)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		if _, err := writeWordOrVar(w, instr.Args["obj"]); err != nil {
			return err
		}
		if err := writeClassList(w, instr.Args["classes"].([]any)); err != nil {
			return err
		}
		w.I16LE(instr.Args["offset"].(int16))
		return nil

	case "cutscene":
		w.U8(0x1D | 0x40)
		return writeVararg(w, instr.Args["args"].([]any))

	case "endCutscene":
		w.U8(0x1D | 0x40 | 0x20)
		return nil

	case "matrixOps":
		w.U8(0x1E)
		return encodeMatrixOps(w, instr.Args["ops"].([]map[string]any))

	case "increment", "decrement":
		op := byte(0x1E | 0x20)
		if instr.Name == "decrement" {
			op |= 0x40
		}
		w.U8(op)
		writeVar(w, *instr.Target)
		return nil

	case "isActorInBox":
		f1, err := flagOf(instr.Args["act"])
		if err != nil {
			return err
		}
		f3, err := flagOf(instr.Args["box"])
		if err != nil {
			return err
		}
		op := byte(0x1F)
		if f1 {
			op |= 0x80
		}
		if f3 {
			op |= 0x20
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["act"]); err != nil {
			return err
		}
		if _, err := writeByteOrVar(w, instr.Args["box"]); err != nil {
			return err
		}
		w.I16LE(instr.Args["offset"].(int16))
		return nil

	case "breakHere":
		w.U8(0x1F | 0x40)
		return nil

	case "systemOps":
		w.U8(0x1F | 0x40 | 0x20)
		w.U8(instr.Args["sub"].(byte))
		return nil

	case "delayVariable":
		w.U8(0x2B)
		writeVar(w, instr.Args["var"].(VarRef))
		return nil

	case "beginOverride", "endOverride":
		w.U8(0x58)
		w.U8(instr.Args["test"].(byte))
		return nil

	case "oldRoomEffect":
		var f1 bool
		var err error
		effect, hasEffect := instr.Args["effect"]
		if hasEffect {
			f1, err = flagOf(effect)
			if err != nil {
				return err
			}
		}
		op := byte(0x5C)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		w.U8(instr.Args["op"].(byte))
		if hasEffect {
			_, err = writeWordOrVar(w, effect)
			return err
		}
		return nil

	case "lights":
		f1, err := flagOf(instr.Args["lights"])
		if err != nil {
			return err
		}
		op := byte(0x70)
		if f1 {
			op |= 0x80
		}
		w.U8(op)
		if _, err := writeByteOrVar(w, instr.Args["lights"]); err != nil {
			return err
		}
		w.U8(instr.Args["xStrips"].(byte))
		w.U8(instr.Args["yStrips"].(byte))
		return nil

	case "expression":
		w.U8(0xAC)
		writeVar(w, *instr.Target)
		return encodeExpression(w, instr.Args["expr"].([]map[string]any))

	case "pseudoRoom":
		w.U8(0xCC)
		w.U8(instr.Args["val"].(byte))
		for _, b := range instr.Args["sources"].([]byte) {
			w.U8(b)
		}
		w.U8(0x00)
		return nil

	default:
		return errUnsupportedOpcode
	}
}

func flagOf(v any) (bool, error) {
	switch v.(type) {
	case VarRef:
		return true, nil
	case int16, byte:
		return false, nil
	default:
		return false, errors.Errorf("scumm: operand has unexpected type %T", v)
	}
}

func encodeActorOps(w *binio.Writer, ops []map[string]any) error {
	for _, entry := range ops {
		w.U8(entry["sub"].(byte))
		w.U8(entry["arg"].(byte))
	}
	w.U8(0xFF)
	return nil
}

func encodeRoomOps(w *binio.Writer, ops []map[string]any) error {
	for _, entry := range ops {
		sub := entry["sub"].(byte)
		w.U8(sub)
		switch entry["op"] {
		case "SO_ROOM_SCREEN":
			w.I16LE(entry["a"].(int16))
			w.I16LE(entry["b"].(int16))
		case "SO_ROOM_PALETTE":
			w.U8(entry["r"].(byte))
			w.U8(entry["g"].(byte))
			w.U8(entry["b"].(byte))
			w.U8(entry["idx"].(byte))
		}
	}
	w.U8(0xFF)
	return nil
}

func encodeVerbOps(w *binio.Writer, ops []map[string]any) error {
	for _, entry := range ops {
		w.U8(entry["sub"].(byte))
		if entry["op"] == "SO_VERB_NAME_STR" {
			if err := encodeTextOps(w, entry["str"].([]map[string]any)); err != nil {
				return err
			}
			continue
		}
		w.U16LE(entry["arg"].(uint16))
	}
	w.U8(0xFF)
	return nil
}

func encodeStringOps(w *binio.Writer, ops []map[string]any) error {
	for _, entry := range ops {
		w.U8(entry["sub"].(byte))
		w.U16LE(entry["arg"].(uint16))
	}
	w.U8(0xFF)
	return nil
}

func encodeCursorCommand(w *binio.Writer, ops []map[string]any) error {
	for _, entry := range ops {
		w.U8(entry["sub"].(byte))
	}
	w.U8(0xFF)
	return nil
}

func encodeMatrixOps(w *binio.Writer, ops []map[string]any) error {
	for _, entry := range ops {
		w.U8(entry["sub"].(byte))
		w.U8(entry["arg"].(byte))
	}
	w.U8(0xFF)
	return nil
}

func encodeExpression(w *binio.Writer, entries []map[string]any) error {
	for _, entry := range entries {
		sub := entry["op"].(byte)
		switch sub {
		case 1:
			v := entry["value"]
			f1, err := flagOf(v)
			if err != nil {
				return err
			}
			op := sub
			if f1 {
				op |= 0x80
			}
			w.U8(op)
			if _, err := writeWordOrVar(w, v); err != nil {
				return err
			}
		case 6:
			w.U8(sub)
			b, err := Encode(entry["instr"].(Instr))
			if err != nil {
				return err
			}
			w.Raw(b)
		default:
			w.U8(sub)
		}
	}
	w.U8(0xFF)
	return nil
}
