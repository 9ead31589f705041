package scumm

import (
	"github.com/pkg/errors"

	"j5.nz/mi1rando/internal/binio"
)

// decodeTextTokens reads a dialogue/caption text stream terminated by a
// 0x00 byte. Literal bytes accumulate into a "text" token, flushed
// whenever a 0xFF/0xFE escape byte introduces a control token (newline,
// keepText, wait, getInt/getVerb/getName/getString var substitutions,
// startAnim/setColor/setFont immediates).
func decodeTextTokens(r *binio.Reader) ([]TextToken, error) {
	var out []TextToken
	var lit []byte
	flush := func() {
		if len(lit) > 0 {
			out = append(out, TextToken{Name: "text", Data: append([]byte(nil), lit...)})
			lit = nil
		}
	}
	for {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		if b == 0x00 {
			flush()
			return out, nil
		}
		if b != 0xFF && b != 0xFE {
			lit = append(lit, b)
			continue
		}
		flush()
		code, err := r.U8()
		if err != nil {
			return nil, err
		}
		switch code {
		case 1:
			out = append(out, TextToken{Name: "newline"})
		case 2:
			out = append(out, TextToken{Name: "keepText"})
		case 3:
			out = append(out, TextToken{Name: "wait"})
		case 4, 5, 6, 7:
			v, err := readVar(r)
			if err != nil {
				return nil, err
			}
			names := map[byte]string{4: "getInt", 5: "getVerb", 6: "getName", 7: "getString"}
			out = append(out, TextToken{Name: names[code], Data: v})
		case 9:
			v, err := r.I16LE()
			if err != nil {
				return nil, err
			}
			out = append(out, TextToken{Name: "startAnim", Data: v})
		case 12:
			v, err := r.I16LE()
			if err != nil {
				return nil, err
			}
			out = append(out, TextToken{Name: "setColor", Data: v})
		case 14:
			v, err := r.I16LE()
			if err != nil {
				return nil, err
			}
			out = append(out, TextToken{Name: "setFont", Data: v})
		default:
			return nil, errors.Errorf("scumm: unknown text escape code %d", code)
		}
	}
}

var textEscapeCodes = map[string]byte{
	"newline":    1,
	"keepText":   2,
	"wait":       3,
	"getInt":     4,
	"getVerb":    5,
	"getName":    6,
	"getString":  7,
	"startAnim":  9,
	"setColor":   12,
	"setFont":    14,
}

func encodeTextTokens(w *binio.Writer, tokens []TextToken) error {
	for _, tok := range tokens {
		if tok.Name == "text" {
			data, ok := tok.Data.([]byte)
			if !ok {
				return errors.Errorf("scumm: text token data is %T, want []byte", tok.Data)
			}
			w.Raw(data)
			continue
		}
		code, ok := textEscapeCodes[tok.Name]
		if !ok {
			return errors.Errorf("scumm: unknown text token %q", tok.Name)
		}
		w.U8(0xFF)
		w.U8(code)
		switch tok.Name {
		case "getInt", "getVerb", "getName", "getString":
			v, ok := tok.Data.(VarRef)
			if !ok {
				return errors.Errorf("scumm: %s token data is %T, want VarRef", tok.Name, tok.Data)
			}
			w.U16LE(v.ID)
			if v.Extra != nil {
				w.U16LE(*v.Extra)
			}
		case "startAnim", "setColor", "setFont":
			v, ok := tok.Data.(int16)
			if !ok {
				return errors.Errorf("scumm: %s token data is %T, want int16", tok.Name, tok.Data)
			}
			w.I16LE(v)
		}
	}
	w.U8(0x00)
	return nil
}

// decodeTextOps reads the sequence of print/printEgo sub-operations
// (position, colour, clipping, alignment flags) terminated either by a
// 0xFF sentinel or, for SO_TEXTSTRING, by the embedded text stream's own
// 0x00 terminator (SO_TEXTSTRING always ends the sub-operation list, as
// in the original encoder/decoder pair).
func decodeTextOps(r *binio.Reader) ([]map[string]any, error) {
	var out []map[string]any
	for {
		sub, err := r.U8()
		if err != nil {
			return nil, err
		}
		if sub == 0xFF {
			return out, nil
		}
		switch sub & 0x1F {
		case 0x00: // SO_AT
			x, err := r.I16LE()
			if err != nil {
				return nil, err
			}
			y, err := r.I16LE()
			if err != nil {
				return nil, err
			}
			out = append(out, map[string]any{"op": "SO_AT", "x": x, "y": y})
		case 0x01: // SO_COLOR
			c, err := r.U8()
			if err != nil {
				return nil, err
			}
			out = append(out, map[string]any{"op": "SO_COLOR", "color": c})
		case 0x02: // SO_CLIPPED
			width, err := r.I16LE()
			if err != nil {
				return nil, err
			}
			out = append(out, map[string]any{"op": "SO_CLIPPED", "width": width})
		case 0x04:
			out = append(out, map[string]any{"op": "SO_CENTER"})
		case 0x06:
			out = append(out, map[string]any{"op": "SO_LEFT"})
		case 0x07:
			out = append(out, map[string]any{"op": "SO_OVERHEAD"})
		case 0x0C:
			out = append(out, map[string]any{"op": "SO_SAY_VOICE"})
		case 0x0F: // SO_TEXTSTRING, terminal
			tokens, err := decodeTextTokens(r)
			if err != nil {
				return nil, err
			}
			out = append(out, map[string]any{"op": "SO_TEXTSTRING", "str": tokens})
			return out, nil
		default:
			return nil, errors.Errorf("scumm: unknown print sub-op 0x%02x", sub)
		}
	}
}

var printSubopCodes = map[string]byte{
	"SO_AT": 0x00, "SO_COLOR": 0x01, "SO_CLIPPED": 0x02, "SO_CENTER": 0x04,
	"SO_LEFT": 0x06, "SO_OVERHEAD": 0x07, "SO_SAY_VOICE": 0x0C, "SO_TEXTSTRING": 0x0F,
}

func encodeTextOps(w *binio.Writer, ops []map[string]any) error {
	for _, entry := range ops {
		name, _ := entry["op"].(string)
		code, ok := printSubopCodes[name]
		if !ok {
			return errors.Errorf("scumm: unknown print sub-op %q", name)
		}
		w.U8(code)
		switch name {
		case "SO_AT":
			w.I16LE(entry["x"].(int16))
			w.I16LE(entry["y"].(int16))
		case "SO_COLOR":
			w.U8(entry["color"].(byte))
		case "SO_CLIPPED":
			w.I16LE(entry["width"].(int16))
		case "SO_TEXTSTRING":
			tokens, ok := entry["str"].([]TextToken)
			if !ok {
				return errors.Errorf("scumm: SO_TEXTSTRING str is %T, want []TextToken", entry["str"])
			}
			return encodeTextTokens(w, tokens)
		}
	}
	w.U8(0xFF)
	return nil
}
