package resource

import (
	"github.com/pkg/errors"

	"j5.nz/mi1rando/internal/binio"
)

// ObjectEvent maps a verb id to the byte offset, within Object.Data, of
// that verb's compiled script.
type ObjectEvent struct {
	VerbID     byte
	CodeOffset uint16
}

// Object is a room's OC chunk: the fixed-shape placement/walk-box header
// used by the room's graphics and walking code, a verb dispatch table, the
// object's display name, and the verbs' compiled bytecode.
//
// Padding holds the 6 bytes this port does not give independent meaning to
// (between the verb table's terminator and the object's name); it is kept
// and re-emitted byte-for-byte rather than assumed to be all zero.
type Object struct {
	ID            int16
	Unk           byte
	XPos          byte
	YPos          byte
	ParentState   bool
	Width         byte
	Parent        byte
	WalkX, WalkY  int16
	Height        byte
	ActorDir      bool
	NameRawOffset byte
	Events        []ObjectEvent
	Padding       []byte
	Name          string
	Data          []byte
}

// ParseObject decodes an OC leaf chunk's body.
func ParseObject(body []byte) (*Object, error) {
	r := binio.NewReader(body)
	obj := &Object{}

	id, err := r.I16LE()
	if err != nil {
		return nil, errors.Wrap(err, "resource: object id")
	}
	obj.ID = id

	if obj.Unk, err = r.U8(); err != nil {
		return nil, errors.Wrap(err, "resource: object unk")
	}
	if obj.XPos, err = r.U8(); err != nil {
		return nil, errors.Wrap(err, "resource: object x_pos")
	}
	yp, err := r.U8()
	if err != nil {
		return nil, errors.Wrap(err, "resource: object y_pos/parent_state")
	}
	obj.YPos = yp & 0x7F
	obj.ParentState = yp&0x80 != 0
	if obj.Width, err = r.U8(); err != nil {
		return nil, errors.Wrap(err, "resource: object width")
	}
	if obj.Parent, err = r.U8(); err != nil {
		return nil, errors.Wrap(err, "resource: object parent")
	}
	if obj.WalkX, err = r.I16LE(); err != nil {
		return nil, errors.Wrap(err, "resource: object walk_x")
	}
	if obj.WalkY, err = r.I16LE(); err != nil {
		return nil, errors.Wrap(err, "resource: object walk_y")
	}
	hd, err := r.U8()
	if err != nil {
		return nil, errors.Wrap(err, "resource: object height/actor_dir")
	}
	obj.Height = hd & 0x7F
	obj.ActorDir = hd&0x80 != 0
	if obj.NameRawOffset, err = r.U8(); err != nil {
		return nil, errors.Wrap(err, "resource: object name_raw_offset")
	}

	for {
		verbID, err := r.U8()
		if err != nil {
			return nil, errors.Wrap(err, "resource: object event verb id")
		}
		if verbID == 0 {
			break
		}
		codeOffset, err := r.U16LE()
		if err != nil {
			return nil, errors.Wrapf(err, "resource: object event %d code offset", verbID)
		}
		obj.Events = append(obj.Events, ObjectEvent{VerbID: verbID, CodeOffset: codeOffset})
	}

	padding, err := r.Bytes(6)
	if err != nil {
		return nil, errors.Wrap(err, "resource: object padding")
	}
	obj.Padding = append([]byte(nil), padding...)

	name, err := r.CString()
	if err != nil {
		return nil, errors.Wrap(err, "resource: object name")
	}
	obj.Name = string(name)

	data, err := r.Bytes(r.Len())
	if err != nil {
		return nil, errors.Wrap(err, "resource: object data")
	}
	obj.Data = append([]byte(nil), data...)

	return obj, nil
}

// EmitObject re-serializes an OC leaf chunk's body.
func EmitObject(obj *Object) []byte {
	w := binio.NewWriter()
	w.I16LE(obj.ID)
	w.U8(obj.Unk)
	w.U8(obj.XPos)
	yp := obj.YPos & 0x7F
	if obj.ParentState {
		yp |= 0x80
	}
	w.U8(yp)
	w.U8(obj.Width)
	w.U8(obj.Parent)
	w.I16LE(obj.WalkX)
	w.I16LE(obj.WalkY)
	hd := obj.Height & 0x7F
	if obj.ActorDir {
		hd |= 0x80
	}
	w.U8(hd)
	w.U8(obj.NameRawOffset)
	for _, ev := range obj.Events {
		w.U8(ev.VerbID)
		w.U16LE(ev.CodeOffset)
	}
	w.U8(0)
	padding := obj.Padding
	if len(padding) != 6 {
		padding = make([]byte, 6)
	}
	w.Raw(padding)
	w.CString([]byte(obj.Name))
	w.Raw(obj.Data)
	return w.Bytes()
}
