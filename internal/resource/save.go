package resource

import (
	"github.com/pkg/errors"

	"j5.nz/mi1rando/internal/container"
	"j5.nz/mi1rando/internal/scumm"
)

// WriteFile hands back one archive or the master index's final bytes by
// name, the save-side counterpart of ReadFile.
type WriteFile func(name string, data []byte) error

// Save re-encodes every script and object a mutator touched, repairs the
// master index's resource tables and every archive's FO table to match
// the new chunk layout, then re-serializes and writes every file.
//
// Mutators are expected to work by rewriting a GlobalScript/LocalScript/
// RoomScript's Instrs in place (leaving Offsets as the offsets decode
// produced, which EncodeScript needs to repair relative jumps) or an
// ObjectScript's Verbs in place. Save does not itself know what changed;
// it always re-encodes everything, which is harmless (a no-op mutator
// round-trips to the same bytes) and keeps this path simple.
func (g *Game) Save(write WriteFile) error {
	for _, room := range g.Rooms {
		if err := room.reencode(); err != nil {
			return errors.Wrapf(err, "resource: re-encoding room %d", room.ID)
		}
	}

	if err := g.repairGlobalIndex("0S", func(r *Room) map[int]*container.Chunk {
		out := make(map[int]*container.Chunk, len(r.Globals))
		for id, gl := range r.Globals {
			out[id] = gl.Chunk
		}
		return out
	}); err != nil {
		return err
	}
	if err := g.repairGlobalIndex("0N", func(r *Room) map[int]*container.Chunk {
		return r.Sounds
	}); err != nil {
		return err
	}
	if err := g.repairGlobalIndex("0C", func(r *Room) map[int]*container.Chunk {
		return r.Costumes
	}); err != nil {
		return err
	}

	if err := g.repairFOTables(); err != nil {
		return err
	}

	if err := write("000.LFL", g.Index.Emit()); err != nil {
		return errors.Wrap(err, "resource: writing 000.LFL")
	}
	for _, name := range ArchiveNames {
		if err := write(name, g.Archives[name].Emit()); err != nil {
			return errors.Wrapf(err, "resource: writing %s", name)
		}
	}
	return nil
}

func (room *Room) reencode() error {
	for id, gl := range room.Globals {
		data, err := scumm.EncodeScript(gl.Instrs, gl.Offsets)
		if err != nil {
			return errors.Wrapf(err, "global script %d", id)
		}
		gl.Chunk.Body = data
	}
	for id, ls := range room.Locals {
		data, err := scumm.EncodeScript(ls.Instrs, ls.Offsets)
		if err != nil {
			return errors.Wrapf(err, "local script %d", id)
		}
		ls.Chunk.Body = append([]byte{ls.ID}, data...)
	}
	if room.Entry != nil {
		data, err := scumm.EncodeScript(room.Entry.Instrs, room.Entry.Offsets)
		if err != nil {
			return errors.Wrap(err, "entry script")
		}
		room.Entry.Chunk.Body = data
	}
	if room.Exit != nil {
		data, err := scumm.EncodeScript(room.Exit.Instrs, room.Exit.Offsets)
		if err != nil {
			return errors.Wrap(err, "exit script")
		}
		room.Exit.Chunk.Body = data
	}
	for id, obj := range room.Objects {
		if err := obj.reencode(); err != nil {
			return errors.Wrapf(err, "object %d", id)
		}
	}
	return nil
}

// reencode rebuilds an object's verb dispatch table and data blob from its
// Verbs map, preserving the original verb order (the table's shape does
// not change; mutators rewrite a verb's script, not the set of verbs an
// object responds to), then recomputes every CodeOffset against the new
// layout before re-emitting the OC chunk body.
func (obj *ObjectScript) reencode() error {
	dataOffset := objectDataOffset(obj.Obj)
	newEvents := make([]ObjectEvent, 0, len(obj.Obj.Events))
	var data []byte
	for _, ev := range obj.Obj.Events {
		instrs := obj.Verbs[ev.VerbID]
		offsets := obj.VerbOffsets[ev.VerbID]
		encoded, err := scumm.EncodeScript(instrs, offsets)
		if err != nil {
			return errors.Wrapf(err, "verb %d", ev.VerbID)
		}
		newEvents = append(newEvents, ObjectEvent{VerbID: ev.VerbID, CodeOffset: uint16(dataOffset + len(data))})
		data = append(data, encoded...)
	}
	obj.Obj.Events = newEvents
	obj.Obj.Data = data
	obj.Chunk.Body = EmitObject(obj.Obj)
	return nil
}

// repairGlobalIndex recomputes every entry of the named 000.LFL resource
// table (0S, 0N, or 0C) from chunksOf(room)'s current position within its
// room's LF, after every room's scripts/objects have already been
// re-encoded to their final size.
func (g *Game) repairGlobalIndex(tag string, chunksOf func(*Room) map[int]*container.Chunk) error {
	chunk := findTag(g.Index.Root, tag)
	if chunk == nil {
		return errors.Errorf("resource: 000.LFL has no %q table to repair", tag)
	}
	items, err := ParseGlobalIndex(chunk.Body)
	if err != nil {
		return errors.Wrapf(err, "resource: parsing %q table", tag)
	}

	for _, room := range g.Rooms {
		for id, c := range chunksOf(room) {
			if id < 0 || id >= len(items) {
				return errors.Errorf("resource: room %d has %s id %d outside the 000.LFL %q table (len %d)", room.ID, tag, id, tag, len(items))
			}
			idx := indexOfChunk(room.LF.Children, c)
			if idx < 0 {
				return errors.Errorf("resource: room %d %s id %d chunk is no longer one of its LF's children", room.ID, tag, id)
			}
			items[id].RoomID = byte(room.ID)
			items[id].Offset = uint32(container.OffsetOf(room.LF.Children, idx))
		}
	}

	chunk.Body = EmitGlobalIndex(items)
	return nil
}

// repairFOTables recomputes every archive's FO table (the room-id -> LF
// byte offset table that sits alongside the rooms themselves, inside each
// LE) from the rooms' current position within their LE.
func (g *Game) repairFOTables() error {
	for _, archName := range ArchiveNames {
		arch := g.Archives[archName]
		for _, le := range arch.Root {
			if le.Tag != "LE" {
				continue
			}
			fo := findTag(le.Children, "FO")
			if fo == nil {
				continue
			}
			entries, err := ParseFO(fo.Body)
			if err != nil {
				return errors.Wrapf(err, "resource: parsing %s FO table", archName)
			}
			for i := range entries {
				idx := -1
				for k, lf := range le.Children {
					if lf.Tag == "LF" && lf.RoomID == uint16(entries[i].RoomID) {
						idx = k
						break
					}
				}
				if idx < 0 {
					return errors.Errorf("resource: %s FO table references room %d, which is no longer present", archName, entries[i].RoomID)
				}
				entries[i].Offset = uint32(container.OffsetOf(le.Children, idx)) + 6
			}
			fo.Body = EmitFO(entries)
		}
	}
	return nil
}
