package resource

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"j5.nz/mi1rando/internal/binio"
	"j5.nz/mi1rando/internal/container"
	"j5.nz/mi1rando/internal/scumm"
)

// ArchiveNames lists the four resource archives that make up the game, in
// load order.
var ArchiveNames = []string{"DISK01.LEC", "DISK02.LEC", "DISK03.LEC", "DISK04.LEC"}

// Archive is one DISKnn.LEC file's parsed chunk tree, held de-obfuscated
// (XOR-decoded and, for DISK01.LEC, bodge-fixed) in memory.
type Archive struct {
	Name string
	Root []*container.Chunk
}

// LoadArchive de-obfuscates and parses a DISKnn.LEC file's raw bytes.
func LoadArchive(name string, raw []byte) (*Archive, error) {
	buf := binio.XOR(raw, binio.ArchiveXORKey)
	if name == "DISK01.LEC" {
		if binio.FixDiskOneSoundChunk(buf) {
			logrus.Debug("patched known bit-rot in DISK01.LEC's sound chunk")
		}
	}
	root, err := container.ParseSequence(buf, container.BranchTags())
	if err != nil {
		return nil, errors.Wrapf(err, "resource: parsing %s", name)
	}
	return &Archive{Name: name, Root: root}, nil
}

// Emit re-serializes and re-obfuscates the archive.
func (a *Archive) Emit() []byte {
	return binio.XOR(container.EmitSequence(a.Root), binio.ArchiveXORKey)
}

// MasterIndex is 000.LFL's parsed chunk tree: room names (RN) and the
// global/sound/costume resource lookup tables (0S, 0N, 0C). Unlike the
// DISKnn.LEC archives, the container itself is not XOR-obfuscated; only the
// RN entries' embedded name bytes are.
type MasterIndex struct {
	Root []*container.Chunk
}

// LoadMasterIndex parses a 000.LFL file's raw bytes.
func LoadMasterIndex(raw []byte) (*MasterIndex, error) {
	root, err := container.ParseSequence(raw, container.BranchTags())
	if err != nil {
		return nil, errors.Wrap(err, "resource: parsing 000.LFL")
	}
	return &MasterIndex{Root: root}, nil
}

// Emit re-serializes the master index.
func (m *MasterIndex) Emit() []byte {
	return container.EmitSequence(m.Root)
}

func findTag(chunks []*container.Chunk, tag string) *container.Chunk {
	for _, c := range chunks {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func indexOfChunk(siblings []*container.Chunk, target *container.Chunk) int {
	for i, c := range siblings {
		if c == target {
			return i
		}
	}
	return -1
}

// GlobalScript is a room-keyed global script (an SC chunk sitting directly
// under the room's LF), identified across disk by its 0S table entry.
type GlobalScript struct {
	Chunk   *container.Chunk
	Instrs  []scumm.Instr
	Offsets []int
}

// LocalScript is a room-local script (an LS chunk nested under the room's
// RO), identified by its own one-byte id.
type LocalScript struct {
	Chunk   *container.Chunk
	ID      byte
	Instrs  []scumm.Instr
	Offsets []int
}

// RoomScript is the room's single entry or exit script (an EN or EX chunk
// nested under the room's RO).
type RoomScript struct {
	Chunk   *container.Chunk
	Instrs  []scumm.Instr
	Offsets []int
}

// ObjectScript is a room object (an OC chunk nested under the room's RO):
// its placement/walk-box header and its per-verb compiled scripts.
type ObjectScript struct {
	Chunk       *container.Chunk
	Obj         *Object
	Verbs       map[byte][]scumm.Instr
	VerbOffsets map[byte][]int
}

// Room is the in-memory model of one room: its own LF chunk plus every
// script and object resource scumm.Decode was able to locate inside it.
type Room struct {
	ID       int
	Name     string
	Archive  string
	LF       *container.Chunk
	Globals  map[int]*GlobalScript
	Locals   map[int]*LocalScript
	Objects  map[int]*ObjectScript
	Sounds   map[int]*container.Chunk
	Costumes map[int]*container.Chunk
	Entry    *RoomScript
	Exit     *RoomScript
}

// Game is the whole loaded resource set: the four archives, the master
// index, and the room model built from them.
type Game struct {
	Archives map[string]*Archive
	Index    *MasterIndex
	Rooms    map[int]*Room
}

// ReadFile fetches one archive or the master index's raw bytes by name
// ("DISK01.LEC", ..., "000.LFL"), letting LoadGame stay agnostic to where
// the game's files actually live on disk.
type ReadFile func(name string) ([]byte, error)

// LoadGame reads every archive and the master index via read, then builds
// the room model by cross-referencing the master index's resource tables
// against each room's own chunk layout.
func LoadGame(read ReadFile) (*Game, error) {
	g := &Game{Archives: map[string]*Archive{}}
	for _, name := range ArchiveNames {
		raw, err := read(name)
		if err != nil {
			return nil, errors.Wrapf(err, "resource: reading %s", name)
		}
		arch, err := LoadArchive(name, raw)
		if err != nil {
			return nil, err
		}
		g.Archives[name] = arch
	}

	raw, err := read("000.LFL")
	if err != nil {
		return nil, errors.Wrap(err, "resource: reading 000.LFL")
	}
	g.Index, err = LoadMasterIndex(raw)
	if err != nil {
		return nil, err
	}

	g.Rooms, err = buildRooms(g)
	if err != nil {
		return nil, err
	}
	return g, nil
}

type resourceKey struct {
	roomID byte
	offset uint32
}

func resourceLookup(index *MasterIndex, tag string) (map[resourceKey]int, error) {
	chunk := findTag(index.Root, tag)
	if chunk == nil {
		return nil, errors.Errorf("resource: 000.LFL has no %q table", tag)
	}
	items, err := ParseGlobalIndex(chunk.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "resource: parsing %q table", tag)
	}
	out := make(map[resourceKey]int, len(items))
	for i, it := range items {
		out[resourceKey{it.RoomID, it.Offset}] = i
	}
	return out, nil
}

func buildRooms(g *Game) (map[int]*Room, error) {
	rnChunk := findTag(g.Index.Root, "RN")
	var names map[int]string
	if rnChunk != nil {
		entries, err := ParseRN(rnChunk.Body)
		if err != nil {
			return nil, errors.Wrap(err, "resource: parsing RN table")
		}
		names = make(map[int]string, len(entries))
		for _, e := range entries {
			names[int(e.ID)] = e.Name
		}
	}

	globalLookup, err := resourceLookup(g.Index, "0S")
	if err != nil {
		return nil, err
	}
	soundLookup, err := resourceLookup(g.Index, "0N")
	if err != nil {
		return nil, err
	}
	costumeLookup, err := resourceLookup(g.Index, "0C")
	if err != nil {
		return nil, err
	}

	rooms := map[int]*Room{}
	for _, archName := range ArchiveNames {
		arch := g.Archives[archName]
		for _, le := range arch.Root {
			if le.Tag != "LE" {
				continue
			}
			for _, lf := range le.Children {
				if lf.Tag != "LF" {
					continue
				}
				room, err := buildRoom(archName, lf, names, globalLookup, soundLookup, costumeLookup)
				if err != nil {
					return nil, err
				}
				rooms[room.ID] = room
			}
		}
	}
	return rooms, nil
}

func buildRoom(archName string, lf *container.Chunk, names map[int]string, globalLookup, soundLookup, costumeLookup map[resourceKey]int) (*Room, error) {
	roomID := int(lf.RoomID)
	room := &Room{
		ID:       roomID,
		Name:     names[roomID],
		Archive:  archName,
		LF:       lf,
		Globals:  map[int]*GlobalScript{},
		Locals:   map[int]*LocalScript{},
		Objects:  map[int]*ObjectScript{},
		Sounds:   map[int]*container.Chunk{},
		Costumes: map[int]*container.Chunk{},
	}

	for k, child := range lf.Children {
		offset := uint32(container.OffsetOf(lf.Children, k))
		key := resourceKey{byte(roomID), offset}
		switch child.Tag {
		case "SC":
			id, ok := globalLookup[key]
			if !ok {
				logrus.WithFields(logrus.Fields{"room": roomID, "offset": offset}).
					Warn("global script chunk has no matching 0S table entry")
				continue
			}
			instrs, offs, err := scumm.DecodeScript(child.Body)
			if err != nil {
				return nil, errors.Wrapf(err, "resource: decoding room %d global script %d", roomID, id)
			}
			room.Globals[id] = &GlobalScript{Chunk: child, Instrs: instrs, Offsets: offs}
		case "SO":
			id, ok := soundLookup[key]
			if !ok {
				logrus.WithFields(logrus.Fields{"room": roomID, "offset": offset}).
					Warn("sound chunk has no matching 0N table entry")
				continue
			}
			room.Sounds[id] = child
		case "CO":
			id, ok := costumeLookup[key]
			if !ok {
				logrus.WithFields(logrus.Fields{"room": roomID, "offset": offset}).
					Warn("costume chunk has no matching 0C table entry")
				continue
			}
			room.Costumes[id] = child
		case "RO":
			if err := buildRoomObjects(room, child); err != nil {
				return nil, err
			}
		}
	}
	return room, nil
}

func buildRoomObjects(room *Room, ro *container.Chunk) error {
	for _, sub := range ro.Children {
		switch sub.Tag {
		case "LS":
			if len(sub.Body) < 1 {
				return errors.Errorf("resource: room %d has a truncated LS chunk", room.ID)
			}
			id := sub.Body[0]
			instrs, offs, err := scumm.DecodeScript(sub.Body[1:])
			if err != nil {
				return errors.Wrapf(err, "resource: decoding room %d local script %d", room.ID, id)
			}
			room.Locals[int(id)] = &LocalScript{Chunk: sub, ID: id, Instrs: instrs, Offsets: offs}
		case "OC":
			obj, err := ParseObject(sub.Body)
			if err != nil {
				return errors.Wrapf(err, "resource: decoding room %d object", room.ID)
			}
			verbs, verbOffsets, err := decodeObjectVerbs(obj)
			if err != nil {
				return errors.Wrapf(err, "resource: decoding room %d object %d verbs", room.ID, obj.ID)
			}
			room.Objects[int(obj.ID)] = &ObjectScript{Chunk: sub, Obj: obj, Verbs: verbs, VerbOffsets: verbOffsets}
		case "EN":
			instrs, offs, err := scumm.DecodeScript(sub.Body)
			if err != nil {
				return errors.Wrapf(err, "resource: decoding room %d entry script", room.ID)
			}
			room.Entry = &RoomScript{Chunk: sub, Instrs: instrs, Offsets: offs}
		case "EX":
			instrs, offs, err := scumm.DecodeScript(sub.Body)
			if err != nil {
				return errors.Wrapf(err, "resource: decoding room %d exit script", room.ID)
			}
			room.Exit = &RoomScript{Chunk: sub, Instrs: instrs, Offsets: offs}
		}
	}
	return nil
}

// objectDataOffset returns the byte offset, relative to the OC chunk's own
// tag+length header, at which obj.Data begins — the convention
// ObjectEvent.CodeOffset is measured in.
func objectDataOffset(obj *Object) int {
	return 6 + 13 + 3*len(obj.Events) + 1 + len(obj.Padding) + len(obj.Name) + 1
}

func decodeObjectVerbs(obj *Object) (map[byte][]scumm.Instr, map[byte][]int, error) {
	dataOffset := objectDataOffset(obj)
	verbs := make(map[byte][]scumm.Instr, len(obj.Events))
	verbOffsets := make(map[byte][]int, len(obj.Events))
	for _, ev := range obj.Events {
		startRel := int(ev.CodeOffset) - dataOffset
		if startRel < 0 || startRel > len(obj.Data) {
			return nil, nil, errors.Errorf("verb %d code offset %d resolves outside object data", ev.VerbID, ev.CodeOffset)
		}
		instrs, offs, err := scumm.DecodeScriptUntilStop(obj.Data[startRel:])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "verb %d", ev.VerbID)
		}
		verbs[ev.VerbID] = instrs
		verbOffsets[ev.VerbID] = offs
	}
	return verbs, verbOffsets, nil
}
