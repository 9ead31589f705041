package resource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFORoundTrip(t *testing.T) {
	entries := []FOEntry{{RoomID: 1, Offset: 10}, {RoomID: 2, Offset: 9000}}
	got, err := ParseFO(EmitFO(entries))
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestGlobalIndexRoundTrip(t *testing.T) {
	items := []GlobalIndexItem{{RoomID: 1, Offset: 0}, {RoomID: 1, Offset: 42}, {RoomID: 3, Offset: 7}}
	got, err := ParseGlobalIndex(EmitGlobalIndex(items))
	require.NoError(t, err)
	require.Equal(t, items, got)
}

func TestRNRoundTrip(t *testing.T) {
	entries := []RoomName{{ID: 1, Name: "street"}, {ID: 2, Name: "pub"}}
	got, err := ParseRN(EmitRN(entries))
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestRNStopsAtTerminator(t *testing.T) {
	entries := []RoomName{{ID: 1, Name: "street"}}
	body := EmitRN(entries)
	body = append(body, 9, 9, 9) // trailing garbage after the 0x00 terminator

	got, err := ParseRN(body)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestObjectRoundTrip(t *testing.T) {
	obj := &Object{
		ID:            123,
		Unk:           1,
		XPos:          10,
		YPos:          20,
		ParentState:   true,
		Width:         5,
		Parent:        0,
		WalkX:         30,
		WalkY:         -1,
		Height:        8,
		ActorDir:      true,
		NameRawOffset: 0,
		Events: []ObjectEvent{
			{VerbID: 10, CodeOffset: 100},
			{VerbID: 8, CodeOffset: 110},
		},
		Padding: []byte{0, 0, 0, 0, 0, 0},
		Name:    "door",
		Data:    []byte{0x00, 0x00},
	}

	got, err := ParseObject(EmitObject(obj))
	require.NoError(t, err)
	require.Equal(t, obj, got)
}
