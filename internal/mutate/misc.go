// Package mutate implements the small cosmetic and utility patches that
// ride along with a room shuffle: turbo timers, a debug-mode flag, the
// code wheel skip, a version banner, and the swordfighting insult
// reshuffle. Each mutator walks the already-decoded instruction streams a
// *resource.Game exposes and edits them in place; none of them touch the
// container or master-index layers directly.
package mutate

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

// VAR_TIMER_NEXT and VAR_DEBUGMODE are well-known SCUMM V4 variable ids,
// per the engine's variable table.
const (
	varTimerNext = 19
	varDebugMode = 39
)

const (
	codeWheelRoom   = 10
	codeWheelGlobal = 1
	codeWheelScript = 152

	debugModeRoom   = 10
	debugModeGlobal = 1

	versionBannerRoom   = 10
	versionBannerGlobal = 149
)

// eachScript calls fn once per global and local script in the game, in an
// unspecified order; fn mutates the script's Instrs slice by returning a
// replacement (itself, typically, after in-place edits).
func eachScript(game *resource.Game, fn func(instrs []scumm.Instr) []scumm.Instr) {
	for _, room := range game.Rooms {
		for _, gs := range room.Globals {
			gs.Instrs = fn(gs.Instrs)
		}
		for _, ls := range room.Locals {
			ls.Instrs = fn(ls.Instrs)
		}
	}
}

// TurboMode rewrites every `move VAR_TIMER_NEXT <- k` site across every
// global and local script in the game so the in-game clock advances every
// intervalTicks game ticks instead of whatever the original scene
// scripted.
func TurboMode(game *resource.Game, intervalTicks int16) {
	patched := 0
	eachScript(game, func(instrs []scumm.Instr) []scumm.Instr {
		for i, instr := range instrs {
			if instr.Name != "move" || instr.Target == nil || instr.Target.ID != varTimerNext {
				continue
			}
			if _, ok := instr.Args["value"].(int16); !ok {
				continue // variable-sourced timer interval, nothing to rewrite
			}
			instrs[i].Args = map[string]any{"value": intervalTicks}
			patched++
		}
		return instrs
	})
	logrus.WithField("sites", patched).WithField("interval", intervalTicks).Info("patched turbo mode timer")
}

// DebugMode prepends `move VAR_DEBUGMODE <- 1` to the scene-setup global
// script that normally only flips that variable on via the in-game debug
// console.
func DebugMode(game *resource.Game) error {
	room := game.Rooms[debugModeRoom]
	if room == nil {
		return errors.Errorf("mutate: debug mode: room %d not loaded", debugModeRoom)
	}
	gs, ok := room.Globals[debugModeGlobal]
	if !ok {
		return errors.Errorf("mutate: debug mode: room %d has no global script %d", debugModeRoom, debugModeGlobal)
	}

	enable := scumm.Instr{
		Name:   "move",
		Target: &scumm.VarRef{ID: varDebugMode},
		Args:   map[string]any{"value": int16(1)},
	}
	gs.Instrs = append([]scumm.Instr{enable}, gs.Instrs...)
	gs.Offsets = append([]int{-1}, gs.Offsets...)

	logrus.Info("enabled debug mode")
	return nil
}

// SkipCodeWheel deletes the 4 consecutive instructions starting at the
// first startScript{152} site in room 10's global script 1 — the check
// that makes the player consult the physical code wheel before the ship
// will depart.
func SkipCodeWheel(game *resource.Game) error {
	room := game.Rooms[codeWheelRoom]
	if room == nil {
		return errors.Errorf("mutate: skip code wheel: room %d not loaded", codeWheelRoom)
	}
	gs, ok := room.Globals[codeWheelGlobal]
	if !ok {
		return errors.Errorf("mutate: skip code wheel: room %d has no global script %d", codeWheelRoom, codeWheelGlobal)
	}

	idx := -1
	for i, instr := range gs.Instrs {
		if instr.Name != "startScript" {
			continue
		}
		script, ok := instr.Args["script"].(byte)
		if ok && script == codeWheelScript {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.New("mutate: skip code wheel: no startScript{152} site found")
	}
	if idx+4 > len(gs.Instrs) {
		return errors.New("mutate: skip code wheel: fewer than 4 instructions follow the code wheel check")
	}

	gs.Instrs = append(append([]scumm.Instr{}, gs.Instrs[:idx]...), gs.Instrs[idx+4:]...)
	gs.Offsets = append(append([]int{}, gs.Offsets[:idx]...), gs.Offsets[idx+4:]...)

	logrus.Info("disabled code wheel check")
	return nil
}

// VersionBanner appends a newline plus "<tool> vX seed #S" text token to
// room 10 global 149's copyright-notice print instruction, so a played
// session can always be traced back to the build and seed that produced
// it.
func VersionBanner(game *resource.Game, tool, version string, seed int64) error {
	room := game.Rooms[versionBannerRoom]
	if room == nil {
		return errors.Errorf("mutate: version banner: room %d not loaded", versionBannerRoom)
	}
	gs, ok := room.Globals[versionBannerGlobal]
	if !ok {
		return errors.Errorf("mutate: version banner: room %d has no global script %d", versionBannerRoom, versionBannerGlobal)
	}

	for i, instr := range gs.Instrs {
		if instr.Name != "print" && instr.Name != "printEgo" {
			continue
		}
		ops, ok := instr.Args["ops"].([]map[string]any)
		if !ok {
			continue
		}
		for j, op := range ops {
			tokens, ok := op["str"].([]scumm.TextToken)
			if !ok {
				continue
			}
			banner := fmt.Sprintf("%s v%s seed #%d", tool, version, seed)
			tokens = append(tokens,
				scumm.TextToken{Name: "newline"},
				scumm.TextToken{Name: "text", Data: []byte(banner)},
			)
			ops[j]["str"] = tokens
			gs.Instrs[i].Args["ops"] = ops
			logrus.WithField("banner", banner).Info("tagged copyright notice with version banner")
			return nil
		}
	}
	return errors.New("mutate: version banner: no text-string print op found in the copyright notice script")
}
