// Package randomiser glues the container/scumm/resource decoders, the
// roomlink rewiring engine and the cosmetic mutate patches into the single
// load → mutate → save sequence the CLI drives.
package randomiser

import (
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"j5.nz/mi1rando/internal/mutate"
	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/roomlink"
)

// Options captures every CLI flag that changes how a session mutates the
// loaded game.
type Options struct {
	ShuffleRooms      bool
	KeepTransitions   bool // reserved: indoor/outdoor parity bias, not yet implemented
	ShuffleForest     bool
	Swordfighting     bool
	ChangeInsultOrder bool
	SkipCodeWheel     bool
	DebugMode         bool
	TurboMode         bool
	TurboInterval     int16
	Seed              int64
	OutputMapsDir     string
	ToolName          string
	Version           string
}

// Session owns one loaded game and the single mutation sequence applied to
// it. It is not safe for concurrent use, and does not try to be: spec
// treats a randomiser run as one-shot, single-threaded, start to finish.
type Session struct {
	Game *resource.Game
	rng  *rand.Rand
}

// NewSession constructs an empty session; call Load before Apply.
func NewSession() *Session {
	return &Session{}
}

// Load reads every archive and the master index via read and builds the
// room model.
func (s *Session) Load(read resource.ReadFile) error {
	game, err := resource.LoadGame(read)
	if err != nil {
		return err
	}
	s.Game = game
	return nil
}

// Apply runs the requested mutators against the loaded game in the fixed
// order the original driver used: room-script fixups (whenever any
// shuffle runs) before the main-world shuffle, before the forest shuffle,
// before swordfighting, before the no-RNG cosmetic patches, which always
// run last, right before save.
func (s *Session) Apply(opts Options) error {
	if s.Game == nil {
		return errors.New("randomiser: Apply called before Load")
	}
	s.rng = rand.New(rand.NewSource(opts.Seed))

	if opts.KeepTransitions {
		logrus.Warn("--keep-transitions is reserved and currently a no-op")
	}

	shuffling := opts.ShuffleRooms || opts.ShuffleForest
	if shuffling {
		roomlink.RoomScriptFixups(s.Game)
	}

	if err := s.writeMap(opts.OutputMapsDir, "before"); err != nil {
		return err
	}

	if opts.ShuffleRooms {
		if err := roomlink.ShuffleRooms(s.Game, s.rng); err != nil {
			return errors.Wrap(err, "randomiser: shuffling main-world rooms")
		}
	}
	if opts.ShuffleForest {
		if err := roomlink.ShuffleForest(s.Game, s.rng); err != nil {
			return errors.Wrap(err, "randomiser: shuffling the forest")
		}
	}

	if err := s.writeMap(opts.OutputMapsDir, "after"); err != nil {
		return err
	}

	if opts.Swordfighting {
		if err := mutate.NonSequiturSwordfighting(s.Game, s.rng, opts.ChangeInsultOrder); err != nil {
			return errors.Wrap(err, "randomiser: shuffling swordfight insults")
		}
	}

	if opts.SkipCodeWheel {
		if err := mutate.SkipCodeWheel(s.Game); err != nil {
			return errors.Wrap(err, "randomiser: skipping code wheel")
		}
	}
	if opts.DebugMode {
		if err := mutate.DebugMode(s.Game); err != nil {
			return errors.Wrap(err, "randomiser: enabling debug mode")
		}
	}
	if opts.TurboMode {
		mutate.TurboMode(s.Game, opts.TurboInterval)
	}

	tool, version := opts.ToolName, opts.Version
	if tool == "" {
		tool = "mi1rando"
	}
	if err := mutate.VersionBanner(s.Game, tool, version, opts.Seed); err != nil {
		return errors.Wrap(err, "randomiser: tagging version banner")
	}

	return nil
}

// writeMap renders the current room connectivity graph to
// dir/<label>.dot, doing nothing if dir is empty.
func (s *Session) writeMap(dir, label string) error {
	if dir == "" {
		return nil
	}
	linkmap := roomlink.GenerateRoomLinkmap(roomlink.GenerateRoomLinks(s.Game))
	graph := roomlink.BuildGraph(s.Game, linkmap)

	path := filepath.Join(dir, label+".dot")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "randomiser: creating %s", path)
	}
	defer f.Close()

	if err := roomlink.WriteDOT(f, graph); err != nil {
		return errors.Wrapf(err, "randomiser: writing %s", path)
	}
	logrus.WithField("path", path).Info("wrote connectivity map")
	return nil
}

// Save re-encodes every mutated script, repairs every offset table, and
// writes the four archives plus the master index via write.
func (s *Session) Save(write resource.WriteFile) error {
	if s.Game == nil {
		return errors.New("randomiser: Save called before Load")
	}
	return s.Game.Save(write)
}
