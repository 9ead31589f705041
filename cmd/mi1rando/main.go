// Command mi1rando patches the original EGA-floppy release of The Secret
// of Monkey Island into a randomised variant playable on the original
// interpreter.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/juju/gnuflag"
	"github.com/sirupsen/logrus"

	"j5.nz/mi1rando/internal/randomiser"
	"j5.nz/mi1rando/internal/resource"
)

// version is the tool's own release tag, baked in at build time; left as
// a plain constant since this project has no release pipeline yet.
const version = "0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := gnuflag.NewFlagSet("mi1rando", gnuflag.ContinueOnError)

	var (
		shuffleRooms      bool
		keepTransitions   bool
		shuffleForest     bool
		swordfighting     bool
		changeInsultOrder bool
		seed              int64
		skipCodeWheel     bool
		debugMode         bool
		turboMode         bool
		turboInterval     int
		verbose           bool
		outputMaps        string
		showVersion       bool
	)

	fs.BoolVar(&shuffleRooms, "shuffle-rooms", false, "shuffle the main-world room connections")
	fs.BoolVar(&keepTransitions, "keep-transitions", false, "reserved: bias shuffling toward matching indoor/outdoor transitions (no-op)")
	fs.BoolVar(&shuffleForest, "shuffle-forest", false, "shuffle the Forest of the Unknown's internal connections")
	fs.BoolVar(&swordfighting, "non-sequitur-swordfighting", false, "shuffle swordfight insults and retorts")
	fs.BoolVar(&changeInsultOrder, "change-insult-order", false, "also shuffle the order of the insults (implies --non-sequitur-swordfighting)")
	fs.Int64Var(&seed, "random-seed", 0, "seed for every shuffle's random stream")
	fs.BoolVar(&skipCodeWheel, "skip-code-wheel", false, "disable the code wheel copy-protection check")
	fs.BoolVar(&debugMode, "debug-mode", false, "enable the in-game debug console from the start")
	fs.BoolVar(&turboMode, "turbo-mode", false, "make the in-game clock advance every tick")
	fs.IntVar(&turboInterval, "turbo-interval", 1, "tick interval turbo mode advances the clock by")
	fs.BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	fs.StringVar(&outputMaps, "output-maps", "", "write before/after connectivity graphs (Graphviz DOT) to this directory")
	fs.BoolVar(&showVersion, "version", false, "print the version banner and exit")

	if err := fs.Parse(true, args); err != nil {
		if err == gnuflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if showVersion {
		fmt.Printf("mi1rando v%s\n", version)
		return 0
	}

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	positional := fs.Args()
	if len(positional) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mi1rando [flags] SOURCE_DIR DEST_DIR")
		return 1
	}
	sourceDir, destDir := filepath.Clean(positional[0]), filepath.Clean(positional[1])
	if sourceDir == destDir {
		logrus.Error("source and destination directories must differ")
		return 1
	}

	if changeInsultOrder {
		swordfighting = true
	}

	opts := randomiser.Options{
		ShuffleRooms:      shuffleRooms,
		KeepTransitions:   keepTransitions,
		ShuffleForest:     shuffleForest,
		Swordfighting:     swordfighting,
		ChangeInsultOrder: changeInsultOrder,
		SkipCodeWheel:     skipCodeWheel,
		DebugMode:         debugMode,
		TurboMode:         turboMode,
		TurboInterval:     int16(turboInterval),
		Seed:              seed,
		OutputMapsDir:     outputMaps,
		ToolName:          "mi1rando",
		Version:           version,
	}

	if err := randomise(sourceDir, destDir, opts); err != nil {
		logrus.WithError(err).Error("randomisation failed")
		return 1
	}
	return 0
}

func randomise(sourceDir, destDir string, opts randomiser.Options) error {
	if opts.OutputMapsDir != "" {
		if err := os.MkdirAll(opts.OutputMapsDir, 0o755); err != nil {
			return err
		}
	}

	session := randomiser.NewSession()
	if err := session.Load(readFileFrom(sourceDir)); err != nil {
		return err
	}
	if err := session.Apply(opts); err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	tmpDir, err := os.MkdirTemp(filepath.Dir(destDir), ".mi1rando-save-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)
	if err := session.Save(writeFileTo(tmpDir)); err != nil {
		return err
	}
	entries, err := os.ReadDir(tmpDir)
	for i := 0; err == nil && i < len(entries); i++ {
		name := entries[i].Name()
		err = os.Rename(filepath.Join(tmpDir, name), filepath.Join(destDir, name))
	}
	return err
}

func readFileFrom(dir string) resource.ReadFile {
	return func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	}
}

func writeFileTo(dir string) resource.WriteFile {
	return func(name string, data []byte) error {
		return os.WriteFile(filepath.Join(dir, name), data, 0o644)
	}
}
