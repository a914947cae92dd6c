package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/linuxmatters/rhythmimick/internal/cli"
	"github.com/linuxmatters/rhythmimick/internal/logging"
	"github.com/linuxmatters/rhythmimick/internal/processor"
	"github.com/linuxmatters/rhythmimick/internal/store"
)

var (
	version = "0.0.1"
)

const debugLogPath = "rhythmimick-debug.log"

// Globals are flags shared by every command
type Globals struct {
	Config     kong.ConfigFlag `short:"c" help:"Load flags from a JSON config file" placeholder:"PATH"`
	Bars       int             `default:"4" env:"RHYTHMIMICK_BARS" help:"Pattern length in bars"`
	BPM        int             `name:"bpm" default:"120" env:"RHYTHMIMICK_BPM" help:"Tempo used for quantization (40-240)"`
	MaxSeconds float64         `default:"65" env:"RHYTHMIMICK_MAX_SECONDS" help:"Longest take to capture, in seconds"`
	Mains      int             `default:"0" env:"RHYTHMIMICK_MAINS" help:"Mains frequency for the hum check (0 detects from timezone)"`
	DB         string          `name:"db" type:"path" env:"RHYTHMIMICK_DB" help:"Take history database" placeholder:"PATH"`
	NoHistory  bool            `help:"Do not store takes in the history database"`
	Logs       bool            `help:"Save a transcription report for each take"`
	Debug      bool            `env:"RHYTHMIMICK_DEBUG" help:"Write a debug log to rhythmimick-debug.log"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Record     RecordCmd     `cmd:"" help:"Capture a live take and transcribe it"`
	Transcribe TranscribeCmd `cmd:"" help:"Transcribe drums from audio files"`
	History    HistoryCmd    `cmd:"" help:"List stored takes"`
	Export     ExportCmd     `cmd:"" help:"Export a stored take as MIDI or JSON"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

func main() {
	os.Exit(run())
}

func run() int {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("rhythmimick"),
		kong.Description("Drum pattern transcriber for live and recorded audio"),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.config/rhythmimick/config.json"),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Debug {
		if err := logging.EnableDebug(debugLogPath); err != nil {
			cli.PrintError(err.Error())
			return 1
		}
		defer logging.DisableDebug()
		logging.Debugf("main", "rhythmimick %s: %s", version, ctx.Command())
	}

	if err := ctx.Run(&cliArgs.Globals); err != nil {
		logging.Debugf("main", "command failed: %v", err)
		cli.PrintError(err.Error())
		return 1
	}
	return 0
}

// processorConfig maps global flags onto the engine configuration.
func (g *Globals) processorConfig() processor.Config {
	cfg := processor.DefaultConfig()
	cfg.Bars = g.Bars
	cfg.BPM = g.BPM
	cfg.MaxCaptureSeconds = g.MaxSeconds
	cfg.MainsFrequency = g.Mains
	return cfg
}

// openStore opens the history database, or returns nil when history is off.
func (g *Globals) openStore() (*store.Store, error) {
	if g.NoHistory {
		return nil, nil
	}
	path := g.DB
	if path == "" {
		path = store.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	logging.Debugf("store", "opened %s", path)
	return st, nil
}

// VersionCmd prints the version
type VersionCmd struct{}

// Run prints the version
func (c *VersionCmd) Run() error {
	cli.PrintVersion(version)
	return nil
}
