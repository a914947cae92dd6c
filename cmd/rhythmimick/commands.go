package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/rhythmimick/internal/audio"
	"github.com/linuxmatters/rhythmimick/internal/capture"
	"github.com/linuxmatters/rhythmimick/internal/cli"
	"github.com/linuxmatters/rhythmimick/internal/logging"
	"github.com/linuxmatters/rhythmimick/internal/pattern"
	"github.com/linuxmatters/rhythmimick/internal/processor"
	"github.com/linuxmatters/rhythmimick/internal/store"
	"github.com/linuxmatters/rhythmimick/internal/ui"
)

// RecordCmd captures a live take from an audio device
type RecordCmd struct {
	Source     string `default:"microphone" enum:"microphone,loopback" help:"Capture source (microphone, loopback)"`
	SampleRate int    `default:"0" help:"Device sample rate in Hz (0 uses the device default)"`
	Channels   int    `default:"2" help:"Device channel count"`
	MIDI       string `name:"midi" type:"path" help:"Write the pattern to a MIDI file" placeholder:"PATH"`
	SaveWAV    string `name:"save-wav" type:"path" help:"Write the captured audio to a WAV file" placeholder:"PATH"`
}

// Run records, transcribes and stores a live take
func (c *RecordCmd) Run(g *Globals) error {
	cfg := g.processorConfig()
	source := capture.ParseSource(c.Source)
	engine := processor.NewEngine(cfg)

	in, err := audio.OpenInput(audio.InputConfig{
		Source:     source,
		SampleRate: c.SampleRate,
		Channels:   c.Channels,
	}, engine.Process, func(message string) {
		logging.Debugf("device", "%s", strings.TrimSpace(message))
	})
	if err != nil {
		return err
	}
	defer in.Close()

	engine.Prepare(float64(in.SampleRate()))
	logging.Debugf("record", "%s device open: %d Hz, %d channels", source, in.SampleRate(), in.Channels())

	startTime := time.Now()
	engine.StartCapture(source)
	if err := in.Start(); err != nil {
		engine.StopCapture()
		return err
	}

	model := ui.NewRecordModel(engine, source, engine.Config().Bars, engine.Config().BPM)
	final, err := tea.NewProgram(model).Run()
	engine.StopCapture()
	if stopErr := in.Stop(); stopErr != nil {
		logging.Debugf("record", "device stop: %v", stopErr)
	}
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	rm, ok := final.(ui.RecordModel)
	if !ok || rm.Cancelled || rm.Result == nil {
		logging.Debugf("record", "take cancelled")
		return nil
	}
	result := rm.Result
	endTime := time.Now()

	st, err := g.openStore()
	if err != nil {
		return err
	}
	var takeID string
	if st != nil {
		defer st.Close()
		take := store.TakeFromResult(fmt.Sprintf("%s take", source), source.String(), result)
		take.CreatedAt = startTime
		if err := st.SaveTake(take); err != nil {
			return fmt.Errorf("failed to save take: %w", err)
		}
		takeID = take.ShortID()
		cli.PrintSuccess("Take:", takeID)
	}

	if c.MIDI != "" {
		if err := pattern.WriteSMFFile(c.MIDI, result.Pattern, result.BPM(), result.Bars()); err != nil {
			return err
		}
		cli.PrintSuccess("MIDI:", c.MIDI)
	}

	if c.SaveWAV != "" {
		if err := audio.WriteWAV(c.SaveWAV, engine.CapturedSamples(), int(result.SampleRate)); err != nil {
			return err
		}
		cli.PrintSuccess("Audio:", c.SaveWAV)
	}

	if g.Logs {
		reportPath, err := logging.GenerateReport(logging.ReportData{
			Source:     source.String(),
			ReportPath: fmt.Sprintf("take-%s-drums.log", startTime.Format("20060102-150405")),
			MIDIPath:   c.MIDI,
			TakeID:     takeID,
			StartTime:  startTime,
			EndTime:    endTime,
			Pass1Time:  endTime.Sub(startTime) - rm.AnalysisTime,
			Pass2Time:  rm.AnalysisTime,
			Result:     result,
		})
		if err != nil {
			return err
		}
		cli.PrintSuccess("Report:", reportPath)
	}
	return nil
}

// TranscribeCmd transcribes audio files
type TranscribeCmd struct {
	MIDI         bool     `name:"midi" help:"Write <name>-drums.mid next to each input"`
	AnalysisOnly bool     `help:"Print the analysis without the progress UI, history or output files"`
	Files        []string `arg:"" name:"files" help:"Audio files to transcribe (WAV, FLAC)" type:"existingfile"`
}

// Run transcribes every file in turn
func (c *TranscribeCmd) Run(g *Globals) error {
	cfg := g.processorConfig()

	if c.AnalysisOnly {
		return c.runAnalysisOnly(cfg)
	}

	st, err := g.openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	// Create the Bubbletea UI model
	model := ui.NewModel(c.Files)
	p := tea.NewProgram(model)

	// Transcribe in background
	go func() {
		for i, inputPath := range c.Files {
			fileStartTime := time.Now()

			logging.Debugf("main", "sending FileStartMsg for file %d: %s", i, inputPath)
			model.ProgressChan <- ui.FileStartMsg{
				FileIndex: i,
				FileName:  inputPath,
			}

			ph := &progressHandler{progress: model.ProgressChan}

			result, err := processor.ProcessFile(inputPath, cfg, ph.callback)
			if err != nil {
				logging.Debugf("main", "ProcessFile failed: %v", err)
				model.ProgressChan <- ui.FileCompleteMsg{FileIndex: i, Error: err}
				continue
			}

			done := ui.FileCompleteMsg{FileIndex: i, Result: result}
			done.TakeID, done.MIDIPath, done.ReportPath, done.Error = c.saveOutputs(g, st, inputPath, result, ph, fileStartTime)

			logging.Debugf("main", "sending FileCompleteMsg for file %d", i)
			model.ProgressChan <- done
		}

		logging.Debugf("main", "sending AllCompleteMsg")
		model.ProgressChan <- ui.AllCompleteMsg{}
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	if m, ok := final.(ui.Model); ok && m.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", m.FailedFiles, m.TotalFiles)
	}
	return nil
}

// saveOutputs stores the take and writes the MIDI file and report for one input.
func (c *TranscribeCmd) saveOutputs(g *Globals, st *store.Store, inputPath string, result *processor.Result, ph *progressHandler, start time.Time) (takeID, midiPath, reportPath string, err error) {
	if st != nil {
		take := store.TakeFromResult(filepath.Base(inputPath), "file", result)
		if err := st.SaveTake(take); err != nil {
			return "", "", "", fmt.Errorf("failed to save take: %w", err)
		}
		takeID = take.ShortID()
	}

	if c.MIDI {
		midiPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "-drums.mid"
		if err := pattern.WriteSMFFile(midiPath, result.Pattern, result.BPM(), result.Bars()); err != nil {
			return takeID, "", "", err
		}
	}

	if g.Logs {
		reportPath, err = logging.GenerateReport(logging.ReportData{
			InputPath: inputPath,
			Source:    "file",
			MIDIPath:  midiPath,
			TakeID:    takeID,
			StartTime: start,
			EndTime:   time.Now(),
			Pass1Time: ph.pass1Time,
			Pass2Time: ph.pass2Time,
			Result:    result,
		})
		if err != nil {
			logging.Debugf("main", "failed to generate report: %v", err)
			return takeID, midiPath, "", err
		}
	}
	return takeID, midiPath, reportPath, nil
}

// runAnalysisOnly prints each file's analysis to stdout.
func (c *TranscribeCmd) runAnalysisOnly(cfg processor.Config) error {
	var failed int
	for _, inputPath := range c.Files {
		reader, metadata, err := audio.OpenAudioFile(inputPath, 0)
		if err != nil {
			cli.PrintError(err.Error())
			failed++
			continue
		}
		reader.Close()

		result, err := processor.ProcessFile(inputPath, cfg, nil)
		if err != nil {
			cli.PrintError(err.Error())
			failed++
			continue
		}
		logging.DisplayAnalysisResults(os.Stdout, inputPath, metadata, result)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(c.Files))
	}
	return nil
}

// progressHandler forwards processor progress to the UI and times each pass
type progressHandler struct {
	progress   chan<- tea.Msg
	pass1Start time.Time
	pass1Time  time.Duration
	pass2Start time.Time
	pass2Time  time.Duration
}

func (ph *progressHandler) callback(pass int, passName string, progress float64, level float64, result *processor.Result) {
	logging.Debugf("main", "progress: pass %d (%s), %.1f%%, level %.1f dB", pass, passName, progress*100, level)

	// Track pass timing
	if pass == 1 && progress == 0.0 {
		ph.pass1Start = time.Now()
	} else if pass == 1 && progress == 1.0 {
		ph.pass1Time = time.Since(ph.pass1Start)
	} else if pass == 2 && progress == 0.0 {
		ph.pass2Start = time.Now()
	} else if pass == 2 && progress == 1.0 {
		ph.pass2Time = time.Since(ph.pass2Start)
	}

	ph.progress <- ui.ProgressMsg{
		Pass:     pass,
		PassName: passName,
		Progress: progress,
		Level:    level,
		Result:   result,
	}
}

// HistoryCmd lists stored takes
type HistoryCmd struct {
	Limit int `short:"n" default:"20" help:"Number of takes to list (0 lists all)"`
}

// Run prints the most recent takes
func (c *HistoryCmd) Run(g *Globals) error {
	if g.NoHistory {
		return errors.New("history is disabled by --no-history")
	}
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	takes, err := st.ListTakes(c.Limit)
	if err != nil {
		return err
	}
	if len(takes) == 0 {
		fmt.Println(cli.KeyStyle.Render("No takes yet"))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render("Take History"))
	for _, t := range takes {
		flags := ""
		if t.HitCapacity {
			flags = " (capture limit)"
		}
		fmt.Printf("%s  %s  %-24s %2d bars @ %3d BPM  %5.1fs  %3d notes%s\n",
			cli.ValueStyle.Render(t.ShortID()),
			cli.KeyStyle.Render(t.CreatedAt.Format("2006-01-02 15:04")),
			truncate(t.Name, 24),
			t.Bars, t.BPM, t.Duration, t.NoteCount, flags)
	}
	return nil
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// ExportCmd writes a stored take to a file
type ExportCmd struct {
	Take   string `arg:"" help:"Take id or unique id prefix"`
	Output string `short:"o" type:"path" help:"Output path (default take-<id>.mid, or .json with --json)" placeholder:"PATH"`
	JSON   bool   `name:"json" help:"Write the notes as JSON instead of MIDI"`
}

// exportedTake is the JSON export document
type exportedTake struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Source    string          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
	Bars      int             `json:"bars"`
	BPM       int             `json:"bpm"`
	Notes     pattern.Pattern `json:"notes"`
}

// Run exports the take
func (c *ExportCmd) Run(g *Globals) error {
	if g.NoHistory {
		return errors.New("history is disabled by --no-history")
	}
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	take, err := st.LoadTake(c.Take)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("no take matches %q", c.Take)
	case errors.Is(err, store.ErrAmbiguous):
		return fmt.Errorf("%q matches more than one take, use a longer prefix", c.Take)
	case err != nil:
		return err
	}

	out := c.Output
	if c.JSON {
		if out == "" {
			out = fmt.Sprintf("take-%s.json", take.ShortID())
		}
		if err := writeTakeJSON(out, take); err != nil {
			return err
		}
	} else {
		if out == "" {
			out = fmt.Sprintf("take-%s.mid", take.ShortID())
		}
		if err := pattern.WriteSMFFile(out, take.Pattern, take.BPM, take.Bars); err != nil {
			return err
		}
	}
	cli.PrintSuccess("Exported:", out)
	return nil
}

func writeTakeJSON(path string, t *store.Take) error {
	notes := t.Pattern
	if notes == nil {
		notes = pattern.Pattern{}
	}
	data, err := json.MarshalIndent(exportedTake{
		ID:        t.ID,
		Name:      t.Name,
		Source:    t.Source,
		CreatedAt: t.CreatedAt,
		Bars:      t.Bars,
		BPM:       t.BPM,
		Notes:     notes,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode take: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
