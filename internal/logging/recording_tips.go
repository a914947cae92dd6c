package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linuxmatters/rhythmimick/internal/pattern"
	"github.com/linuxmatters/rhythmimick/internal/processor"
	"github.com/linuxmatters/rhythmimick/internal/quantize"
)

// RecordingTip represents a single piece of actionable recording advice
// derived from a transcription result.
type RecordingTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "level_too_quiet")
}

// MaxRecordingTips is the maximum number of tips to return.
const MaxRecordingTips = 5

const (
	quietPeakDB    = -30.0 // peak below this is too quiet to detect soft hits
	clippingPeakDB = -0.1  // peak at or above this is treated as clipped
	targetPeakDB   = -6.0  // suggested peak level
	humRatioLimit  = 0.3   // hum RMS over total RMS
)

// GenerateRecordingTips analyses a transcription result and returns
// prioritised suggestions for a better take.
func GenerateRecordingTips(r *processor.Result) []RecordingTip {
	if r == nil {
		return nil
	}

	var tips []RecordingTip
	firedRules := make(map[string]bool)

	rules := []func(*processor.Result) *RecordingTip{
		tipLevelTooHot,
		tipLevelTooQuiet,
		tipNoOnsets,
		tipCaptureLimit,
		tipTakeTooShort,
		tipMainsHum,
		tipBusyHats,
	}

	for _, rule := range rules {
		if tip := rule(r); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, firedRules)

	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxRecordingTips {
		tips = tips[:MaxRecordingTips]
	}

	return tips
}

// applyExclusions removes tips that are redundant when a more specific tip
// has already fired. "no_onsets" is implied by "level_too_quiet", and
// clipping makes every band fire so "busy_hats" says nothing new.
func applyExclusions(tips []RecordingTip, fired map[string]bool) []RecordingTip {
	var result []RecordingTip
	for _, tip := range tips {
		switch tip.RuleID {
		case "no_onsets":
			if fired["level_too_quiet"] {
				continue
			}
		case "busy_hats":
			if fired["level_clipping"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// tipLevelTooQuiet fires when the take peaks below -30 dBFS but is not
// digital silence. Suggests gain towards a -6 dBFS peak.
func tipLevelTooQuiet(r *processor.Result) *RecordingTip {
	if r.PeakDB >= quietPeakDB || isDigitalSilence(r.PeakDB) {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "level_too_quiet",
		Message:  fmt.Sprintf("Your take is very quiet - raise the input or playback level by about %.0f dB so softer hits register.", targetPeakDB-r.PeakDB),
	}
}

// tipLevelTooHot fires when the sample peak reaches full scale.
func tipLevelTooHot(r *processor.Result) *RecordingTip {
	if r.PeakDB < clippingPeakDB {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "level_clipping",
		Message:  "Your take is clipping - turn the input level down by 6 dB. Clipped hits smear across every band.",
	}
}

// tipNoOnsets fires when audible material produced an empty pattern.
func tipNoOnsets(r *processor.Result) *RecordingTip {
	if len(r.Pattern) > 0 {
		return nil
	}
	if isDigitalSilence(r.PeakDB) {
		return &RecordingTip{
			Priority: 10,
			RuleID:   "no_onsets",
			Message:  "Nothing was captured - check that the right input source is selected and that audio is playing.",
		}
	}
	return &RecordingTip{
		Priority: 9,
		RuleID:   "no_onsets",
		Message:  "No drum hits were detected - try a take with clearer, more percussive hits.",
	}
}

// tipCaptureLimit fires when a live take stopped because the buffer filled.
func tipCaptureLimit(r *processor.Result) *RecordingTip {
	if !r.HitCapacity {
		return nil
	}
	return &RecordingTip{
		Priority: 8,
		RuleID:   "capture_limit",
		Message:  fmt.Sprintf("Capture stopped at the %.0f second limit - anything played after that was not transcribed.", r.MaxSeconds),
	}
}

// tipTakeTooShort fires when the take is shorter than one bar, so the
// pattern cannot show a full bar.
func tipTakeTooShort(r *processor.Result) *RecordingTip {
	if r.Samples == 0 {
		return nil
	}
	bar := r.Grid.SecondsPerStep() * quantize.StepsPerBar
	if r.Duration >= bar {
		return nil
	}
	return &RecordingTip{
		Priority: 6,
		RuleID:   "take_too_short",
		Message:  fmt.Sprintf("The take is %.1f s, shorter than one bar at %d BPM (%.1f s) - play at least one full bar.", r.Duration, r.BPM(), bar),
	}
}

// tipMainsHum fires when mains hum makes up a large share of the signal.
// Hum sits inside the kick band and can produce false kicks.
func tipMainsHum(r *processor.Result) *RecordingTip {
	if r.MainsFrequency == 0 || r.HumRatio < humRatioLimit {
		return nil
	}
	return &RecordingTip{
		Priority: 7,
		RuleID:   "mains_hum",
		Message:  fmt.Sprintf("There's a strong %d Hz hum in your take - check cables and grounding. Hum can be mistaken for kick drum hits.", r.MainsFrequency),
	}
}

// tipBusyHats fires when there are more hi-hat hits than grid steps, which
// usually means noise or cymbal wash is triggering the high band.
func tipBusyHats(r *processor.Result) *RecordingTip {
	hats := r.Pattern.CountRow(pattern.RowHat)
	if hats <= r.Grid.TotalSteps() {
		return nil
	}
	return &RecordingTip{
		Priority: 5,
		RuleID:   "busy_hats",
		Message:  fmt.Sprintf("%d hi-hat hits were found for %d grid steps - hiss or cymbal wash may be triggering the hi-hat lane.", hats, r.Grid.TotalSteps()),
	}
}
