// Package replay drives a deterministic, time-based partial reveal of a
// recorded game, serving the upstream wire shape so the crawler can run
// against it with no live source.
package replay

import (
	"sort"
	"sync"
	"time"

	"github.com/basehaptic/relayapi/relay"
)

// TimelineKey identifies one revealable fragment.
type TimelineKey struct {
	Inning  int
	RelayNo int
	SeqNo   int
}

// Replayer reveals a fixed, precomputed timeline step by step as wall-clock
// time passes. It is stateless beyond startedAt: no background timer or
// queue, so it is trivially restartable and safe for concurrent reads.
type Replayer struct {
	game         map[string]any
	relays       map[int]*relay.RelayData
	timeline     []TimelineKey
	stepInterval time.Duration
	stepSize     int

	mu        sync.Mutex
	startedAt time.Time
	now       func() time.Time
}

// New builds a replayer over a recorded game. The timeline is flattened
// once, in feed order, and immutable afterwards.
func New(game map[string]any, relays map[int]*relay.RelayData, stepInterval time.Duration, stepSize int) *Replayer {
	if stepInterval < time.Second {
		stepInterval = time.Second
	}
	if stepSize < 1 {
		stepSize = 1
	}
	r := &Replayer{
		game:         game,
		relays:       relays,
		stepInterval: stepInterval,
		stepSize:     stepSize,
		now:          time.Now,
	}
	r.timeline = buildTimeline(relays)
	r.startedAt = r.now()
	return r
}

func buildTimeline(relays map[int]*relay.RelayData) []TimelineKey {
	var timeline []TimelineKey
	for inning := 1; inning <= 9; inning++ {
		data := relays[inning]
		if data == nil {
			continue
		}
		groups := make([]relay.TextRelay, len(data.TextRelays))
		copy(groups, data.TextRelays)
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].No < groups[j].No })
		for gi := range groups {
			group := &groups[gi]
			options := make([]relay.TextOption, len(group.TextOptions))
			copy(options, group.TextOptions)
			sort.SliceStable(options, func(i, j int) bool { return options[i].SeqNo < options[j].SeqNo })
			for _, opt := range options {
				timeline = append(timeline, TimelineKey{
					Inning:  inning,
					RelayNo: group.No.Int(),
					SeqNo:   opt.SeqNo.Int(),
				})
			}
		}
	}
	return timeline
}

// Reset rebases the reveal to the current time, restarting from zero.
func (r *Replayer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startedAt = r.now()
}

// TimelineLen reports the total number of revealable fragments.
func (r *Replayer) TimelineLen() int { return len(r.timeline) }

// VisibleCount is the pure reveal function of elapsed time:
// min(len(timeline), (floor(elapsed/stepInterval)+1) * stepSize).
func (r *Replayer) VisibleCount() int {
	r.mu.Lock()
	elapsed := r.now().Sub(r.startedAt)
	r.mu.Unlock()
	if elapsed < 0 {
		elapsed = 0
	}
	steps := int(elapsed/r.stepInterval) + 1
	visible := steps * r.stepSize
	if visible > len(r.timeline) {
		visible = len(r.timeline)
	}
	return visible
}

// Finished reports whether every fragment has been revealed.
func (r *Replayer) Finished() bool {
	return r.VisibleCount() >= len(r.timeline)
}

func (r *Replayer) visibleKeys() map[TimelineKey]struct{} {
	count := r.VisibleCount()
	keys := make(map[TimelineKey]struct{}, count)
	for _, key := range r.timeline[:count] {
		keys[key] = struct{}{}
	}
	return keys
}

// Progress summarizes the reveal for diagnostics embedded in payloads.
type Progress struct {
	VisibleEvents   int `json:"visibleEvents"`
	TotalEvents     int `json:"totalEvents"`
	StepIntervalSec int `json:"stepIntervalSec"`
	StepSize        int `json:"stepSize"`
}

func (r *Replayer) progress() Progress {
	return Progress{
		VisibleEvents:   r.VisibleCount(),
		TotalEvents:     len(r.timeline),
		StepIntervalSec: int(r.stepInterval / time.Second),
		StepSize:        r.stepSize,
	}
}

// GamePayload returns the upstream game envelope, with the status
// synthesized from reveal progress: in progress until the clamp point,
// finished once every fragment is visible.
func (r *Replayer) GamePayload() map[string]any {
	game := make(map[string]any, len(r.game)+3)
	for k, v := range r.game {
		game[k] = v
	}
	if r.Finished() {
		game["statusCode"] = "RESULT"
		game["statusInfo"] = "Replay Finished"
	} else {
		game["statusCode"] = "ING"
		game["statusInfo"] = "Replay Running"
	}
	game["replayProgress"] = r.progress()
	return map[string]any{"result": map[string]any{"game": game}}
}

// RelayPayload returns the upstream relay envelope for one inning, filtered
// down to the currently visible fragments.
func (r *Replayer) RelayPayload(inning int) map[string]any {
	visible := r.visibleKeys()

	filtered := relay.RelayData{}
	if data := r.relays[inning]; data != nil {
		filtered.HomeEntry = data.HomeEntry
		filtered.AwayEntry = data.AwayEntry
		filtered.HomeLineup = data.HomeLineup
		filtered.AwayLineup = data.AwayLineup
		for _, group := range data.TextRelays {
			kept := group
			kept.TextOptions = nil
			for _, opt := range group.TextOptions {
				key := TimelineKey{Inning: inning, RelayNo: group.No.Int(), SeqNo: opt.SeqNo.Int()}
				if _, ok := visible[key]; ok {
					kept.TextOptions = append(kept.TextOptions, opt)
				}
			}
			filtered.TextRelays = append(filtered.TextRelays, kept)
		}
	}

	return map[string]any{"result": map[string]any{
		"textRelayData":  filtered,
		"replayProgress": r.progress(),
	}}
}
