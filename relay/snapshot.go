package relay

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/basehaptic/relayapi/ingest"
	"github.com/basehaptic/relayapi/models"
)

// flatOption is one fragment in feed order with its position keys.
type flatOption struct {
	Inning  int
	Half    string
	RelayNo int
	Option  TextOption
}

// hapticPatterns carries the default per-category vibration labels the
// companion apps render for impactful plays.
var hapticPatterns = map[models.EventType]string{
	models.EventHit:         "○●○●",
	models.EventHomerun:     "●●●○●●●",
	models.EventScore:       "●○●○●",
	models.EventSacFlyScore: "●○●○●",
	models.EventOut:         "●●○",
	models.EventWalk:        "○○●",
	models.EventSteal:       "○●●○",
}

// collectOptions flattens all fragments across innings into feed order:
// inning ascending, relay group ascending, fragment sequence ascending.
func collectOptions(relays map[int]*RelayData) []flatOption {
	innings := make([]int, 0, len(relays))
	for inning := range relays {
		innings = append(innings, inning)
	}
	sort.Ints(innings)

	var out []flatOption
	for _, inning := range innings {
		data := relays[inning]
		if data == nil {
			continue
		}
		groups := make([]TextRelay, len(data.TextRelays))
		copy(groups, data.TextRelays)
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].No < groups[j].No })

		for gi := range groups {
			group := &groups[gi]
			options := make([]TextOption, len(group.TextOptions))
			copy(options, group.TextOptions)
			sort.SliceStable(options, func(i, j int) bool { return options[i].SeqNo < options[j].SeqNo })
			for _, opt := range options {
				out = append(out, flatOption{
					Inning:  inning,
					Half:    group.Half(),
					RelayNo: group.No.Int(),
					Option:  opt,
				})
			}
		}
	}
	return out
}

// collectPlayers builds one player map across all innings, rosters first,
// then in-line batter records and substitutions.
func collectPlayers(relays map[int]*RelayData) PlayerMap {
	innings := make([]int, 0, len(relays))
	for inning := range relays {
		innings = append(innings, inning)
	}
	sort.Ints(innings)

	m := PlayerMap{}
	for _, inning := range innings {
		data := relays[inning]
		if data == nil {
			continue
		}
		for k, v := range BuildPlayerMap(data) {
			m[k] = v
		}
		for ri := range data.TextRelays {
			for oi := range data.TextRelays[ri].TextOptions {
				m.learnFromOption(&data.TextRelays[ri].TextOptions[oi])
			}
		}
	}
	return m
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SourceEventID derives the deterministic idempotency key for one fragment
// position, so re-fetching and re-submitting the same upstream state always
// reproduces identical keys.
func SourceEventID(inning, relayNo, seqNo int) string {
	return fmt.Sprintf("%02d-%03d-%04d", inning, relayNo, seqNo)
}

// BuildSnapshot assembles the canonical ingestion payload from raw upstream
// structures: full game-state fields from the latest fragment carrying
// embedded state, plus one classified event per fragment in feed order.
//
// The feed does not timestamp fragments, so each event gets a synthetic
// time: observedAt minus one millisecond per fragment in the batch, plus
// one millisecond per fragment index. That guarantees strict, gap-free
// relative order without claiming wall-clock accuracy.
func BuildSnapshot(game *GameInfo, relays map[int]*RelayData, observedAt time.Time, rules *RuleTable) *ingest.Snapshot {
	if rules == nil {
		rules = DefaultRules
	}
	now := observedAt.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}

	options := collectOptions(relays)
	players := collectPlayers(relays)

	var latest *GameState
	latestInning := 0
	latestHalf := ""
	for _, fo := range options {
		if fo.Option.CurrentGameState != nil {
			latest = fo.Option.CurrentGameState
			latestInning = fo.Inning
			latestHalf = fo.Half
		}
	}

	teams := game.Teams()
	if teams.Home == "" {
		teams.Home = "HOME"
	}
	if teams.Away == "" {
		teams.Away = "AWAY"
	}

	var pitcherID, batterID string
	homeScore := game.HomeTeamScore.Int()
	awayScore := game.AwayTeamScore.Int()
	ball, strike, out := 0, 0, 0
	bases := ingest.Bases{}
	if latest != nil {
		pitcherID = latest.Pitcher.String()
		batterID = latest.Batter.String()
		homeScore = latest.HomeScore.Int()
		awayScore = latest.AwayScore.Int()
		ball = latest.Ball.Int()
		strike = latest.Strike.Int()
		out = latest.Out.Int()
		bases = ingest.Bases{
			First:  Occupied(latest.Base1),
			Second: Occupied(latest.Base2),
			Third:  Occupied(latest.Base3),
		}
	}

	pitcherName := players.Resolve(pitcherID)
	if pitcherName == "" {
		// Fall back to the metadata-level current pitcher. In the top half
		// the home side fields, so its pitcher is the active one.
		switch latestHalf {
		case "top":
			pitcherName = strings.TrimSpace(game.HomeCurrentPitcherName)
		case "bottom":
			pitcherName = strings.TrimSpace(game.AwayCurrentPitcherName)
		}
	}
	batterName := players.Resolve(batterID)

	inningLabel := strings.TrimSpace(game.CurrentInning)
	if inningLabel == "" {
		if latest != nil {
			suffix := "T"
			if latestHalf == "bottom" {
				suffix = "B"
			}
			inningLabel = fmt.Sprintf("%d%s", latestInning, suffix)
		} else {
			inningLabel = "0T"
		}
	}

	baseTime := now.Add(-time.Duration(len(options)) * time.Millisecond)
	events := make([]ingest.EventIn, 0, len(options))
	for index, fo := range options {
		opt := fo.Option
		eventType := rules.ClassifyOption(&opt)
		eventTime := baseTime.Add(time.Duration(index) * time.Millisecond)

		metadata := map[string]any{
			"inning":     fo.Inning,
			"half":       fo.Half,
			"relayNo":    fo.RelayNo,
			"seqno":      opt.SeqNo.Int(),
			"optionType": opt.Type.Int(),
		}
		if pitch := opt.PitchCode(); pitch != "" {
			metadata["pitchResult"] = pitch
		}

		var haptic *string
		if pattern, ok := hapticPatterns[eventType]; ok {
			haptic = &pattern
		}

		events = append(events, ingest.EventIn{
			SourceEventID: SourceEventID(fo.Inning, fo.RelayNo, opt.SeqNo.Int()),
			Type:          string(eventType),
			Description:   strings.TrimSpace(opt.Text),
			OccurredAt:    eventTime,
			HapticPattern: haptic,
			Metadata:      metadata,
		})
	}

	snap := &ingest.Snapshot{
		HomeTeam:   teams.Home,
		AwayTeam:   teams.Away,
		Status:     string(models.NormalizeStatus(game.StatusCode)),
		Inning:     inningLabel,
		HomeScore:  clamp(homeScore, 0, 99),
		AwayScore:  clamp(awayScore, 0, 99),
		Ball:       clamp(ball, 0, 4),
		Strike:     clamp(strike, 0, 3),
		Out:        clamp(out, 0, 3),
		Bases:      bases,
		ObservedAt: &now,
		Events:     events,
	}
	if pitcherName != "" {
		snap.Pitcher = &pitcherName
	}
	if batterName != "" {
		snap.Batter = &batterName
	}
	return snap
}
