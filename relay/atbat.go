package relay

import (
	"sort"
	"strings"
)

// AtBat is one reconstructed plate appearance. At-bats are analysis
// products; they are built per parse run and never persisted.
type AtBat struct {
	Inning       int    `json:"inning"`
	Half         string `json:"half"`
	BattingTeam  string `json:"battingTeam"`
	FieldingTeam string `json:"fieldingTeam"`
	Batter       string `json:"batter"`
	BatterID     string `json:"batterID,omitempty"`
	Pitcher      string `json:"pitcher,omitempty"`
	PitcherID    string `json:"pitcherID,omitempty"`
	Balls        int    `json:"balls"`
	Strikes      int    `json:"strikes"`
	ResultText   string `json:"resultText,omitempty"`
	PinchHitter  bool   `json:"pinchHitter"`
	StartSeq     int    `json:"startSeq"`
	// EndSeq is zero when the at-bat was closed at end of stream rather
	// than by a terminal fragment.
	EndSeq int `json:"endSeq,omitempty"`
}

// Substitution records an in-line roster change (pinch hitter or pitcher).
type Substitution struct {
	Inning int    `json:"inning"`
	Half   string `json:"half"`
	Team   string `json:"team"`
	In     string `json:"in"`
	Out    string `json:"out"`
	Text   string `json:"text"`
	SeqNo  int    `json:"seqNo"`
}

// ParseResult is the stitcher output for one relay data block.
type ParseResult struct {
	AtBats         []AtBat        `json:"atBats"`
	PinchHitters   []Substitution `json:"pinchHitters"`
	PitcherChanges []Substitution `json:"pitcherChanges"`
}

// Merge appends another result, preserving order.
func (r *ParseResult) Merge(other *ParseResult) {
	r.AtBats = append(r.AtBats, other.AtBats...)
	r.PinchHitters = append(r.PinchHitters, other.PinchHitters...)
	r.PitcherChanges = append(r.PitcherChanges, other.PitcherChanges...)
}

var pitcherTerms = []string{"투수", "pitcher"}
var pinchTerms = []string{"대타", "pinch"}

type stitcher struct {
	rules   *RuleTable
	players PlayerMap
	teams   Teams
	current *AtBat
	out     ParseResult
}

// ParseRelay reduces one relay data block into completed at-bats plus the
// pinch-hitter and pitcher-change side lists. Fragments outside innings 1–9
// are dropped. The at-bat closing policy is merge-on-same-batter: a repeat
// batter announcement backfills a late-revealed pitcher instead of
// reopening, while a different batter force-closes the open at-bat without
// a terminal result. Any partially observed terminal text is discarded by
// that force-close; only an explicit result fragment attaches one. This is
// an accepted approximation of the feed, not a defect.
func ParseRelay(data *RelayData, teams Teams, rules *RuleTable) *ParseResult {
	if rules == nil {
		rules = DefaultRules
	}
	s := &stitcher{rules: rules, players: BuildPlayerMap(data), teams: teams}
	if data == nil {
		return &s.out
	}

	relays := make([]TextRelay, len(data.TextRelays))
	copy(relays, data.TextRelays)
	sort.SliceStable(relays, func(i, j int) bool { return relays[i].No < relays[j].No })

	for i := range relays {
		s.consumeRelay(&relays[i])
	}
	s.close("", 0)
	return &s.out
}

func (s *stitcher) consumeRelay(relay *TextRelay) {
	inning := relay.Inning.Int()
	if inning < 1 || inning > 9 {
		return
	}
	half := relay.Half()
	battingTeam, fieldingTeam := s.teams.Home, s.teams.Away
	if half == "top" {
		battingTeam, fieldingTeam = s.teams.Away, s.teams.Home
	}

	options := make([]TextOption, len(relay.TextOptions))
	copy(options, relay.TextOptions)
	sort.SliceStable(options, func(i, j int) bool { return options[i].SeqNo < options[j].SeqNo })

	for i := range options {
		opt := &options[i]
		s.players.learnFromOption(opt)

		seqNo := opt.SeqNo.Int()
		text := strings.TrimSpace(opt.Text)

		var pitcherID, batterID string
		if state := opt.CurrentGameState; state != nil {
			pitcherID = strings.TrimSpace(state.Pitcher.String())
			batterID = strings.TrimSpace(state.Batter.String())
		}

		if opt.Type.Int() == OptionPlayerChange && opt.PlayerChange != nil {
			s.recordChange(opt.PlayerChange, text, inning, half, battingTeam, fieldingTeam, seqNo)
		}

		if opt.Type.Int() == OptionBatter || opt.BatterRecord != nil {
			s.announceBatter(opt, text, inning, half, batterID, pitcherID, battingTeam, fieldingTeam, seqNo)
		}

		if opt.Type.Int() == OptionPitch {
			if s.current == nil {
				s.open(inning, half, batterID, s.players.Resolve(batterID),
					pitcherID, s.players.Resolve(pitcherID), false, seqNo, battingTeam, fieldingTeam)
			}
			if s.current != nil {
				pitch := opt.PitchCode()
				if s.rules.countsBall(pitch, text) {
					s.current.Balls++
				}
				if s.rules.countsStrike(pitch, text) {
					s.current.Strikes++
				}
			}
		}

		if opt.Type.Int() == OptionResult {
			s.close(text, seqNo)
		}
	}
}

func (s *stitcher) recordChange(change *PlayerChange, text string, inning int, half, battingTeam, fieldingTeam string, seqNo int) {
	liveText := strings.TrimSpace(change.LiveText)
	if liveText == "" {
		liveText = text
	}
	var inName, outName, inPos, outPos string
	if change.InPlayer != nil {
		inName, inPos = change.InPlayer.DisplayName(), strings.TrimSpace(change.InPlayer.PlayerPos)
	}
	if change.OutPlayer != nil {
		outName, outPos = change.OutPlayer.DisplayName(), strings.TrimSpace(change.OutPlayer.PlayerPos)
	}

	if containsAny(liveText, pitcherTerms) || containsAny(inPos, pitcherTerms) || containsAny(outPos, pitcherTerms) {
		s.out.PitcherChanges = append(s.out.PitcherChanges, Substitution{
			Inning: inning, Half: half, Team: fieldingTeam,
			In: inName, Out: outName, Text: liveText, SeqNo: seqNo,
		})
	}
	if containsAny(liveText, pinchTerms) || containsAny(inPos, pinchTerms) || containsAny(outPos, pinchTerms) {
		s.out.PinchHitters = append(s.out.PinchHitters, Substitution{
			Inning: inning, Half: half, Team: battingTeam,
			In: inName, Out: outName, Text: liveText, SeqNo: seqNo,
		})
	}
}

func (s *stitcher) announceBatter(opt *TextOption, text string, inning int, half, batterID, pitcherID, battingTeam, fieldingTeam string, seqNo int) {
	var batterName, posName string
	if opt.BatterRecord != nil {
		batterName = strings.TrimSpace(opt.BatterRecord.Name)
		posName = strings.TrimSpace(opt.BatterRecord.PosName)
	}
	if batterName == "" {
		batterName = s.players.Resolve(batterID)
	}
	if batterName == "" {
		return
	}
	isPinch := containsAny(text, pinchTerms) || containsAny(posName, pinchTerms)
	s.open(inning, half, batterID, batterName, pitcherID, s.players.Resolve(pitcherID),
		isPinch, seqNo, battingTeam, fieldingTeam)
}

func (s *stitcher) open(inning int, half, batterID, batterName, pitcherID, pitcherName string, pinch bool, seqNo int, battingTeam, fieldingTeam string) {
	if cur := s.current; cur != nil {
		sameBatter := cur.Inning == inning && cur.Half == half && cur.BatterID == batterID
		if sameBatter {
			// Continuation: the pitcher may only be revealed after the
			// at-bat already opened.
			if pitcherName != "" && cur.Pitcher == "" {
				cur.Pitcher = pitcherName
			}
			if pitcherID != "" && cur.PitcherID == "" {
				cur.PitcherID = pitcherID
			}
			return
		}
		s.close("", seqNo)
	}

	s.current = &AtBat{
		Inning:       inning,
		Half:         half,
		BattingTeam:  battingTeam,
		FieldingTeam: fieldingTeam,
		Batter:       batterName,
		BatterID:     batterID,
		Pitcher:      pitcherName,
		PitcherID:    pitcherID,
		PinchHitter:  pinch,
		StartSeq:     seqNo,
	}
}

func (s *stitcher) close(resultText string, endSeq int) {
	if s.current == nil {
		return
	}
	if resultText != "" && s.current.ResultText == "" {
		s.current.ResultText = resultText
	}
	s.current.EndSeq = endSeq
	s.out.AtBats = append(s.out.AtBats, *s.current)
	s.current = nil
}
