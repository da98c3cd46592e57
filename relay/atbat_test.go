package relay

import "testing"

var testTeams = Teams{Home: "SSG", Away: "키움"}

func batterOpt(seq int, pcode, name, pitcherID string) TextOption {
	return TextOption{
		SeqNo:            FlexInt(seq),
		Type:             FlexInt(OptionBatter),
		Text:             name + " 타석",
		BatterRecord:     &BatterRecord{PCode: FlexString(pcode), Name: name},
		CurrentGameState: &GameState{Batter: FlexString(pcode), Pitcher: FlexString(pitcherID)},
	}
}

func pitchOpt(seq int, code, batterID, pitcherID string) TextOption {
	return TextOption{
		SeqNo:       FlexInt(seq),
		Type:        FlexInt(OptionPitch),
		PitchResult: FlexString(code),
		CurrentGameState: &GameState{
			Batter:  FlexString(batterID),
			Pitcher: FlexString(pitcherID),
		},
	}
}

func resultOpt(seq int, text string) TextOption {
	return TextOption{SeqNo: FlexInt(seq), Type: FlexInt(OptionResult), Text: text}
}

func TestParseRelayBasicAtBat(t *testing.T) {
	data := &RelayData{
		AwayEntry: Entry{Batter: []Player{{PCode: "100", Name: "이정후"}}},
		HomeEntry: Entry{Pitcher: []Player{{PCode: "200", Name: "김광현"}}},
		TextRelays: []TextRelay{{
			No: 1, Inning: 1, HomeOrAway: "0",
			TextOptions: []TextOption{
				batterOpt(1, "100", "이정후", "200"),
				pitchOpt(2, "B", "100", "200"),
				pitchOpt(3, "T", "100", "200"),
				pitchOpt(4, "F", "100", "200"),
				resultOpt(5, "이정후 : 중전 안타"),
			},
		}},
	}

	res := ParseRelay(data, testTeams, DefaultRules)
	if len(res.AtBats) != 1 {
		t.Fatalf("got %d at-bats, want 1", len(res.AtBats))
	}
	ab := res.AtBats[0]
	if ab.Batter != "이정후" || ab.Pitcher != "김광현" {
		t.Errorf("matchup = %q vs %q", ab.Batter, ab.Pitcher)
	}
	if ab.Balls != 1 || ab.Strikes != 2 {
		t.Errorf("count = %d-%d, want 1-2", ab.Balls, ab.Strikes)
	}
	if ab.ResultText != "이정후 : 중전 안타" {
		t.Errorf("result = %q", ab.ResultText)
	}
	if ab.Inning != 1 || ab.Half != "top" || ab.BattingTeam != "키움" || ab.FieldingTeam != "SSG" {
		t.Errorf("context = %+v", ab)
	}
	if ab.EndSeq != 5 {
		t.Errorf("endSeq = %d, want 5", ab.EndSeq)
	}
}

func TestParseRelaySameBatterContinuation(t *testing.T) {
	// A repeat announcement of the same batter must not split the at-bat,
	// and may backfill the pitcher once the state reveals one.
	data := &RelayData{
		AwayEntry: Entry{Batter: []Player{{PCode: "100", Name: "이정후"}}},
		HomeEntry: Entry{Pitcher: []Player{{PCode: "200", Name: "김광현"}}},
		TextRelays: []TextRelay{{
			No: 1, Inning: 1, HomeOrAway: "0",
			TextOptions: []TextOption{
				batterOpt(1, "100", "이정후", ""),
				batterOpt(2, "100", "이정후", "200"),
				pitchOpt(3, "B", "100", "200"),
				resultOpt(4, "이정후 : 볼넷"),
			},
		}},
	}

	res := ParseRelay(data, testTeams, DefaultRules)
	if len(res.AtBats) != 1 {
		t.Fatalf("got %d at-bats, want 1", len(res.AtBats))
	}
	if res.AtBats[0].Pitcher != "김광현" {
		t.Errorf("pitcher not backfilled: %q", res.AtBats[0].Pitcher)
	}
}

func TestParseRelayForceCloseOnNewBatter(t *testing.T) {
	data := &RelayData{
		AwayEntry: Entry{Batter: []Player{{PCode: "100", Name: "이정후"}, {PCode: "101", Name: "김혜성"}}},
		TextRelays: []TextRelay{{
			No: 1, Inning: 1, HomeOrAway: "0",
			TextOptions: []TextOption{
				batterOpt(1, "100", "이정후", ""),
				pitchOpt(2, "B", "100", ""),
				batterOpt(3, "101", "김혜성", ""),
				resultOpt(4, "김혜성 : 우전 안타"),
			},
		}},
	}

	res := ParseRelay(data, testTeams, DefaultRules)
	if len(res.AtBats) != 2 {
		t.Fatalf("got %d at-bats, want 2", len(res.AtBats))
	}
	if res.AtBats[0].ResultText != "" {
		t.Errorf("force-closed at-bat should have no result, got %q", res.AtBats[0].ResultText)
	}
	if res.AtBats[1].Batter != "김혜성" || res.AtBats[1].ResultText == "" {
		t.Errorf("second at-bat = %+v", res.AtBats[1])
	}
}

func TestParseRelayDropsOutOfRangeInnings(t *testing.T) {
	data := &RelayData{
		TextRelays: []TextRelay{
			{No: 1, Inning: 0, HomeOrAway: "0", TextOptions: []TextOption{batterOpt(1, "100", "이정후", "")}},
			{No: 2, Inning: 10, HomeOrAway: "0", TextOptions: []TextOption{batterOpt(2, "100", "이정후", "")}},
		},
	}
	res := ParseRelay(data, testTeams, DefaultRules)
	if len(res.AtBats) != 0 {
		t.Fatalf("got %d at-bats from out-of-range innings, want 0", len(res.AtBats))
	}
}

func TestParseRelaySubstitutions(t *testing.T) {
	data := &RelayData{
		TextRelays: []TextRelay{{
			No: 1, Inning: 7, HomeOrAway: "1",
			TextOptions: []TextOption{
				{
					SeqNo: 1, Type: FlexInt(OptionPlayerChange),
					PlayerChange: &PlayerChange{
						LiveText:  "투수 교체: 김택형",
						InPlayer:  &Player{PCode: "300", Name: "김택형", PlayerPos: "투수"},
						OutPlayer: &Player{PCode: "200", Name: "김광현", PlayerPos: "투수"},
					},
				},
				{
					SeqNo: 2, Type: FlexInt(OptionPlayerChange),
					PlayerChange: &PlayerChange{
						LiveText: "대타 한유섬",
						InPlayer: &Player{PCode: "400", Name: "한유섬", PosName: "대타"},
					},
				},
			},
		}},
	}

	res := ParseRelay(data, testTeams, DefaultRules)
	if len(res.PitcherChanges) != 1 {
		t.Fatalf("got %d pitcher changes, want 1", len(res.PitcherChanges))
	}
	pc := res.PitcherChanges[0]
	if pc.In != "김택형" || pc.Out != "김광현" || pc.Half != "bottom" {
		t.Errorf("pitcher change = %+v", pc)
	}
	// Bottom half: home bats, away fields.
	if pc.Team != "키움" {
		t.Errorf("fielding team = %q, want 키움", pc.Team)
	}
	if len(res.PinchHitters) != 1 || res.PinchHitters[0].In != "한유섬" {
		t.Errorf("pinch hitters = %+v", res.PinchHitters)
	}
	if res.PinchHitters[0].Team != "SSG" {
		t.Errorf("batting team = %q, want SSG", res.PinchHitters[0].Team)
	}
}

func TestParseRelayImplicitOpenOnPitch(t *testing.T) {
	// A pitch with no preceding batter announcement still opens an at-bat
	// from the embedded state.
	data := &RelayData{
		AwayEntry: Entry{Batter: []Player{{PCode: "100", Name: "이정후"}}},
		HomeEntry: Entry{Pitcher: []Player{{PCode: "200", Name: "김광현"}}},
		TextRelays: []TextRelay{{
			No: 1, Inning: 1, HomeOrAway: "0",
			TextOptions: []TextOption{
				pitchOpt(1, "T", "100", "200"),
				resultOpt(2, "이정후 : 삼진 아웃"),
			},
		}},
	}
	res := ParseRelay(data, testTeams, DefaultRules)
	if len(res.AtBats) != 1 {
		t.Fatalf("got %d at-bats, want 1", len(res.AtBats))
	}
	ab := res.AtBats[0]
	if ab.Batter != "이정후" || ab.Pitcher != "김광현" || ab.Strikes != 1 {
		t.Errorf("at-bat = %+v", ab)
	}
}

func TestParseRelayEndOfStreamClose(t *testing.T) {
	data := &RelayData{
		AwayEntry: Entry{Batter: []Player{{PCode: "100", Name: "이정후"}}},
		TextRelays: []TextRelay{{
			No: 1, Inning: 1, HomeOrAway: "0",
			TextOptions: []TextOption{
				batterOpt(1, "100", "이정후", ""),
				pitchOpt(2, "B", "100", ""),
			},
		}},
	}
	res := ParseRelay(data, testTeams, DefaultRules)
	if len(res.AtBats) != 1 {
		t.Fatalf("got %d at-bats, want 1", len(res.AtBats))
	}
	if res.AtBats[0].EndSeq != 0 {
		t.Errorf("end-of-stream close endSeq = %d, want 0", res.AtBats[0].EndSeq)
	}
}

func TestParseRelaySortsOutOfOrderFragments(t *testing.T) {
	data := &RelayData{
		AwayEntry: Entry{Batter: []Player{{PCode: "100", Name: "이정후"}}},
		TextRelays: []TextRelay{{
			No: 1, Inning: 1, HomeOrAway: "0",
			TextOptions: []TextOption{
				resultOpt(3, "이정후 : 중전 안타"),
				pitchOpt(2, "B", "100", ""),
				batterOpt(1, "100", "이정후", ""),
			},
		}},
	}
	res := ParseRelay(data, testTeams, DefaultRules)
	if len(res.AtBats) != 1 {
		t.Fatalf("got %d at-bats, want 1", len(res.AtBats))
	}
	if res.AtBats[0].Balls != 1 || res.AtBats[0].ResultText == "" {
		t.Errorf("at-bat = %+v", res.AtBats[0])
	}
}
