package relay

import (
	"testing"
	"time"

	"github.com/basehaptic/relayapi/models"
)

func snapshotFixture() (*GameInfo, map[int]*RelayData) {
	game := &GameInfo{
		GameID:        "20250902WOSK02025",
		HomeTeamName:  "SSG 랜더스",
		AwayTeamName:  "키움 히어로즈",
		StatusCode:    "ING",
		CurrentInning: "2T",
		HomeTeamScore: 1,
		AwayTeamScore: 2,
	}
	relays := map[int]*RelayData{
		2: {
			AwayEntry: Entry{Batter: []Player{{PCode: "100", Name: "이정후"}}},
			HomeEntry: Entry{Pitcher: []Player{{PCode: "200", Name: "김광현"}}},
			TextRelays: []TextRelay{{
				No: 5, Inning: 2, HomeOrAway: "0",
				TextOptions: []TextOption{
					{
						SeqNo: 12, Type: FlexInt(OptionPitch), PitchResult: "B",
						CurrentGameState: &GameState{
							Pitcher: "200", Batter: "100",
							HomeScore: 1, AwayScore: 2,
							Ball: 1, Strike: 0, Out: 2,
							Base1: "1", Base2: "0", Base3: "",
						},
					},
					{SeqNo: 13, Type: FlexInt(OptionResult), Text: "이정후 : 중전 안타"},
				},
			}},
		},
		1: {
			TextRelays: []TextRelay{{
				No: 1, Inning: 1, HomeOrAway: "0",
				TextOptions: []TextOption{
					{SeqNo: 1, Type: FlexInt(OptionPitch), PitchResult: "T"},
					{SeqNo: 2, Type: FlexInt(OptionResult), Text: "김혜성 : 유격수 땅볼 아웃"},
				},
			}},
		},
	}
	return game, relays
}

func TestBuildSnapshotOrderingAndKeys(t *testing.T) {
	game, relays := snapshotFixture()
	observed := time.Date(2025, 9, 2, 19, 30, 0, 0, time.UTC)

	snap := BuildSnapshot(game, relays, observed, DefaultRules)

	if len(snap.Events) != 4 {
		t.Fatalf("got %d events, want 4", len(snap.Events))
	}

	wantIDs := []string{"01-001-0001", "01-001-0002", "02-005-0012", "02-005-0013"}
	for i, ev := range snap.Events {
		if ev.SourceEventID != wantIDs[i] {
			t.Errorf("events[%d].sourceEventId = %q, want %q", i, ev.SourceEventID, wantIDs[i])
		}
	}

	// Synthetic times: strictly increasing by 1ms, ending 1ms before observedAt.
	for i := 1; i < len(snap.Events); i++ {
		if !snap.Events[i-1].OccurredAt.Before(snap.Events[i].OccurredAt) {
			t.Errorf("events[%d] not after events[%d]", i, i-1)
		}
	}
	last := snap.Events[len(snap.Events)-1].OccurredAt
	if got := observed.Sub(last); got != time.Millisecond {
		t.Errorf("last event %v before observedAt, want 1ms", got)
	}
}

func TestBuildSnapshotStateFromLatestFragment(t *testing.T) {
	game, relays := snapshotFixture()
	snap := BuildSnapshot(game, relays, time.Now(), DefaultRules)

	if snap.HomeTeam != "SSG 랜더스" || snap.AwayTeam != "키움 히어로즈" {
		t.Errorf("teams = %q / %q", snap.HomeTeam, snap.AwayTeam)
	}
	if snap.Status != string(models.StatusLive) {
		t.Errorf("status = %q, want LIVE", snap.Status)
	}
	if snap.Inning != "2T" {
		t.Errorf("inning = %q, want 2T", snap.Inning)
	}
	if snap.HomeScore != 1 || snap.AwayScore != 2 {
		t.Errorf("score = %d-%d", snap.HomeScore, snap.AwayScore)
	}
	if snap.Ball != 1 || snap.Strike != 0 || snap.Out != 2 {
		t.Errorf("count = %d-%d, %d out", snap.Ball, snap.Strike, snap.Out)
	}
	if !snap.Bases.First || snap.Bases.Second || snap.Bases.Third {
		t.Errorf("bases = %+v", snap.Bases)
	}
	if snap.Pitcher == nil || *snap.Pitcher != "김광현" {
		t.Errorf("pitcher = %v", snap.Pitcher)
	}
	if snap.Batter == nil || *snap.Batter != "이정후" {
		t.Errorf("batter = %v", snap.Batter)
	}
}

func TestBuildSnapshotDeterministic(t *testing.T) {
	game, relays := snapshotFixture()
	observed := time.Date(2025, 9, 2, 19, 30, 0, 0, time.UTC)

	a := BuildSnapshot(game, relays, observed, DefaultRules)
	b := BuildSnapshot(game, relays, observed, DefaultRules)

	if len(a.Events) != len(b.Events) {
		t.Fatalf("event counts differ: %d vs %d", len(a.Events), len(b.Events))
	}
	for i := range a.Events {
		if a.Events[i].SourceEventID != b.Events[i].SourceEventID ||
			!a.Events[i].OccurredAt.Equal(b.Events[i].OccurredAt) {
			t.Errorf("events[%d] differ between runs", i)
		}
	}
}

func TestBuildSnapshotFallbacks(t *testing.T) {
	game := &GameInfo{GameID: "X", StatusCode: "READY"}
	snap := BuildSnapshot(game, nil, time.Now(), DefaultRules)

	if snap.HomeTeam != "HOME" || snap.AwayTeam != "AWAY" {
		t.Errorf("team fallbacks = %q / %q", snap.HomeTeam, snap.AwayTeam)
	}
	if snap.Inning != "0T" {
		t.Errorf("inning fallback = %q, want 0T", snap.Inning)
	}
	if snap.Status != string(models.StatusScheduled) {
		t.Errorf("status = %q, want SCHEDULED", snap.Status)
	}
	if len(snap.Events) != 0 {
		t.Errorf("got %d events from empty relays", len(snap.Events))
	}
	if snap.Pitcher != nil || snap.Batter != nil {
		t.Errorf("players should be absent: %v %v", snap.Pitcher, snap.Batter)
	}
}

func TestBuildSnapshotClampsEmbeddedState(t *testing.T) {
	game := &GameInfo{GameID: "X", HomeTeamName: "H", AwayTeamName: "A", StatusCode: "ING"}
	relays := map[int]*RelayData{
		3: {TextRelays: []TextRelay{{
			No: 1, Inning: 3, HomeOrAway: "1",
			TextOptions: []TextOption{{
				SeqNo: 1, Type: FlexInt(OptionPitch), PitchResult: "B",
				CurrentGameState: &GameState{
					HomeScore: 120, AwayScore: -3,
					Ball: 9, Strike: 7, Out: 5,
				},
			}},
		}}},
	}
	snap := BuildSnapshot(game, relays, time.Now(), DefaultRules)
	if snap.HomeScore != 99 || snap.AwayScore != 0 {
		t.Errorf("scores = %d-%d, want 99-0", snap.HomeScore, snap.AwayScore)
	}
	if snap.Ball != 4 || snap.Strike != 3 || snap.Out != 3 {
		t.Errorf("counts = %d/%d/%d, want 4/3/3", snap.Ball, snap.Strike, snap.Out)
	}
	if snap.Inning != "3B" {
		t.Errorf("inning = %q, want 3B", snap.Inning)
	}
}

func TestBuildSnapshotHapticPatterns(t *testing.T) {
	game := &GameInfo{GameID: "X", HomeTeamName: "H", AwayTeamName: "A", StatusCode: "ING"}
	relays := map[int]*RelayData{
		1: {TextRelays: []TextRelay{{
			No: 1, Inning: 1, HomeOrAway: "0",
			TextOptions: []TextOption{
				{SeqNo: 1, Type: FlexInt(OptionResult), Text: "좌월 홈런"},
				{SeqNo: 2, Type: FlexInt(OptionPitch), PitchResult: "B"},
			},
		}}},
	}
	snap := BuildSnapshot(game, relays, time.Now(), DefaultRules)
	if len(snap.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(snap.Events))
	}
	if snap.Events[0].HapticPattern == nil {
		t.Error("homerun should carry a haptic pattern")
	}
	if snap.Events[1].HapticPattern != nil {
		t.Error("ball should not carry a haptic pattern")
	}
	if snap.Events[1].Type != string(models.EventBall) {
		t.Errorf("events[1].type = %q, want BALL", snap.Events[1].Type)
	}
}
