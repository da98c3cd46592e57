package replay

import (
	"testing"
	"time"

	"github.com/basehaptic/relayapi/relay"
)

func timelineFixture(total int) map[int]*relay.RelayData {
	options := make([]relay.TextOption, total)
	for i := range options {
		options[i] = relay.TextOption{SeqNo: relay.FlexInt(i + 1), Type: 1}
	}
	return map[int]*relay.RelayData{
		1: {TextRelays: []relay.TextRelay{{No: 1, Inning: 1, HomeOrAway: "0", TextOptions: options}}},
	}
}

// fakeClock lets tests advance replay time deterministically.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestReplayer(total int, stepInterval time.Duration, stepSize int) (*Replayer, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 9, 2, 19, 0, 0, 0, time.UTC)}
	r := New(map[string]any{"gameId": "X"}, timelineFixture(total), stepInterval, stepSize)
	r.now = clock.now
	r.startedAt = clock.t
	return r, clock
}

func TestVisibleCountSteps(t *testing.T) {
	r, clock := newTestReplayer(40, 10*time.Second, 25)

	if got := r.VisibleCount(); got != 25 {
		t.Errorf("t=0: visible = %d, want 25", got)
	}
	clock.t = clock.t.Add(9 * time.Second)
	if got := r.VisibleCount(); got != 25 {
		t.Errorf("t=9s: visible = %d, want 25", got)
	}
	clock.t = clock.t.Add(time.Second)
	if got := r.VisibleCount(); got != 40 {
		t.Errorf("t=10s: visible = %d, want 40 (clamped)", got)
	}
	if !r.Finished() {
		t.Error("replay should be finished at the clamp point")
	}
}

func TestVisibleCountNegativeElapsed(t *testing.T) {
	r, clock := newTestReplayer(40, 10*time.Second, 25)
	clock.t = clock.t.Add(-time.Minute)
	if got := r.VisibleCount(); got != 25 {
		t.Errorf("negative elapsed: visible = %d, want first step", got)
	}
}

func TestReset(t *testing.T) {
	r, clock := newTestReplayer(40, 10*time.Second, 25)
	clock.t = clock.t.Add(time.Minute)
	if !r.Finished() {
		t.Fatal("precondition: replay finished")
	}
	r.Reset()
	if got := r.VisibleCount(); got != 25 {
		t.Errorf("after reset: visible = %d, want 25", got)
	}
	if r.Finished() {
		t.Error("replay should be running again after reset")
	}
}

func TestGamePayloadStatusFlips(t *testing.T) {
	r, clock := newTestReplayer(40, 10*time.Second, 25)

	result := r.GamePayload()["result"].(map[string]any)
	game := result["game"].(map[string]any)
	if game["statusCode"] != "ING" {
		t.Errorf("running statusCode = %v, want ING", game["statusCode"])
	}
	if game["gameId"] != "X" {
		t.Errorf("recorded fields must pass through, gameId = %v", game["gameId"])
	}

	clock.t = clock.t.Add(time.Minute)
	result = r.GamePayload()["result"].(map[string]any)
	game = result["game"].(map[string]any)
	if game["statusCode"] != "RESULT" {
		t.Errorf("finished statusCode = %v, want RESULT", game["statusCode"])
	}
}

func TestRelayPayloadFiltersInvisibleFragments(t *testing.T) {
	r, _ := newTestReplayer(40, 10*time.Second, 25)

	result := r.RelayPayload(1)["result"].(map[string]any)
	data := result["textRelayData"].(relay.RelayData)
	if len(data.TextRelays) != 1 {
		t.Fatalf("got %d relay groups, want 1", len(data.TextRelays))
	}
	if got := len(data.TextRelays[0].TextOptions); got != 25 {
		t.Errorf("visible fragments = %d, want 25", got)
	}
	// Reveal order must follow seqno from the start.
	if data.TextRelays[0].TextOptions[0].SeqNo.Int() != 1 {
		t.Errorf("first fragment seqno = %d, want 1", data.TextRelays[0].TextOptions[0].SeqNo.Int())
	}
}

func TestRelayPayloadUnknownInning(t *testing.T) {
	r, _ := newTestReplayer(10, 10*time.Second, 25)
	result := r.RelayPayload(5)["result"].(map[string]any)
	data := result["textRelayData"].(relay.RelayData)
	if len(data.TextRelays) != 0 {
		t.Errorf("unplayed inning returned %d groups, want 0", len(data.TextRelays))
	}
}

func TestLoadSample(t *testing.T) {
	game, relays, err := LoadSample()
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if game["gameId"] != SampleGameID {
		t.Errorf("gameId = %v, want %s", game["gameId"], SampleGameID)
	}
	if len(relays) == 0 {
		t.Fatal("sample has no innings")
	}
	r := New(game, relays, time.Second, 1)
	if r.TimelineLen() == 0 {
		t.Error("sample timeline is empty")
	}
}
