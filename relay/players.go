package relay

import "strings"

// PlayerMap accumulates id→name lookups over one parse run, so fragments
// that reference players only by id can be resolved later in the stream.
type PlayerMap map[string]string

// Resolve returns the known name for the id, or "" when unresolved.
func (m PlayerMap) Resolve(id string) string {
	if id = strings.TrimSpace(id); id == "" {
		return ""
	}
	return m[id]
}

func (m PlayerMap) add(id, name string) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id != "" && name != "" {
		m[id] = name
	}
}

func (m PlayerMap) addPlayer(p *Player) {
	if p == nil {
		return
	}
	m.add(p.ID(), p.DisplayName())
}

func (m PlayerMap) addEntry(e Entry) {
	for i := range e.Batter {
		m.addPlayer(&e.Batter[i])
	}
	for i := range e.Pitcher {
		m.addPlayer(&e.Pitcher[i])
	}
}

// BuildPlayerMap seeds a player map from one inning's roster blocks.
func BuildPlayerMap(data *RelayData) PlayerMap {
	m := PlayerMap{}
	if data == nil {
		return m
	}
	m.addEntry(data.HomeEntry)
	m.addEntry(data.AwayEntry)
	m.addEntry(data.HomeLineup)
	m.addEntry(data.AwayLineup)
	return m
}

// learnFromOption picks up names revealed by in-line batter records and
// player-change fragments.
func (m PlayerMap) learnFromOption(opt *TextOption) {
	if opt.BatterRecord != nil {
		m.add(opt.BatterRecord.PCode.String(), opt.BatterRecord.Name)
	}
	if opt.PlayerChange != nil {
		m.addPlayer(opt.PlayerChange.InPlayer)
		m.addPlayer(opt.PlayerChange.OutPlayer)
	}
}
