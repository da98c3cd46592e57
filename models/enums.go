package models

import "strings"

// GameStatus is the canonical lifecycle status of a game.
type GameStatus string

const (
	StatusScheduled GameStatus = "SCHEDULED"
	StatusLive      GameStatus = "LIVE"
	StatusFinished  GameStatus = "FINISHED"
)

// EventType is the closed set of canonical relay event categories.
type EventType string

const (
	EventBall        EventType = "BALL"
	EventStrike      EventType = "STRIKE"
	EventWalk        EventType = "WALK"
	EventOut         EventType = "OUT"
	EventHit         EventType = "HIT"
	EventHomerun     EventType = "HOMERUN"
	EventScore       EventType = "SCORE"
	EventSacFlyScore EventType = "SAC_FLY_SCORE"
	EventTagUp       EventType = "TAG_UP_ADVANCE"
	EventSteal       EventType = "STEAL"
	EventOther       EventType = "OTHER"
)

var statusMap = map[string]GameStatus{
	"LIVE":        StatusLive,
	"ING":         StatusLive,
	"PLAYING":     StatusLive,
	"IN_PROGRESS": StatusLive,
	"READY":       StatusScheduled,
	"SCHEDULED":   StatusScheduled,
	"PREGAME":     StatusScheduled,
	"BEFORE":      StatusScheduled,
	"END":         StatusFinished,
	"FINAL":       StatusFinished,
	"RESULT":      StatusFinished,
	"FINISHED":    StatusFinished,
}

var eventTypeMap = map[string]EventType{
	"BALL":           EventBall,
	"STRIKE":         EventStrike,
	"WALK":           EventWalk,
	"OUT":            EventOut,
	"HIT":            EventHit,
	"HOMERUN":        EventHomerun,
	"HOME_RUN":       EventHomerun,
	"SCORE":          EventScore,
	"SAC_FLY_SCORE":  EventSacFlyScore,
	"TAG_UP_ADVANCE": EventTagUp,
	"STEAL":          EventSteal,
	"OTHER":          EventOther,
}

// NormalizeStatus maps an arbitrary upstream status string to a canonical
// GameStatus. Unrecognized input defaults to SCHEDULED.
func NormalizeStatus(raw string) GameStatus {
	if s, ok := statusMap[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusScheduled
}

// NormalizeEventType maps a free-vocabulary event type string to a canonical
// EventType. Unrecognized input defaults to OTHER.
func NormalizeEventType(raw string) EventType {
	if t, ok := eventTypeMap[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return t
	}
	return EventOther
}

// IsFinal reports whether the status marks a game that will not update again.
func (s GameStatus) IsFinal() bool {
	return s == StatusFinished
}
