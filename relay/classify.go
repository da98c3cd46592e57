package relay

import (
	"strings"

	"github.com/basehaptic/relayapi/models"
)

// RuleTable holds the locale-specific keyword sets used to classify relay
// text. It is a plain value so alternate-language feeds can swap in their
// own table without touching the classifier.
type RuleTable struct {
	Score       []string
	Out         []string
	SacFly      []string
	TagUp       []string
	Steal       []string
	StealFail   []string
	VideoReview []string
	Walk        []string
	Homerun     []string
	Hit         []string

	// Free-text fallbacks for pitches missing a structured result code.
	BallText   []string
	StrikeText []string
}

// DefaultRules covers the Korean relay feed plus the English phrases the
// upstream occasionally mixes in.
var DefaultRules = &RuleTable{
	Score:       []string{"득점", "홈인", "홈으로", "생환", "추가점", "동점", "역전", "scores", "scored", "score"},
	Out:         []string{"아웃", "삼진", "병살", "out", "strikeout", "double play"},
	SacFly:      []string{"희생플라이", "희생 플라이", "sacrifice fly", "sac fly"},
	TagUp:       []string{"태그업", "tag up", "tag-up"},
	Steal:       []string{"도루", "stolen base", "steal"},
	StealFail:   []string{"도루실패", "caught stealing"},
	VideoReview: []string{"비디오 판독", "video review"},
	Walk:        []string{"볼넷", "고의사구", "고의 사구", "walk", "intentional walk"},
	Homerun:     []string{"홈런", "homerun", "home run"},
	Hit: []string{
		"루타", "안타", "내야안타", "번트안타", "단타",
		"좌안", "우안", "중안", "좌중안", "우중안",
		"single", "double", "triple",
	},
	BallText:   []string{"볼"},
	StrikeText: []string{"스트라이크", "파울", "헛스윙", "strike", "foul", "swing"},
}

func containsAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Classify maps one raw fragment to exactly one canonical event category.
// The precedence order is load-bearing: specific phrase combinations
// (sac-fly score, tag-up) are checked before the generic score/out rules,
// and a generic score outranks a generic out when both phrases appear.
func (t *RuleTable) Classify(optionType int, pitchResult, text string) models.EventType {
	pitch := strings.ToUpper(strings.TrimSpace(pitchResult))
	text = strings.TrimSpace(text)

	if optionType == OptionPitch {
		switch pitch {
		case PitchBall:
			return models.EventBall
		case PitchStrikeLooking, PitchStrikeSwinging, PitchFoul:
			return models.EventStrike
		case PitchInPlay:
			// Contact alone does not determine the outcome of the play.
			return models.EventOther
		}
	}

	hasScore := containsAny(text, t.Score)
	hasOut := containsAny(text, t.Out)

	if hasOut && hasScore && (containsAny(text, t.SacFly) || containsAny(text, t.TagUp)) {
		return models.EventSacFlyScore
	}
	if containsAny(text, t.TagUp) && hasOut && !hasScore {
		return models.EventTagUp
	}
	if containsAny(text, t.VideoReview) {
		return models.EventOther
	}
	if containsAny(text, t.Steal) {
		if containsAny(text, t.StealFail) || hasOut {
			return models.EventOut
		}
		return models.EventSteal
	}
	if containsAny(text, t.Walk) {
		return models.EventWalk
	}
	if containsAny(text, t.Homerun) {
		return models.EventHomerun
	}
	if hasScore {
		return models.EventScore
	}
	if hasOut {
		return models.EventOut
	}
	if containsAny(text, t.Hit) {
		return models.EventHit
	}
	return models.EventOther
}

// ClassifyOption classifies a decoded fragment.
func (t *RuleTable) ClassifyOption(opt *TextOption) models.EventType {
	return t.Classify(opt.Type.Int(), opt.PitchCode(), opt.Text)
}

// countsBall reports whether a pitch fragment should increment the ball
// count. The free-text fallback applies only when the structured pitch
// result code is absent.
func (t *RuleTable) countsBall(pitchResult, text string) bool {
	if pitchResult != "" {
		return pitchResult == PitchBall
	}
	return containsAny(text, t.BallText) && !containsAny(text, t.Walk)
}

// countsStrike mirrors countsBall for the strike count.
func (t *RuleTable) countsStrike(pitchResult, text string) bool {
	if pitchResult != "" {
		switch pitchResult {
		case PitchStrikeLooking, PitchStrikeSwinging, PitchFoul:
			return true
		}
		return false
	}
	return containsAny(text, t.StrikeText)
}
