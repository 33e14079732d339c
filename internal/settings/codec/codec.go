// Package codec maps the flat settings wire object to the preferences model
// and back.
package codec

import (
	"fmt"

	"nolatabs/internal/settings/models"
	dErrors "nolatabs/pkg/domain-errors"
)

// Wire discriminants.
const (
	StyleUnix         = "unix"
	StylePlainEnglish = "plain-english"

	BehaviourTimer = "timer"
	BehaviourCount = "count"
	BehaviourOn    = "on"
	BehaviourOff   = "off"
)

// Wire is the JSON shape of GET and POST /account/settings. Interval and
// count fields are side channels: each is always present, and only read when
// its dimension's discriminant selects the matching variant.
type Wire struct {
	PreferredCommandStyle   string `json:"preferred_command_style"`
	AutoCommitBehaviour     string `json:"auto_commit_behaviour"`
	AutoCommitTimerInterval uint64 `json:"auto_commit_timer_interval"`
	AutoCommitCountInterval uint64 `json:"auto_commit_count_interval"`
	AutoPullBehaviour       string `json:"auto_pull_behaviour"`
	AutoPullTimerInterval   uint64 `json:"auto_pull_timer_interval"`
	AutoPushBehaviour       string `json:"auto_push_behaviour"`
	AutoPushTimerInterval   uint64 `json:"auto_push_timer_interval"`
	AutoPushCountInterval   uint64 `json:"auto_push_count_interval"`
}

// Decode never fails. Unknown command styles decode to Unix and unknown
// behaviours to Off. Side-channel values are taken as given; counts beyond
// uint32 are truncated to their low 32 bits. A count that truncates to zero
// is then treated as absent, so the stored count is retained on update.
func Decode(w Wire) models.Preferences {
	p, _ := decode(w)
	return p
}

// DecodeStrict is Decode but rejects unknown discriminants with
// CodeInvalidInput.
func DecodeStrict(w Wire) (models.Preferences, error) {
	p, unknown := decode(w)
	if len(unknown) > 0 {
		return models.Preferences{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("unknown value for %v", unknown))
	}
	return p, nil
}

func decode(w Wire) (models.Preferences, []string) {
	var unknown []string
	var p models.Preferences

	switch w.PreferredCommandStyle {
	case StyleUnix:
		p.CommandStyle = models.CommandStyleUnix
	case StylePlainEnglish:
		p.CommandStyle = models.CommandStylePlainEnglish
	default:
		p.CommandStyle = models.CommandStyleUnix
		unknown = append(unknown, "preferred_command_style")
	}

	switch w.AutoCommitBehaviour {
	case BehaviourTimer:
		p.AutoCommit = models.Timer{IntervalMillis: w.AutoCommitTimerInterval}
	case BehaviourCount:
		p.AutoCommit = models.Count{N: uint32(w.AutoCommitCountInterval)}
	case BehaviourOff:
		p.AutoCommit = models.Off{}
	default:
		p.AutoCommit = models.Off{}
		unknown = append(unknown, "auto_commit_behaviour")
	}

	switch w.AutoPullBehaviour {
	case BehaviourTimer:
		p.AutoPull = models.Timer{IntervalMillis: w.AutoPullTimerInterval}
	case BehaviourOn:
		p.AutoPull = models.On{}
	case BehaviourOff:
		p.AutoPull = models.Off{}
	default:
		p.AutoPull = models.Off{}
		unknown = append(unknown, "auto_pull_behaviour")
	}

	switch w.AutoPushBehaviour {
	case BehaviourTimer:
		p.AutoPush = models.Timer{IntervalMillis: w.AutoPushTimerInterval}
	case BehaviourCount:
		p.AutoPush = models.Count{N: uint32(w.AutoPushCountInterval)}
	case BehaviourOff:
		p.AutoPush = models.Off{}
	default:
		p.AutoPush = models.Off{}
		unknown = append(unknown, "auto_push_behaviour")
	}

	return p, unknown
}

// Encode populates every wire field. Side channels of inactive variants are
// zero so the output shape never depends on which variants are active.
func Encode(p models.Preferences) Wire {
	p = p.Normalize()
	w := Wire{
		PreferredCommandStyle: p.CommandStyle.String(),
	}

	switch b := p.AutoCommit.(type) {
	case models.Timer:
		w.AutoCommitBehaviour = BehaviourTimer
		w.AutoCommitTimerInterval = b.IntervalMillis
	case models.Count:
		w.AutoCommitBehaviour = BehaviourCount
		w.AutoCommitCountInterval = uint64(b.N)
	default:
		w.AutoCommitBehaviour = BehaviourOff
	}

	switch b := p.AutoPull.(type) {
	case models.Timer:
		w.AutoPullBehaviour = BehaviourTimer
		w.AutoPullTimerInterval = b.IntervalMillis
	case models.On:
		w.AutoPullBehaviour = BehaviourOn
	default:
		w.AutoPullBehaviour = BehaviourOff
	}

	switch b := p.AutoPush.(type) {
	case models.Timer:
		w.AutoPushBehaviour = BehaviourTimer
		w.AutoPushTimerInterval = b.IntervalMillis
	case models.Count:
		w.AutoPushBehaviour = BehaviourCount
		w.AutoPushCountInterval = uint64(b.N)
	default:
		w.AutoPushBehaviour = BehaviourOff
	}

	return w
}
