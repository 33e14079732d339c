package codec

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nolatabs/internal/settings/models"
	dErrors "nolatabs/pkg/domain-errors"
)

func allPreferences() []models.Preferences {
	styles := []models.CommandStyle{models.CommandStyleUnix, models.CommandStylePlainEnglish}
	commits := []models.CommitBehaviour{
		models.Off{}, models.Timer{}, models.Timer{IntervalMillis: 500},
		models.Timer{IntervalMillis: math.MaxUint64}, models.Count{}, models.Count{N: math.MaxUint32},
	}
	pulls := []models.PullBehaviour{models.Off{}, models.On{}, models.Timer{IntervalMillis: 100}}
	pushes := []models.PushBehaviour{models.Off{}, models.Timer{IntervalMillis: 200}, models.Count{N: 5}}

	var out []models.Preferences
	for _, s := range styles {
		for _, c := range commits {
			for _, pl := range pulls {
				for _, ps := range pushes {
					out = append(out, models.Preferences{CommandStyle: s, AutoCommit: c, AutoPull: pl, AutoPush: ps})
				}
			}
		}
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	for _, p := range allPreferences() {
		assert.Equal(t, p, Decode(Encode(p)), "round trip of %+v", p)
	}

	// nil behaviours are Off and come back normalized
	zero := models.Preferences{}
	assert.Equal(t, zero.Normalize(), Decode(Encode(zero)))
	assert.Equal(t, models.Default(), Decode(Encode(zero)))
}

func TestRoundTripThroughJSON(t *testing.T) {
	for _, p := range allPreferences() {
		body, err := json.Marshal(Encode(p))
		require.NoError(t, err)
		var w Wire
		require.NoError(t, json.Unmarshal(body, &w))
		assert.Equal(t, p, Decode(w))
	}
}

func TestEncode_IsComplete(t *testing.T) {
	w := Encode(models.Preferences{
		CommandStyle: models.CommandStylePlainEnglish,
		AutoCommit:   models.Timer{IntervalMillis: 500},
		AutoPull:     models.On{},
		AutoPush:     models.Count{N: 100},
	})

	assert.Equal(t, Wire{
		PreferredCommandStyle:   "plain-english",
		AutoCommitBehaviour:     "timer",
		AutoCommitTimerInterval: 500,
		AutoCommitCountInterval: 0,
		AutoPullBehaviour:       "on",
		AutoPullTimerInterval:   0,
		AutoPushBehaviour:       "count",
		AutoPushTimerInterval:   0,
		AutoPushCountInterval:   100,
	}, w)

	body, err := json.Marshal(w)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.Len(t, fields, 9)
}

func TestEncode_NilBehavioursAreOff(t *testing.T) {
	w := Encode(models.Preferences{})
	assert.Equal(t, "unix", w.PreferredCommandStyle)
	assert.Equal(t, "off", w.AutoCommitBehaviour)
	assert.Equal(t, "off", w.AutoPullBehaviour)
	assert.Equal(t, "off", w.AutoPushBehaviour)
}

func TestDecode_IsTotal(t *testing.T) {
	p := Decode(Wire{
		PreferredCommandStyle:   "fish",
		AutoCommitBehaviour:     "hourly",
		AutoCommitTimerInterval: 10,
		AutoPullBehaviour:       "count",
		AutoPullTimerInterval:   10,
		AutoPushBehaviour:       "",
	})

	assert.Equal(t, models.Default(), p)
}

func TestDecode_ReadsSideChannels(t *testing.T) {
	p := Decode(Wire{
		PreferredCommandStyle:   "unix",
		AutoCommitBehaviour:     "timer",
		AutoCommitTimerInterval: 500,
		AutoCommitCountInterval: 9,
		AutoPullBehaviour:       "timer",
		AutoPullTimerInterval:   100,
		AutoPushBehaviour:       "count",
		AutoPushTimerInterval:   7,
		AutoPushCountInterval:   100,
	})

	assert.Equal(t, models.Preferences{
		CommandStyle: models.CommandStyleUnix,
		AutoCommit:   models.Timer{IntervalMillis: 500},
		AutoPull:     models.Timer{IntervalMillis: 100},
		AutoPush:     models.Count{N: 100},
	}, p)
}

func TestDecode_TruncatesOversizedCount(t *testing.T) {
	p := Decode(Wire{AutoPushBehaviour: "count", AutoPushCountInterval: math.MaxUint32 + 2})
	assert.Equal(t, models.Count{N: 1}, p.AutoPush)

	p = Decode(Wire{AutoCommitBehaviour: "count", AutoCommitCountInterval: math.MaxUint32 + 1})
	assert.Equal(t, models.Count{N: 0}, p.AutoCommit)
}

func TestDecodeStrict(t *testing.T) {
	t.Run("accepts known discriminants", func(t *testing.T) {
		p, err := DecodeStrict(Wire{
			PreferredCommandStyle: "plain-english",
			AutoCommitBehaviour:   "off",
			AutoPullBehaviour:     "on",
			AutoPushBehaviour:     "timer",
			AutoPushTimerInterval: 200,
		})
		require.NoError(t, err)
		assert.Equal(t, models.Timer{IntervalMillis: 200}, p.AutoPush)
	})

	t.Run("rejects unknown discriminants", func(t *testing.T) {
		_, err := DecodeStrict(Wire{
			PreferredCommandStyle: "unix",
			AutoCommitBehaviour:   "off",
			AutoPullBehaviour:     "count",
			AutoPushBehaviour:     "off",
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Contains(t, err.Error(), "auto_pull_behaviour")
	})
}
