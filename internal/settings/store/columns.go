package store

import (
	"database/sql"

	"nolatabs/internal/settings/models"
)

// Stored discriminants.
const (
	styleTerminal     = "terminal style"
	stylePlainEnglish = "plain-english style"

	optionTimer = "timer"
	optionCount = "count"
	optionOn    = "on"
	optionOff   = "off"
)

// columns is the flattened row layout of account_preferences. Parameter
// columns are NULL when the incoming value does not supply them.
//
// Intervals are uint64 in the model and BIGINT in the table, counts uint32
// and INTEGER; the conversions reinterpret bits so every value round-trips.
type columns struct {
	CommandStyle     string
	CommitOption     string
	CommitIntervalMS sql.NullInt64
	CommitCount      sql.NullInt32
	PullOption       string
	PullIntervalMS   sql.NullInt64
	PushOption       string
	PushIntervalMS   sql.NullInt64
	PushCount        sql.NullInt32
}

func interval(ms uint64) sql.NullInt64 {
	if ms == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(ms), Valid: true}
}

func count(n uint32) sql.NullInt32 {
	if n == 0 {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}
}

// flatten maps preferences to columns. Only the active variant's parameter is
// set, and only when it is non-zero.
func flatten(p models.Preferences) columns {
	p = p.Normalize()
	var c columns

	switch p.CommandStyle {
	case models.CommandStylePlainEnglish:
		c.CommandStyle = stylePlainEnglish
	default:
		c.CommandStyle = styleTerminal
	}

	switch b := p.AutoCommit.(type) {
	case models.Timer:
		c.CommitOption = optionTimer
		c.CommitIntervalMS = interval(b.IntervalMillis)
	case models.Count:
		c.CommitOption = optionCount
		c.CommitCount = count(b.N)
	default:
		c.CommitOption = optionOff
	}

	switch b := p.AutoPull.(type) {
	case models.Timer:
		c.PullOption = optionTimer
		c.PullIntervalMS = interval(b.IntervalMillis)
	case models.On:
		c.PullOption = optionOn
	default:
		c.PullOption = optionOff
	}

	switch b := p.AutoPush.(type) {
	case models.Timer:
		c.PushOption = optionTimer
		c.PushIntervalMS = interval(b.IntervalMillis)
	case models.Count:
		c.PushOption = optionCount
		c.PushCount = count(b.N)
	default:
		c.PushOption = optionOff
	}

	return c
}

// inflate rebuilds preferences from a stored row. Unknown discriminants fall
// back to Unix and Off; NULL parameters read as zero.
func (c columns) inflate() models.Preferences {
	var p models.Preferences

	switch c.CommandStyle {
	case stylePlainEnglish:
		p.CommandStyle = models.CommandStylePlainEnglish
	default:
		p.CommandStyle = models.CommandStyleUnix
	}

	switch c.CommitOption {
	case optionTimer:
		p.AutoCommit = models.Timer{IntervalMillis: uint64(c.CommitIntervalMS.Int64)}
	case optionCount:
		p.AutoCommit = models.Count{N: uint32(c.CommitCount.Int32)}
	default:
		p.AutoCommit = models.Off{}
	}

	switch c.PullOption {
	case optionTimer:
		p.AutoPull = models.Timer{IntervalMillis: uint64(c.PullIntervalMS.Int64)}
	case optionOn:
		p.AutoPull = models.On{}
	default:
		p.AutoPull = models.Off{}
	}

	switch c.PushOption {
	case optionTimer:
		p.AutoPush = models.Timer{IntervalMillis: uint64(c.PushIntervalMS.Int64)}
	case optionCount:
		p.AutoPush = models.Count{N: uint32(c.PushCount.Int32)}
	default:
		p.AutoPush = models.Off{}
	}

	return p
}

// merge applies an update to a stored row. Discriminants are replaced
// unconditionally; each parameter column is replaced only when the update
// supplies it, so the parameter of a variant that becomes inactive survives
// and is recalled when the variant is selected again. This is the in-memory
// equivalent of the COALESCE update in PostgresStore.
func merge(stored, update columns) columns {
	stored.CommandStyle = update.CommandStyle
	stored.CommitOption = update.CommitOption
	stored.PullOption = update.PullOption
	stored.PushOption = update.PushOption

	stored.CommitIntervalMS = coalesce64(update.CommitIntervalMS, stored.CommitIntervalMS)
	stored.CommitCount = coalesce32(update.CommitCount, stored.CommitCount)
	stored.PullIntervalMS = coalesce64(update.PullIntervalMS, stored.PullIntervalMS)
	stored.PushIntervalMS = coalesce64(update.PushIntervalMS, stored.PushIntervalMS)
	stored.PushCount = coalesce32(update.PushCount, stored.PushCount)
	return stored
}

func coalesce64(update, stored sql.NullInt64) sql.NullInt64 {
	if update.Valid {
		return update
	}
	return stored
}

func coalesce32(update, stored sql.NullInt32) sql.NullInt32 {
	if update.Valid {
		return update
	}
	return stored
}
