// Package ratelimit gates review submissions by per-identity daily ceilings
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Kind names an identity dimension
type Kind string

const (
	// KindSubmitter is the account submitting the review
	KindSubmitter Kind = "submitter"
	// KindContact is the contact identity (email) attached to the submission
	KindContact Kind = "contact"
)

// Default ceilings per UTC day
const (
	DefaultPerSubmitter = 5
	DefaultPerContact   = 3
)

// ErrEmptyIdentity is returned when either identity is blank
var ErrEmptyIdentity = errors.New("ratelimit: empty identity")

// Day is a UTC calendar date bucket formatted as 2006-01-02
type Day string

const dayLayout = "2006-01-02"

// DayOf returns the UTC bucket containing t
func DayOf(t time.Time) Day { return Day(t.UTC().Format(dayLayout)) }

// Time returns midnight UTC of d; the zero time if d is malformed
func (d Day) Time() time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Next returns the following day
func (d Day) Next() Day { return DayOf(d.Time().AddDate(0, 0, 1)) }

// Limits are inclusive per-day ceilings; a value <= 0 disables that dimension
type Limits struct {
	PerSubmitter int
	PerContact   int
}

// DefaultLimits returns the stock ceilings
func DefaultLimits() Limits {
	return Limits{PerSubmitter: DefaultPerSubmitter, PerContact: DefaultPerContact}
}

func (l Limits) of(k Kind) int {
	if k == KindContact {
		return l.PerContact
	}
	return l.PerSubmitter
}

// Decision is the outcome of one CheckAndIncrement call.
// Counts are the values after the call; on denial they are unchanged
type Decision struct {
	Allowed   bool
	Dimension Kind // exceeded dimension when denied
	Submitter int
	Contact   int
	Day       Day
}

// Reason renders a denial as RateLimited:<dimension>
func (d Decision) Reason() string {
	if d.Allowed {
		return ""
	}
	return "RateLimited:" + string(d.Dimension)
}

// Gate is the rate limiter contract consumed by the decision engine
type Gate interface {
	// CheckAndIncrement atomically checks both identities for day and
	// increments both only when neither is at its ceiling. The submitter
	// dimension is reported first when both are exceeded
	CheckAndIncrement(ctx context.Context, submitter, contact string, day Day) (Decision, error)
}

// Counter reads a single counter without mutating it
type Counter interface {
	Count(ctx context.Context, kind Kind, identity string, day Day) (int, error)
}

// decide applies the ceiling rule to current counts
func decide(l Limits, sub, con int) (bool, Kind) {
	if c := l.of(KindSubmitter); c > 0 && sub >= c {
		return false, KindSubmitter
	}
	if c := l.of(KindContact); c > 0 && con >= c {
		return false, KindContact
	}
	return true, ""
}

// Decide exposes the ceiling rule for store-backed gates
func Decide(l Limits, submitterCount, contactCount int, day Day) Decision {
	ok, dim := decide(l, submitterCount, contactCount)
	d := Decision{Allowed: ok, Dimension: dim, Submitter: submitterCount, Contact: contactCount, Day: day}
	if ok {
		d.Submitter++
		d.Contact++
	}
	return d
}
