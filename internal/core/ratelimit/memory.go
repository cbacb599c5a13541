package ratelimit

import (
	"context"
	"sync"
)

// keep the current and previous day; older buckets are pruned on write
const keepDays = 2

type key struct {
	kind Kind
	id   string
}

type counter struct {
	mu   sync.Mutex
	days map[Day]int
	dead bool // set by Sweep; holders must re-resolve
}

// Memory is an in-process Gate. Each identity has its own lock; a check takes
// the submitter lock then the contact lock, always in that order, so unrelated
// identities never contend and the pair cannot deadlock
type Memory struct {
	limits   Limits
	counters sync.Map // key -> *counter
}

// NewMemory creates an in-process limiter with the given ceilings
func NewMemory(l Limits) *Memory { return &Memory{limits: l} }

// Limits returns the configured ceilings
func (m *Memory) Limits() Limits { return m.limits }

// lock returns the live counter for k with its mutex held
func (m *Memory) lock(k key) *counter {
	for {
		v, _ := m.counters.LoadOrStore(k, &counter{days: map[Day]int{}})
		c := v.(*counter)
		c.mu.Lock()
		if !c.dead {
			return c
		}
		c.mu.Unlock()
	}
}

// CheckAndIncrement implements Gate
func (m *Memory) CheckAndIncrement(_ context.Context, submitter, contact string, day Day) (Decision, error) {
	if submitter == "" || contact == "" {
		return Decision{}, ErrEmptyIdentity
	}

	s := m.lock(key{KindSubmitter, submitter})
	defer s.mu.Unlock()
	c := m.lock(key{KindContact, contact})
	defer c.mu.Unlock()

	d := Decide(m.limits, s.days[day], c.days[day], day)
	if !d.Allowed {
		return d, nil
	}
	s.bump(day)
	c.bump(day)
	return d, nil
}

func (c *counter) bump(day Day) {
	c.days[day]++
	if len(c.days) <= keepDays {
		return
	}
	cut := day.Time().AddDate(0, 0, -(keepDays - 1))
	for d := range c.days {
		if d.Time().Before(cut) {
			delete(c.days, d)
		}
	}
}

// Count implements Counter
func (m *Memory) Count(_ context.Context, kind Kind, identity string, day Day) (int, error) {
	v, ok := m.counters.Load(key{kind, identity})
	if !ok {
		return 0, nil
	}
	c := v.(*counter)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.days[day], nil
}

// Sweep drops identities with no activity on or after since and returns how
// many were removed
func (m *Memory) Sweep(since Day) int {
	cut := since.Time()
	n := 0
	m.counters.Range(func(k, v any) bool {
		c := v.(*counter)
		c.mu.Lock()
		idle := true
		for d := range c.days {
			if !d.Time().Before(cut) {
				idle = false
				break
			}
		}
		if idle {
			c.dead = true
			m.counters.Delete(k)
			n++
		}
		c.mu.Unlock()
		return true
	})
	return n
}
