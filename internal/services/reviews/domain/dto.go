// Package domain holds the request and response shapes of the reviews API
package domain

import (
	"time"

	"reviewguard/internal/core/engine"
)

// EvaluateInput is one review submission; its timestamp is taken by the server
type EvaluateInput struct {
	SubmitterID string `json:"submitter_id" validate:"required,max=128" example:"user-42"`
	ContactID   string `json:"contact_id"   validate:"required,max=254" example:"jane@example.com"`
	TargetID    string `json:"target_id"    validate:"required,max=128" example:"sku-1001"`
	Text        string `json:"text"         validate:"max=65536"        example:"Solid kettle, boils fast and the handle stays cool."`
}

// AnalyzeInput scores text against a target without side effects
type AnalyzeInput struct {
	TargetID string `json:"target_id" validate:"max=128"   example:"sku-1001"`
	Text     string `json:"text"      validate:"max=65536" example:"Solid kettle, boils fast and the handle stays cool."`
}

// VerdictOut is the evaluation outcome, ID is set when the review was stored
type VerdictOut struct {
	ID string `json:"id,omitempty" example:"0b6f7c1e-7f59-4d1c-9a55-3c1f6a9b2f10"`
	engine.Verdict
}

// Review is a stored accepted review
type Review struct {
	ID          string        `json:"id"`
	TargetID    string        `json:"target_id"`
	SubmitterID string        `json:"submitter_id"`
	ContactID   string        `json:"contact_id"`
	Text        string        `json:"text"`
	Canonical   string        `json:"canonical"`
	Scores      engine.Scores `json:"scores"`
	CreatedAt   time.Time     `json:"created_at"`
}

// LimitsInput names the identities to report on, either may be empty
type LimitsInput struct {
	SubmitterID string `json:"submitter_id"`
	ContactID   string `json:"contact_id"`
}

// LimitUsage is one identity's counter for the current day.
// Max 0 means the dimension is not limited and Remaining is -1
type LimitUsage struct {
	Identity  string `json:"identity"  example:"user-42"`
	Used      int    `json:"used"      example:"2"`
	Max       int    `json:"max"       example:"5"`
	Remaining int    `json:"remaining" example:"3"`
}

// LimitsOut reports today's counters for the requested identities
type LimitsOut struct {
	Day       string      `json:"day"                 example:"2025-09-03"`
	Submitter *LimitUsage `json:"submitter,omitempty"`
	Contact   *LimitUsage `json:"contact,omitempty"`
}

// ModelInfo describes the configured fake-probability model
type ModelInfo struct {
	Kind    string `json:"kind"              example:"bayes"`
	Version string `json:"version,omitempty" example:"2025-09-01"`
	Policy  string `json:"policy"            example:"degrade"`
	Ready   bool   `json:"ready"`
	Error   string `json:"error,omitempty"`
}
