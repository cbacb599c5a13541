package engine

import (
	"time"

	"reviewguard/internal/core/normalize"
	"reviewguard/internal/core/ratelimit"
)

// Reason names a rule that rejected a submission
type Reason string

const (
	// ReasonInvalidLength fires when the token count is outside the bounds
	ReasonInvalidLength Reason = "InvalidLength"
	// ReasonRepetitive fires when the repetition score reaches its threshold
	ReasonRepetitive Reason = "Repetitive"
	// ReasonSimilar fires when the similarity score reaches its threshold
	ReasonSimilar Reason = "Similar"
	// ReasonModelFake fires when the model fake probability reaches its threshold
	ReasonModelFake Reason = "ModelFake"
)

// RateLimited builds the RateLimited:<dimension> reason
func RateLimited(dim ratelimit.Kind) Reason { return Reason("RateLimited:" + string(dim)) }

// Stage is a step of the evaluation state machine
type Stage string

// received -> length_checked -> rate_checked -> scored -> decided
const (
	StageReceived      Stage = "received"
	StageLengthChecked Stage = "length_checked"
	StageRateChecked   Stage = "rate_checked"
	StageScored        Stage = "scored"
	StageDecided       Stage = "decided"
)

// Verdict warnings
const (
	WarnModelUnavailable = "model_unavailable"
	WarnIndexInsert      = "index_insert_failed"
)

// Submission is one review as delivered by the request layer
type Submission struct {
	SubmitterID string
	ContactID   string
	TargetID    string
	Text        string
	SubmittedAt time.Time // zero means now
}

// Scores is the signal snapshot for one submission
type Scores struct {
	Repetition  float64 `json:"repetition"`
	Similarity  float64 `json:"similarity"`
	ModelFake   float64 `json:"model_fake_probability"`
	ModelScored bool    `json:"model_scored"`
}

// Verdict is the immutable outcome of one evaluation.
// Stage is decided on every returned verdict; Reached is the last stage
// passed before the decision, so short circuits stay visible
type Verdict struct {
	Accepted bool          `json:"accepted"`
	Reasons  []Reason      `json:"reasons"`
	Scores   Scores        `json:"scores"`
	Stage    Stage         `json:"stage"`
	Reached  Stage         `json:"reached"`
	Warnings []string      `json:"warnings,omitempty"`
	Day      ratelimit.Day `json:"day,omitempty"`
	Tokens   int           `json:"tokens"`

	// Text is the canonical form; kept for persistence, not rendered
	Text normalize.Text `json:"-"`
}

func (v *Verdict) decide() {
	v.Reached, v.Stage = v.Stage, StageDecided
}

// Has reports whether reason r is present
func (v Verdict) Has(r Reason) bool {
	for _, x := range v.Reasons {
		if x == r {
			return true
		}
	}
	return false
}

func (v *Verdict) warn(w string) { v.Warnings = append(v.Warnings, w) }
