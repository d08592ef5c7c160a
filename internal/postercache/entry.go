package postercache

import "time"

// Outcome describes how a poster URL was produced.
type Outcome string

const (
	// OutcomeResolved means TMDB returned a poster path.
	OutcomeResolved Outcome = "resolved"
	// OutcomeNoPoster means TMDB answered but the movie has no poster.
	OutcomeNoPoster Outcome = "no_poster"
	// OutcomeNoCredentials means no API key was configured.
	OutcomeNoCredentials Outcome = "no_credentials"
	// OutcomeTransient means retries were exhausted on rate limits, server
	// errors, timeouts or connection failures.
	OutcomeTransient Outcome = "transient"
	// OutcomeFailed means TMDB rejected the request or returned an unusable
	// response.
	OutcomeFailed Outcome = "failed"
)

// SessionScoped reports whether the outcome should not outlive the process.
// Persistent caches drop these entries when reopened so a later run can retry.
func (o Outcome) SessionScoped() bool {
	return o == OutcomeTransient || o == OutcomeNoCredentials
}

// Placeholder reports whether the entry holds the placeholder URL.
func (o Outcome) Placeholder() bool {
	return o != OutcomeResolved
}

// Entry is one cached resolution.
type Entry struct {
	MovieID      int64     `json:"movie_id"`
	URL          string    `json:"url"`
	Outcome      Outcome   `json:"outcome"`
	FailureClass string    `json:"failure_class,omitempty"`
	ResolvedAt   time.Time `json:"resolved_at"`
}
