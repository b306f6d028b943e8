package ai

import "time"

// BackoffPolicy computes retry delays and eligibility. The delay function is
// pure: delay(n) = min(base * 2^n, cap).
type BackoffPolicy struct {
	Base time.Duration
	Cap  time.Duration

	// MaxRetries bounds same-model retries for eligible failures. The primary
	// chat path runs with 0: failover to another model is preferred over
	// retrying in place.
	MaxRetries int
}

// DefaultBackoff matches the production chat path.
func DefaultBackoff() BackoffPolicy {
	return BackoffPolicy{
		Base:       time.Second,
		Cap:        10 * time.Second,
		MaxRetries: 0,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	d := p.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.Cap {
			return p.Cap
		}
	}
	if d > p.Cap {
		return p.Cap
	}
	return d
}

// RetrySameModel reports whether a failure of the given kind may be retried
// on the same model within the policy's budget.
//
// RateLimited abandons the model immediately. AuthInvalid aborts the whole
// turn. ServiceBusy, NetworkError and Timeout are retryable up to MaxRetries.
func (p BackoffPolicy) RetrySameModel(kind FailureKind, attempt int) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	switch kind {
	case FailServiceBusy, FailNetwork, FailTimeout:
		return true
	default:
		return false
	}
}
