package delivery

import "time"

// DefaultMaxAttempts is the attempt ceiling before an entry becomes
// terminally failed.
const DefaultMaxAttempts = 6

/* retryDelays is the partner-facing backoff table: the delay before
 * retry N follows N consecutive failures. These values are documented
 * to partners and must not drift.
 */
var retryDelays = [...]time.Duration{
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	30 * time.Minute,
	2 * time.Hour,
	6 * time.Hour,
}

// RetryDelay returns the delay before the retry following the given
// number of failed attempts. Attempts past the table clamp to the
// last delay.
func RetryDelay(failedAttempts int) time.Duration {
	if failedAttempts < 1 {
		failedAttempts = 1
	}
	if failedAttempts > len(retryDelays) {
		failedAttempts = len(retryDelays)
	}
	return retryDelays[failedAttempts-1]
}
