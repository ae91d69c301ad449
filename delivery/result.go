package delivery

import "time"

/* Result is the explicit outcome of one HTTP delivery attempt,
 * returned by the dispatch wrapper instead of driving control flow
 * through errors. Classification is strictly by HTTP status: any 2xx
 * is success, everything else (network errors included) is failure.
 */
type Result struct {
	Delivered bool
	Status    int // 0 when no HTTP response was received
	Body      string
	Duration  time.Duration
	Err       string
}

// Succeeded builds the result of a 2xx response
func Succeeded(status int, body string, duration time.Duration) Result {
	return Result{Delivered: true, Status: status, Body: body, Duration: duration}
}

// FailedHTTP builds the result of a non-2xx response
func FailedHTTP(status int, body string, duration time.Duration, errMsg string) Result {
	return Result{Status: status, Body: body, Duration: duration, Err: errMsg}
}

// FailedTransport builds the result of an attempt that produced no
// HTTP response (timeout, DNS failure, connection refused)
func FailedTransport(duration time.Duration, errMsg string) Result {
	return Result{Duration: duration, Err: errMsg}
}

/* ApplyResult folds an attempt outcome into an entry. It is a pure
 * function over (entry, result): the retry decision lives here and
 * nowhere else, so repositories and the executor share one state
 * machine. Failed attempts reschedule per the backoff table until the
 * attempt ceiling, after which the entry is terminally failed and
 * surfaced for manual intervention.
 */
func ApplyResult(e Entry, res Result, now time.Time) Entry {
	e.Attempts++
	attemptedAt := now
	e.LastAttemptAt = &attemptedAt
	e.UpdatedAt = now
	e.ClaimedUntil = nil
	e.ResponseStatus = res.Status
	e.ResponseBody = truncate(res.Body, ResponseBodyLimit)
	e.ResponseTimeMS = res.Duration.Milliseconds()

	if res.Delivered {
		e.Status = Success
		e.LastError = ""
		completedAt := now
		e.CompletedAt = &completedAt
		e.NextRetryAt = nil
		return e
	}

	e.Status = Failed
	e.LastError = res.Err
	if e.Attempts >= e.MaxAttempts {
		// Retries exhausted: terminal, never picked up again
		e.NextRetryAt = nil
		return e
	}

	retryAt := now.Add(RetryDelay(e.Attempts))
	e.NextRetryAt = &retryAt
	return e
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
