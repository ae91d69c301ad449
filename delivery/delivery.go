package delivery

import "time"

// ResponseBodyLimit caps how much of a partner response is retained on
// the entry; larger bodies are truncated before being stored.
const ResponseBodyLimit = 1000

/* Entry is one attempt lineage for delivering one event to one
 * partner. The callback URL is snapshotted at enqueue time so a later
 * partner URL change cannot silently redirect in-flight deliveries;
 * the secret stays a reference (partner id) and is resolved fresh at
 * each send. Entries are mutated only by the executor and never
 * deleted; terminal rows remain for audit and UI history.
 */
type Entry struct {
	ID             string
	EventID        string
	PartnerID      string
	URL            string
	Payload        []byte
	Status         Status
	Attempts       int
	MaxAttempts    int
	LastAttemptAt  *time.Time
	NextRetryAt    *time.Time
	ClaimedUntil   *time.Time
	ResponseStatus int
	ResponseBody   string
	ResponseTimeMS int64
	LastError      string
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Terminal reports whether the entry has left the retry lifecycle:
// delivered, or failed with no retry scheduled.
func (e Entry) Terminal() bool {
	return e.Status == Success || (e.Status == Failed && e.NextRetryAt == nil)
}

// Due reports whether the entry is eligible for claiming at the given time
func (e Entry) Due(now time.Time) bool {
	if e.Terminal() {
		return false
	}
	return e.NextRetryAt != nil && !e.NextRetryAt.After(now)
}
