package partner

import (
	"fmt"
	"net/url"
)

/* Partner represents a registered webhook recipient
 * The webhook subsystem only reads the callback URL and signing
 * secret; ownership of the record lives with partner management
 */
type Partner struct {
	ID          string
	Name        string
	CallbackURL string
	Secret      string
	Active      bool
}

// Validate checks if the partner configuration is usable for delivery
func (p *Partner) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("partner id cannot be empty")
	}
	if p.CallbackURL == "" {
		return fmt.Errorf("callback_url cannot be empty for partner %s", p.ID)
	}
	u, err := url.Parse(p.CallbackURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("callback_url must be an absolute URL for partner %s", p.ID)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("callback_url must use http or https for partner %s (got %s)", p.ID, u.Scheme)
	}
	/* An empty secret is a configuration error, not a delivery error:
	 * it would make every signature attempt fail, so it is rejected
	 * here before anything can be enqueued
	 */
	if p.Secret == "" {
		return fmt.Errorf("secret cannot be empty for partner %s", p.ID)
	}
	return nil
}
