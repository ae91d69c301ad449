package partner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Loader manages partner configuration from partners.yaml
 * Provides in-memory lookup for fast access on the delivery path
 */

// Config represents the structure of partners.yaml
type Config struct {
	Partners []PartnerConfig `yaml:"partners"`
}

// PartnerConfig represents a single partner in the YAML file
type PartnerConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	CallbackURL string `yaml:"callback_url"`
	Secret      string `yaml:"secret"`
	Active      *bool  `yaml:"active"` // Optional: defaults to true
}

// Loader holds the loaded partners
type Loader struct {
	partners map[string]*Partner
}

// NewLoader creates a new partner loader
func NewLoader() *Loader {
	return &Loader{
		partners: make(map[string]*Partner),
	}
}

// Load reads and parses the partners.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading partners file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing partners YAML: %w", err)
	}

	for _, pc := range config.Partners {
		active := true
		if pc.Active != nil {
			active = *pc.Active
		}

		p := &Partner{
			ID:          pc.ID,
			Name:        pc.Name,
			CallbackURL: pc.CallbackURL,
			Secret:      pc.Secret,
			Active:      active,
		}

		if err := p.Validate(); err != nil {
			return fmt.Errorf("validating partner: %w", err)
		}

		l.partners[p.ID] = p
	}

	return nil
}

// Get retrieves a partner by its ID
func (l *Loader) Get(partnerID string) (*Partner, error) {
	p, exists := l.partners[partnerID]
	if !exists {
		return nil, fmt.Errorf("partner not found: %s", partnerID)
	}
	return p, nil
}

// List returns all loaded partners
func (l *Loader) List() []*Partner {
	partners := make([]*Partner, 0, len(l.partners))
	for _, p := range l.partners {
		partners = append(partners, p)
	}
	return partners
}

// ListActive returns only partners eligible for delivery fan-out
func (l *Loader) ListActive() []*Partner {
	partners := make([]*Partner, 0, len(l.partners))
	for _, p := range l.partners {
		if p.Active {
			partners = append(partners, p)
		}
	}
	return partners
}

// Exists checks if a partner ID exists
func (l *Loader) Exists(partnerID string) bool {
	_, exists := l.partners[partnerID]
	return exists
}
