package source

import (
	"time"
)

// Config is one venue's source configuration, loaded from
// <sources-dir>/<name>.yml.
type Config struct {
	Name        string          // Derived from filename (without .yml extension)
	ChannelID   string          `yaml:"channel_id"`
	Senders     []string        `yaml:"senders"`      // Optional sender allow-list
	Timezone    string          `yaml:"timezone"`     // Venue timezone, default Europe/Rome
	ArchiveFeed string          `yaml:"archive_feed"` // Optional newsletter archive feed URL
	Selectors   ConfigSelectors `yaml:"selectors"`
	Settings    ConfigSettings  `yaml:"settings"`

	location *time.Location
}

type ConfigSelectors struct {
	Title     string `yaml:"title"`     // Film title selector, default h1
	Container string `yaml:"container"` // Enclosing block selector, default tbody
}

type ConfigSettings struct {
	Enabled      bool `yaml:"enabled"`
	ScanInterval int  `yaml:"scan_interval"` // seconds between archive scans
	Timeout      int  `yaml:"timeout"`       // seconds, per HTTP fetch
}

// Location returns the venue timezone resolved at load time.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// AllowsSender reports whether the configured allow-list accepts a
// sender address. An empty list accepts everyone. Mailgun's "from"
// field carries display names, so matching is by substring.
func (c *Config) AllowsSender(from string) bool {
	if len(c.Senders) == 0 {
		return true
	}
	for _, sender := range c.Senders {
		if sender != "" && containsFold(from, sender) {
			return true
		}
	}
	return false
}
