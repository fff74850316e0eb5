// Package network describes the per-network sheet layout and metric set that
// drive the shared import and query pipeline.
package network

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/normalize"
)

// Identity says which account field the profile cell populates.
type Identity int

const (
	// IdentityLink stores the profile cell verbatim in Account.Link.
	IdentityLink Identity = iota
	// IdentityUsername extracts Account.Username from the profile URL.
	IdentityUsername
	// IdentityChannel stores the profile cell verbatim in Account.ChannelURL.
	IdentityChannel
)

// Columns are zero-based column positions inside a tab.
type Columns struct {
	Name    int
	Profile int
	Date    int
	Metrics map[string]int
}

// Descriptor is everything the generic pipeline needs to know about a network.
type Descriptor struct {
	Network      models.Network
	Title        string
	Metrics      []string
	Columns      Columns
	Placeholders normalize.PlaceholderSet
	Identity     Identity

	usernamePattern *regexp.Regexp
	profileBase     string
}

var registry = map[models.Network]Descriptor{
	models.NetworkFacebook: {
		Network: models.NetworkFacebook,
		Title:   "Facebook",
		Metrics: []string{"likes", "followers"},
		Columns: Columns{
			Name:    0,
			Profile: 1,
			Metrics: map[string]int{"likes": 2, "followers": 3},
			Date:    4,
		},
		Placeholders: normalize.NewPlaceholderSet(normalize.BasePlaceholders),
		Identity:     IdentityLink,
	},
	models.NetworkInstagram: {
		Network: models.NetworkInstagram,
		Title:   "Instagram",
		Metrics: []string{"followers", "following", "num_of_posts"},
		Columns: Columns{
			Name:    0,
			Profile: 1,
			Metrics: map[string]int{"followers": 2, "following": 3, "num_of_posts": 4},
			Date:    5,
		},
		Placeholders:    normalize.NewPlaceholderSet(normalize.BasePlaceholders, normalize.UppercasePlaceholders),
		Identity:        IdentityUsername,
		usernamePattern: regexp.MustCompile(`(?i)instagram\.com/([A-Za-z0-9_.]+)`),
		profileBase:     "https://www.instagram.com/",
	},
	models.NetworkTwitter: {
		Network: models.NetworkTwitter,
		Title:   "Twitter",
		Metrics: []string{"tweets", "following", "followers", "likes", "moments"},
		Columns: Columns{
			Name:    0,
			Profile: 1,
			Metrics: map[string]int{"tweets": 2, "following": 3, "followers": 4, "likes": 5, "moments": 6},
			Date:    7,
		},
		Placeholders:    normalize.NewPlaceholderSet(normalize.BasePlaceholders, normalize.UppercasePlaceholders),
		Identity:        IdentityUsername,
		usernamePattern: regexp.MustCompile(`(?i)(?:twitter|x)\.com/@?([A-Za-z0-9_]+)`),
		profileBase:     "https://twitter.com/",
	},
	models.NetworkYouTube: {
		Network: models.NetworkYouTube,
		Title:   "YouTube",
		Metrics: []string{"subscribers", "videos", "views"},
		Columns: Columns{
			Name:    0,
			Profile: 1,
			Metrics: map[string]int{"subscribers": 2, "videos": 3, "views": 4},
			Date:    5,
		},
		Placeholders: normalize.NewPlaceholderSet(normalize.BasePlaceholders),
		Identity:     IdentityChannel,
	},
}

// Lookup returns the descriptor of a network name.
func Lookup(name string) (Descriptor, error) {
	d, ok := registry[models.Network(name)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", models.ErrUnknownNetwork, name)
	}
	return d, nil
}

// All returns every descriptor ordered by network name.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Network < out[j].Network })
	return out
}

// HasMetric reports whether metric is tracked by the network.
func (d Descriptor) HasMetric(metric string) bool {
	_, ok := d.Columns.Metrics[metric]
	return ok
}

// RequireMetric returns a MetricNotFoundError for untracked keys.
func (d Descriptor) RequireMetric(metric string) error {
	if !d.HasMetric(metric) {
		return &models.MetricNotFoundError{Network: d.Network, Metric: metric}
	}
	return nil
}

// WithColumns returns a copy with column positions overridden by field name:
// "name", "profile", "date" or a metric key.
func (d Descriptor) WithColumns(overrides map[string]int) (Descriptor, error) {
	if len(overrides) == 0 {
		return d, nil
	}

	cols := Columns{
		Name:    d.Columns.Name,
		Profile: d.Columns.Profile,
		Date:    d.Columns.Date,
		Metrics: make(map[string]int, len(d.Columns.Metrics)),
	}
	for k, v := range d.Columns.Metrics {
		cols.Metrics[k] = v
	}

	for field, idx := range overrides {
		if idx < 0 {
			return Descriptor{}, fmt.Errorf("column %s: negative index %d", field, idx)
		}
		switch field {
		case "name":
			cols.Name = idx
		case "profile":
			cols.Profile = idx
		case "date":
			cols.Date = idx
		default:
			if _, ok := cols.Metrics[field]; !ok {
				return Descriptor{}, fmt.Errorf("column %s: not a field of %s", field, d.Network)
			}
			cols.Metrics[field] = idx
		}
	}

	d.Columns = cols
	return d, nil
}

// ApplyProfile fills the identity field of account from a usable profile cell.
func (d Descriptor) ApplyProfile(account *models.Account, profile string) {
	switch d.Identity {
	case IdentityLink:
		account.Link = profile
	case IdentityChannel:
		account.ChannelURL = profile
	case IdentityUsername:
		if m := d.usernamePattern.FindStringSubmatch(profile); len(m) == 2 {
			account.Username = m[1]
		}
	}
}

// ProfileURL is the external hyperlink of an account, empty when the
// account has no identity field.
func (d Descriptor) ProfileURL(account *models.Account) string {
	switch d.Identity {
	case IdentityLink:
		return account.Link
	case IdentityChannel:
		return account.ChannelURL
	case IdentityUsername:
		if account.Username == "" {
			return ""
		}
		return d.profileBase + account.Username
	}
	return ""
}
