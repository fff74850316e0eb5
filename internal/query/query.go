// Package query is the read side over imported accounts.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/network"
	"github.com/socialpulse/socialpulse/internal/store"
)

// AccountSummary is the identity projection returned by list endpoints.
type AccountSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username,omitempty"`
	Link       string `json:"link,omitempty"`
	ChannelURL string `json:"channelUrl,omitempty"`
	Category   string `json:"category,omitempty"`
	Profile    string `json:"profile,omitempty"`
}

// Links are the API locations derived from one account.
type Links struct {
	Self   string            `json:"self"`
	Latest string            `json:"latest"`
	Charts map[string]string `json:"charts"`
}

// AccountDetail is a full account document with its computed links.
type AccountDetail struct {
	models.Account
	Profile string `json:"profile,omitempty"`
	Links   Links  `json:"links"`
}

// Service answers account queries for every network.
type Service struct {
	accounts store.AccountRepository
	logger   *slog.Logger
}

// NewService creates a query service.
func NewService(accounts store.AccountRepository, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, logger: logger}
}

// ListAccounts returns the accounts of a network projected to identity fields.
func (s *Service) ListAccounts(ctx context.Context, networkName string) ([]AccountSummary, error) {
	desc, err := network.Lookup(networkName)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accounts.List(ctx, desc.Network)
	if err != nil {
		return nil, fmt.Errorf("list %s accounts: %w", desc.Network, err)
	}

	out := make([]AccountSummary, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		out = append(out, AccountSummary{
			ID:         a.ID,
			Name:       a.Name,
			Username:   a.Username,
			Link:       a.Link,
			ChannelURL: a.ChannelURL,
			Category:   a.Category,
			Profile:    desc.ProfileURL(a),
		})
	}
	return out, nil
}

// GetAccount returns one account with its history and links.
func (s *Service) GetAccount(ctx context.Context, networkName, id string) (*AccountDetail, error) {
	desc, account, err := s.load(ctx, networkName, id)
	if err != nil {
		return nil, err
	}

	return &AccountDetail{
		Account: *account,
		Profile: desc.ProfileURL(account),
		Links:   BuildLinks(desc, account.ID),
	}, nil
}

// Latest returns the most recent known value of every tracked metric.
func (s *Service) Latest(ctx context.Context, networkName, id string) (map[string]int64, error) {
	desc, account, err := s.load(ctx, networkName, id)
	if err != nil {
		return nil, err
	}
	return LatestSample(account.History, desc), nil
}

// Accounts loads several accounts of one network in the order given.
func (s *Service) Accounts(ctx context.Context, networkName string, ids []string) (network.Descriptor, []*models.Account, error) {
	desc, err := network.Lookup(networkName)
	if err != nil {
		return network.Descriptor{}, nil, err
	}

	out := make([]*models.Account, 0, len(ids))
	for _, id := range ids {
		account, err := s.accounts.Get(ctx, desc.Network, id)
		if err != nil {
			return network.Descriptor{}, nil, fmt.Errorf("account %s: %w", id, err)
		}
		out = append(out, account)
	}
	return desc, out, nil
}

// Account loads one account together with its network descriptor.
func (s *Service) Account(ctx context.Context, networkName, id string) (network.Descriptor, *models.Account, error) {
	return s.load(ctx, networkName, id)
}

func (s *Service) load(ctx context.Context, networkName, id string) (network.Descriptor, *models.Account, error) {
	desc, err := network.Lookup(networkName)
	if err != nil {
		return network.Descriptor{}, nil, err
	}

	account, err := s.accounts.Get(ctx, desc.Network, id)
	if err != nil {
		return network.Descriptor{}, nil, fmt.Errorf("account %s: %w", id, err)
	}
	return desc, account, nil
}

// BuildLinks returns the API locations of an account: itself, its latest
// values and one chart per tracked metric.
func BuildLinks(desc network.Descriptor, id string) Links {
	base := "/api/" + string(desc.Network) + "/accounts/" + url.PathEscape(id)
	links := Links{
		Self:   base,
		Latest: base + "/latest",
		Charts: make(map[string]string, len(desc.Metrics)),
	}
	for _, metric := range desc.Metrics {
		links.Charts[metric] = base + "/charts/" + metric
	}
	return links
}

// LatestSample scans history from the newest sample backward and keeps the
// first present value of each tracked metric. Values may come from different
// samples. The scan stops once every tracked metric has a value.
func LatestSample(history []models.Sample, desc network.Descriptor) map[string]int64 {
	latest := make(map[string]int64, len(desc.Metrics))

	for i := len(history) - 1; i >= 0 && len(latest) < len(desc.Metrics); i-- {
		for _, metric := range desc.Metrics {
			if _, done := latest[metric]; done {
				continue
			}
			if v, ok := history[i].Value(metric); ok {
				latest[metric] = v
			}
		}
	}
	return latest
}
