package ingestion

import (
	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/network"
	"github.com/socialpulse/socialpulse/internal/normalize"
)

// RunState is the mutable state of one import run: the carry-forward date
// and the accounts built so far keyed by display name. It is not safe for
// concurrent use; rows must be observed in tab order.
type RunState struct {
	desc    network.Descriptor
	dates   normalize.DateCarrier
	actors  map[string]*models.Account
	order   []*models.Account
	rows    int
	samples int
}

// NewRunState starts an empty run for the given network.
func NewRunState(desc network.Descriptor) *RunState {
	return &RunState{
		desc:   desc,
		actors: make(map[string]*models.Account),
	}
}

// Observe folds one data row into the run. The account is created on the
// first sighting of its name. A sample is appended only when the row has a
// usable profile cell; Observe reports whether it appended one.
func (s *RunState) Observe(row ClassifiedRow) bool {
	s.rows++
	cols := s.desc.Columns

	name := normalize.CollapseNewlines(cell(row.Cells, cols.Name))
	account, seen := s.actors[name]
	if !seen {
		account = &models.Account{
			Network:  s.desc.Network,
			Name:     name,
			Category: row.Category,
		}
		s.actors[name] = account
		s.order = append(s.order, account)
	}

	profile := cell(row.Cells, cols.Profile)
	if !normalize.IsUsable(profile, s.desc.Placeholders) {
		return false
	}
	if s.desc.ProfileURL(account) == "" {
		s.desc.ApplyProfile(account, profile)
	}

	sample := models.Sample{Metrics: make(map[string]int64, len(cols.Metrics))}
	if d, ok := s.dates.Resolve(cell(row.Cells, cols.Date)); ok {
		sample.Date = &d
	}
	for metric, col := range cols.Metrics {
		raw := cell(row.Cells, col)
		if !normalize.IsUsable(raw, s.desc.Placeholders) {
			continue
		}
		if n, ok := normalize.ParseCount(raw); ok {
			sample.Metrics[metric] = n
		}
	}

	account.History = append(account.History, sample)
	s.samples++
	return true
}

// Accounts returns the accounts in order of first sighting.
func (s *RunState) Accounts() []*models.Account {
	return s.order
}

// Rows is the number of data rows observed.
func (s *RunState) Rows() int {
	return s.rows
}

// Samples is the number of samples appended.
func (s *RunState) Samples() int {
	return s.samples
}
