// Package sheets provides the spreadsheet sources the importer reads tabs from.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/socialpulse/socialpulse/internal/models"
)

// ClientProvider returns an HTTP client authorized for the Sheets API.
type ClientProvider interface {
	Client(ctx context.Context) (*http.Client, error)
}

// GoogleSource reads ranges from Google Sheets as displayed text.
type GoogleSource struct {
	clients ClientProvider
	opts    []option.ClientOption
}

// NewGoogleSource creates a source. Extra options are applied after the
// authorized HTTP client, e.g. option.WithEndpoint.
func NewGoogleSource(clients ClientProvider, opts ...option.ClientOption) *GoogleSource {
	return &GoogleSource{clients: clients, opts: opts}
}

// Name identifies the source.
func (s *GoogleSource) Name() string {
	return "google-sheets"
}

// Fetch reads one range. Cells come back formatted the way the sheet shows
// them so thousands separators and dates reach the normalizer untouched.
func (s *GoogleSource) Fetch(ctx context.Context, spreadsheetID, rangeLabel string) ([][]string, error) {
	client, err := s.clients.Client(ctx)
	if err != nil {
		return nil, s.fail(rangeLabel, err)
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.opts...)
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, s.fail(rangeLabel, fmt.Errorf("sheets service: %w", err))
	}

	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, rangeLabel).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, s.fail(rangeLabel, err)
	}
	if len(resp.Values) == 0 {
		return nil, s.fail(rangeLabel, models.ErrEmptyRange)
	}

	return toStrings(resp.Values), nil
}

func (s *GoogleSource) fail(rangeLabel string, err error) error {
	return &models.UpstreamFetchError{Source: s.Name(), Range: rangeLabel, Err: err}
}

func toStrings(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			switch c := v.(type) {
			case nil:
			case string:
				cells[j] = c
			case float64:
				cells[j] = strconv.FormatFloat(c, 'f', -1, 64)
			default:
				cells[j] = fmt.Sprint(c)
			}
		}
		rows[i] = cells
	}
	return rows
}

// ServiceAccount authorizes Sheets requests with a service account key.
type ServiceAccount struct {
	config *jwt.Config
}

// NewServiceAccount parses a service account JSON key.
func NewServiceAccount(credentialsJSON []byte) (*ServiceAccount, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("service account credentials: %w", err)
	}
	return &ServiceAccount{config: cfg}, nil
}

// Client returns a client that mints tokens for the service account.
func (s *ServiceAccount) Client(ctx context.Context) (*http.Client, error) {
	return s.config.Client(ctx), nil
}
