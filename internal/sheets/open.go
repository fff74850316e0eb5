package sheets

import (
	"fmt"
	"os"

	"github.com/socialpulse/socialpulse/internal/config"
	"github.com/socialpulse/socialpulse/internal/ingestion"
)

// Sources is the configured spreadsheet source. OAuth is set only when the
// Google source runs the user consent flow.
type Sources struct {
	Source ingestion.Source
	OAuth  *OAuth
}

// Open builds the source selected by cfg. The Google source prefers a
// service account key and falls back to the OAuth consent flow.
func Open(cfg config.SheetsConfig) (*Sources, error) {
	switch cfg.Source {
	case "xlsx":
		return &Sources{Source: NewXLSXSource(cfg.XLSXPath)}, nil

	case "google":
		if cfg.ServiceAccountFile != "" {
			b, err := os.ReadFile(cfg.ServiceAccountFile)
			if err != nil {
				return nil, fmt.Errorf("read service account file: %w", err)
			}
			sa, err := NewServiceAccount(b)
			if err != nil {
				return nil, err
			}
			return &Sources{Source: NewGoogleSource(sa)}, nil
		}

		if cfg.OAuthClientFile == "" {
			return nil, fmt.Errorf("google source needs GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_OAUTH_CLIENT_FILE")
		}
		b, err := os.ReadFile(cfg.OAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}

		var tokens TokenStore = &MemoryTokenStore{}
		if cfg.OAuthTokenFile != "" {
			tokens = NewFileTokenStore(cfg.OAuthTokenFile)
		}
		flow, err := NewOAuth(b, cfg.OAuthRedirectURL, tokens)
		if err != nil {
			return nil, err
		}
		return &Sources{Source: NewGoogleSource(flow), OAuth: flow}, nil

	default:
		return nil, fmt.Errorf("unknown sheets source %q", cfg.Source)
	}
}
