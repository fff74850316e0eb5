package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/socialpulse/socialpulse/internal/models"
)

// ErrNotAuthorized means no user has completed the Google consent flow yet.
var ErrNotAuthorized = errors.New("google sheets access has not been authorized")

// ErrInvalidState is returned for an unknown or expired OAuth state value.
var ErrInvalidState = errors.New("invalid or expired oauth state")

const stateTTL = 10 * time.Minute

// TokenStore persists the user token obtained from the consent flow.
type TokenStore interface {
	// Load returns ErrNotAuthorized when no token has been saved.
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
}

// OAuth runs the Google web-server consent flow and hands out clients
// authorized with the resulting token.
type OAuth struct {
	config *oauth2.Config
	tokens TokenStore

	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

// NewOAuth builds the flow from an OAuth client JSON file (web or installed).
// A non-empty redirectURL overrides the first redirect URI in the file.
func NewOAuth(clientJSON []byte, redirectURL string, tokens TokenStore) (*OAuth, error) {
	cfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return &OAuth{
		config: cfg,
		tokens: tokens,
		states: make(map[string]time.Time),
		now:    time.Now,
	}, nil
}

// AuthURL returns the consent page URL with a fresh single-use state.
func (o *OAuth) AuthURL() string {
	state := uuid.New().String()

	o.mu.Lock()
	now := o.now()
	for s, exp := range o.states {
		if now.After(exp) {
			delete(o.states, s)
		}
	}
	o.states[state] = now.Add(stateTTL)
	o.mu.Unlock()

	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange validates state, trades the code for a token and stores it.
func (o *OAuth) Exchange(ctx context.Context, state, code string) error {
	if !o.consumeState(state) {
		return ErrInvalidState
	}

	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return &models.UpstreamFetchError{Source: "google-oauth", Err: err}
	}
	if err := o.tokens.Save(ctx, token); err != nil {
		return fmt.Errorf("save oauth token: %w", err)
	}
	return nil
}

func (o *OAuth) consumeState(state string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	exp, ok := o.states[state]
	if !ok {
		return false
	}
	delete(o.states, state)
	return !o.now().After(exp)
}

// Authorized reports whether a token is available.
func (o *OAuth) Authorized(ctx context.Context) bool {
	_, err := o.tokens.Load(ctx)
	return err == nil
}

// Client returns an HTTP client using the stored token. Refreshed tokens
// are written back to the token store.
func (o *OAuth) Client(ctx context.Context) (*http.Client, error) {
	token, err := o.tokens.Load(ctx)
	if err != nil {
		return nil, err
	}

	src := &persistingTokenSource{
		base:   o.config.TokenSource(ctx, token),
		tokens: o.tokens,
		ctx:    ctx,
		last:   token.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, src)), nil
}

type persistingTokenSource struct {
	base   oauth2.TokenSource
	tokens TokenStore
	ctx    context.Context

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := s.tokens.Save(s.ctx, token); err != nil {
			return nil, fmt.Errorf("save refreshed token: %w", err)
		}
	}
	return token, nil
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

// Load returns the stored token.
func (s *MemoryTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, ErrNotAuthorized
	}
	t := *s.token
	return &t, nil
}

// Save replaces the stored token.
func (s *MemoryTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	t := *token
	s.mu.Lock()
	s.token = &t
	s.mu.Unlock()
	return nil
}

// FileTokenStore keeps the token as JSON in a file readable only by the owner.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenStore returns a store writing to path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads the token file.
func (s *FileTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return token, nil
}

// Save writes the token file atomically.
func (s *FileTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
