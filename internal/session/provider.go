package session

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"articledesk/internal/domain"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// state is replaced wholesale on every write so readers never observe a
// token paired with another token's identity.
type state struct {
	token    string
	identity domain.Identity
}

// Provider is the process-wide identity cache. Init, SignIn and Logout are
// the only writers; Current and Token return snapshots.
type Provider struct {
	store TokenStore
	now   func() time.Time

	mu      sync.Mutex
	current atomic.Pointer[state]
}

func NewProvider(store TokenStore) *Provider {
	p := &Provider{store: store, now: time.Now}
	p.current.Store(&state{})
	return p
}

// Init decodes the stored credential, if any. A credential that does not
// decode is cleared and the provider starts logged out.
func (p *Provider) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	token, err := p.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		p.current.Store(&state{})
		return nil
	}
	id, err := Decode(token, p.now())
	if err != nil {
		log.Printf("[SESSION] action=init msg=stored token discarded: %v", err)
		p.current.Store(&state{})
		return p.store.Clear()
	}
	p.current.Store(&state{token: token, identity: id})
	return nil
}

// SignIn stores a freshly issued token and returns its identity.
func (p *Provider) SignIn(token string) (domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := Decode(token, p.now())
	if err != nil {
		return domain.Identity{}, domain.UnauthorizedError{Msg: "server returned an unusable token", Err: err}
	}
	if err := p.store.Save(token); err != nil {
		return domain.Identity{}, err
	}
	p.current.Store(&state{token: token, identity: id})
	return id, nil
}

// Logout forgets the identity and the stored token.
func (p *Provider) Logout() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current.Store(&state{})
	return p.store.Clear()
}

// Current returns the identity snapshot and whether a session exists.
// An identity whose token expired since the last write reads as logged out.
func (p *Provider) Current() (domain.Identity, bool) {
	s := p.current.Load()
	if s.token == "" {
		return domain.Identity{}, false
	}
	if _, err := Decode(s.token, p.now()); err != nil {
		return domain.Identity{}, false
	}
	return s.identity, true
}

// Token returns the bearer token to attach to requests, or "".
func (p *Provider) Token() string {
	return p.current.Load().token
}
