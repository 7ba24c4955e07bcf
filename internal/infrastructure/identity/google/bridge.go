package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"google.golang.org/api/idtoken"

	"github.com/fixtureboard/fixtureboard/internal/domain/session"
	"github.com/fixtureboard/fixtureboard/internal/platform/logging"
	"github.com/fixtureboard/fixtureboard/internal/platform/store"
	"github.com/fixtureboard/fixtureboard/internal/platform/stream"
	"github.com/fixtureboard/fixtureboard/internal/usecase"
)

const (
	sessionKey = "currentUser"
	tokenKey   = "jwtToken"

	renderMaxAttempts = 5
	renderFirstDelay  = 100 * time.Millisecond
	renderRetryDelay  = time.Second
)

// Verifier checks a signed credential against the expected audience. A nil
// Verifier in the config skips signature and expiry checks and trusts the
// decoded payload, which is only acceptable when the credential arrives over
// a channel the provider already authenticated.
type Verifier func(ctx context.Context, credential, audience string) error

// VerifyWithGoogle validates the credential signature, audience and expiry
// against Google's published keys.
func VerifyWithGoogle(ctx context.Context, credential, audience string) error {
	_, err := idtoken.Validate(ctx, credential, audience)
	return err
}

type claims struct {
	Subject    string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

type BridgeConfig struct {
	ClientID  string
	Allowlist session.Allowlist
	Store     *store.Store
	Verifier  Verifier
	Logger    *logging.Logger
}

// Bridge ties the identity provider to the persisted session state. It owns
// the session stream: a nil session means logged out, and every transition
// is published so subscribers never have to poll.
type Bridge struct {
	provider  Provider
	store     *store.Store
	allowlist session.Allowlist
	clientID  string
	verify    Verifier
	logger    *logging.Logger

	mu          sync.Mutex
	initialized bool

	sessions *stream.Stream[*session.Session]
	denied   *stream.Stream[string]
}

func NewBridge(provider Provider, cfg BridgeConfig) (*Bridge, error) {
	if provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("client id is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Bridge{
		provider:  provider,
		store:     cfg.Store,
		allowlist: cfg.Allowlist,
		clientID:  cfg.ClientID,
		verify:    cfg.Verifier,
		logger:    logger,
		sessions:  stream.New[*session.Session](nil),
		denied:    stream.New(""),
	}, nil
}

// Initialize restores any persisted session and registers the credential
// callback with the provider. Calling it again is a no-op.
func (b *Bridge) Initialize(ctx context.Context) error {
	b.mu.Lock()
	if b.initialized {
		b.mu.Unlock()
		return nil
	}
	b.initialized = true
	b.mu.Unlock()

	b.restore(ctx)

	err := b.provider.Initialize(b.clientID, func(credential string) {
		if err := b.HandleCredential(context.Background(), credential); err != nil {
			b.logger.Warn("sign-in rejected", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("initialize identity provider: %w", err)
	}
	return nil
}

// Sessions is the reactive session stream. It replays the current session,
// or nil when logged out, to late subscribers.
func (b *Bridge) Sessions() *stream.Stream[*session.Session] {
	return b.sessions
}

// Denied emits the email address of each sign-in attempt rejected by the
// allow-list. Consumers surface it however they like; nothing here blocks.
func (b *Bridge) Denied() *stream.Stream[string] {
	return b.denied
}

func (b *Bridge) CurrentSession() *session.Session {
	return b.sessions.Latest()
}

// RawToken returns the persisted credential for the active session, or the
// empty string when logged out.
func (b *Bridge) RawToken() string {
	raw, ok, err := b.store.Get(tokenKey)
	if err != nil || !ok {
		return ""
	}
	return raw
}

// HandleCredential decodes and gates an incoming signed credential. An email
// outside the allow-list publishes a denied signal, leaves no state behind
// and returns ErrUnauthorized.
func (b *Bridge) HandleCredential(ctx context.Context, credential string) error {
	c, err := decodeCredential(credential)
	if err != nil {
		return err
	}

	if b.verify != nil {
		if err := b.verify(ctx, credential, b.clientID); err != nil {
			return fmt.Errorf("%w: verify credential: %v", usecase.ErrUnauthorized, err)
		}
	}

	if !b.allowlist.Contains(c.Email) {
		// A denied credential ends any session currently held, it does not
		// only block the new one.
		b.clear()
		b.provider.DisableAutoSelect()
		b.sessions.Publish(nil)
		b.denied.Publish(c.Email)
		b.logger.WarnContext(ctx, "sign-in denied", "email", c.Email)
		return fmt.Errorf("%w: %s is not an authorized admin", usecase.ErrUnauthorized, c.Email)
	}

	s := &session.Session{
		Subject:    c.Subject,
		Email:      c.Email,
		Name:       c.Name,
		Picture:    c.Picture,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
		RawToken:   credential,
	}

	if err := b.store.SetJSON(sessionKey, s); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if err := b.store.Set(tokenKey, credential); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}

	b.sessions.Publish(s)
	b.logger.InfoContext(ctx, "signed in", "email", c.Email)
	return nil
}

// RequestSignIn asks the provider to show its prompt and reports whether it
// was displayed. A dismissed prompt resolves false without an error; the
// session stream carries the actual outcome if the user completes sign-in.
func (b *Bridge) RequestSignIn(ctx context.Context) (bool, error) {
	done := make(chan bool, 1)
	if err := b.provider.Prompt(func(displayed bool) { done <- displayed }); err != nil {
		return false, fmt.Errorf("request sign-in: %w", err)
	}

	select {
	case displayed := <-done:
		return displayed, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// RenderSignInButton mounts the provider's button, retrying while the mount
// point is not there yet. The first retry comes quickly, later ones are
// spaced a second apart, and the attempt count is capped.
func (b *Bridge) RenderSignInButton(ctx context.Context, mount string, opts ButtonOptions) error {
	var err error
	for attempt := 0; attempt < renderMaxAttempts; attempt++ {
		if attempt > 0 {
			delay := renderRetryDelay
			if attempt == 1 {
				delay = renderFirstDelay
			}
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		if err = b.provider.RenderButton(mount, opts); err == nil {
			return nil
		}
		b.logger.DebugContext(ctx, "sign-in button mount not ready",
			"mount", mount,
			"attempt", attempt+1,
			"error", err,
		)
	}
	return fmt.Errorf("render sign-in button: %w", err)
}

// SignOut clears the persisted session, disables silent account restore and
// publishes the logged-out state. Signing out while logged out is a no-op.
func (b *Bridge) SignOut(ctx context.Context) {
	b.clear()
	b.provider.DisableAutoSelect()
	b.sessions.Publish(nil)
	b.logger.InfoContext(ctx, "signed out")
}

// restore loads the persisted session, if any. Unreadable or stale state is
// discarded and the bridge starts logged out rather than failing startup.
func (b *Bridge) restore(ctx context.Context) {
	var s session.Session
	ok, err := b.store.GetJSON(sessionKey, &s)
	if err != nil {
		b.logger.WarnContext(ctx, "discarding unreadable session state", "error", err)
		b.clear()
		return
	}
	if !ok || s.Subject == "" {
		return
	}

	if b.verify != nil {
		raw := b.RawToken()
		if raw == "" {
			b.clear()
			return
		}
		if err := b.verify(ctx, raw, b.clientID); err != nil {
			b.logger.InfoContext(ctx, "stored credential no longer valid", "error", err)
			b.clear()
			return
		}
	}

	b.sessions.Publish(&s)
	b.logger.InfoContext(ctx, "session restored", "email", s.Email)
}

func (b *Bridge) clear() {
	if err := b.store.Remove(sessionKey); err != nil {
		b.logger.Warn("clear session state", "error", err)
	}
	if err := b.store.Remove(tokenKey); err != nil {
		b.logger.Warn("clear credential state", "error", err)
	}
}

// decodeCredential extracts the claims from the payload segment of a signed
// credential without verifying the signature.
func decodeCredential(credential string) (claims, error) {
	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		return claims{}, fmt.Errorf("%w: credential is not a signed token", usecase.ErrDecodeFailure)
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return claims{}, fmt.Errorf("%w: decode credential payload: %v", usecase.ErrDecodeFailure, err)
	}

	var c claims
	if err := sonic.Unmarshal(payload, &c); err != nil {
		return claims{}, fmt.Errorf("%w: parse credential claims: %v", usecase.ErrDecodeFailure, err)
	}
	if c.Subject == "" || c.Email == "" {
		return claims{}, fmt.Errorf("%w: credential is missing subject or email", usecase.ErrDecodeFailure)
	}
	return c, nil
}
