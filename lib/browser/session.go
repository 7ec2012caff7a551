package browser

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is an exclusively-owned page context with a stealth
// fingerprint. It is created for a single extraction attempt and must
// be released at the end of it.
type Session struct {
	ID          string
	Profile     Profile
	Fingerprint Fingerprint

	handle   Handle
	pacing   *rand.Rand
	delayMin time.Duration
	delayMax time.Duration
}

// Navigate paces like a person would before loading the target.
func (s *Session) Navigate(ctx context.Context, url string, headers map[string]string) (NavResult, error) {
	if err := s.pace(ctx); err != nil {
		return NavResult{}, err
	}
	return s.handle.Navigate(ctx, url, headers)
}

func (s *Session) Locate(loc Locator) (Element, bool, error) {
	return s.handle.Locate(loc)
}

func (s *Session) pace(ctx context.Context) error {
	if s.delayMax <= s.delayMin {
		return nil
	}
	delay := s.delayMin + time.Duration(s.pacing.Int63n(int64(s.delayMax-s.delayMin)))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type ProviderOptions struct {
	// Seed drives fingerprint rotation and navigation pacing so runs
	// are reproducible. Zero seeds from the current time.
	Seed int64
	// DisablePacing turns off navigation delays (tests).
	DisablePacing bool
}

// Provider hands out isolated sessions on top of a Runtime. Rotation
// state is explicit here rather than ambient global state.
type Provider struct {
	runtime Runtime
	tiers   map[Profile]tier
	pacing  bool

	mu  sync.Mutex
	rng *rand.Rand
}

func NewProvider(runtime Runtime, opts ProviderOptions) *Provider {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Provider{
		runtime: runtime,
		tiers:   defaultTiers(),
		pacing:  !opts.DisablePacing,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Acquire launches a fresh isolated context with a fingerprint drawn
// from the profile's pool. Launch failures are reported as
// ErrResourceExhausted so callers retry them.
func (p *Provider) Acquire(ctx context.Context, profile Profile) (*Session, error) {
	t, ok := p.tiers[profile]
	if !ok {
		return nil, fmt.Errorf("unknown stealth profile %q", profile)
	}

	p.mu.Lock()
	fp := t.fingerprints[p.rng.Intn(len(t.fingerprints))]
	pacingSeed := p.rng.Int63()
	p.mu.Unlock()

	handle, err := p.runtime.Launch(ctx, fp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrResourceExhausted, err)
	}

	s := &Session{
		ID:          uuid.NewString(),
		Profile:     profile,
		Fingerprint: fp,
		handle:      handle,
		pacing:      rand.New(rand.NewSource(pacingSeed)),
	}
	if p.pacing {
		s.delayMin = t.navDelayMin
		s.delayMax = t.navDelayMax
	}

	slog.Debug(
		"session acquired",
		"session", s.ID,
		"profile", profile,
		"user_agent", fp.UserAgent,
	)
	return s, nil
}

// Release tears the session's context down. Safe to call exactly once
// on every exit path of an attempt.
func (p *Provider) Release(s *Session) {
	if s == nil {
		return
	}
	err := s.handle.Close()
	if err != nil {
		slog.Warn("failed to close session", "session", s.ID, "err", err)
	}
	slog.Debug("session released", "session", s.ID)
}
