package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/domain"
	"bookshelfWs/internal/shared/auth"
	"bookshelfWs/internal/shared/session"
)

const (
	defaultMaxSessions        = 512
	defaultRefreshConcurrency = 8
)

// BrowseOptions tunes BrowseUseCase. Zero values pick defaults.
type BrowseOptions struct {
	MaxSessions        int
	RefreshConcurrency int
	Clock              func() time.Time
	Metrics            port.Metrics
}

// BrowseUseCase authenticates sessions, opens list screens for them and keeps the open
// screens fresh when the poller or the broker asks for a refresh.
type BrowseUseCase struct {
	validator    auth.TokenValidator
	fetcher      port.CollectionFetcher
	screens      *ScreenRegistry
	broadcaster  port.Broadcaster
	metrics      port.Metrics
	sessions     *sessionStore
	refreshLimit int
	clock        func() time.Time
}

func NewBrowseUseCase(
	validator auth.TokenValidator,
	fetcher port.CollectionFetcher,
	screens *ScreenRegistry,
	broadcaster port.Broadcaster,
	opts BrowseOptions,
) (*BrowseUseCase, error) {
	store, err := newSessionStore(opts.MaxSessions)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	if opts.RefreshConcurrency <= 0 {
		opts.RefreshConcurrency = defaultRefreshConcurrency
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	return &BrowseUseCase{
		validator:    validator,
		fetcher:      fetcher,
		screens:      screens,
		broadcaster:  broadcaster,
		metrics:      opts.Metrics,
		sessions:     store,
		refreshLimit: opts.RefreshConcurrency,
		clock:        opts.Clock,
	}, nil
}

// Screens exposes the registry the use case was built with.
func (uc *BrowseUseCase) Screens() *ScreenRegistry { return uc.screens }

// Authenticate validates token and returns its session, creating it on first use. A known
// session picks up the new token and keeps its open screens and cart count.
func (uc *BrowseUseCase) Authenticate(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	claims, err := uc.validator.Validate(token)
	if err != nil {
		slog.Warn("browse token validation failed", slog.Any("error", err))
		return nil, err
	}
	sess := uc.sessions.upsert(claims.SessionID,
		func() *Session { return newSession(session.FromClaims(token, claims)) },
		func(existing *Session) { existing.State.Renew(token, claims) },
	)
	uc.metrics.SetOpenSessions(uc.sessions.len())
	slog.Debug("browse session ready", slog.String("sessionId", sess.ID()), slog.String("subject", claims.Subject), slog.Any("roles", claims.Roles))
	return sess, nil
}

// Session looks up a stored session without validating a token.
func (uc *BrowseUseCase) Session(id string) (*Session, bool) {
	return uc.sessions.get(id)
}

// Forget drops a session and every screen it holds.
func (uc *BrowseUseCase) Forget(id string) {
	if uc.sessions.remove(id) {
		uc.metrics.SetOpenSessions(uc.sessions.len())
		slog.Info("browse session forgotten", slog.String("sessionId", id))
	}
}

// Open returns the session's screen, fetching its collection the first time. A failed first
// fetch leaves nothing behind so the next Open retries.
func (uc *BrowseUseCase) Open(ctx context.Context, sess *Session, name string) (Screen, error) {
	def, err := uc.screens.Resolve(name)
	if err != nil {
		return nil, err
	}
	if screen, ok := sess.Screen(def.Name); ok {
		return screen, nil
	}

	screen, err := uc.load(ctx, sess.State.Token(), def)
	if err != nil {
		return nil, err
	}
	if def.ProtectActor {
		screen.Protect(sess.State.Actor().ID)
	}
	return sess.adopt(def.Name, screen), nil
}

// Reload refetches an open screen. On failure the current collection is kept.
func (uc *BrowseUseCase) Reload(ctx context.Context, sess *Session, screen Screen) error {
	def := screen.Definition()
	records, err := uc.fetch(ctx, sess.State.Token(), def)
	if err != nil {
		return err
	}
	count := screen.Replace(records)
	slog.Debug("browse screen reloaded", slog.String("sessionId", sess.ID()), slog.String("screen", def.Name), slog.Int("items", count))
	return nil
}

// Query authenticates token and returns the session screen's view for query. The query is
// evaluated against the session's collection only; live views keep their own criteria.
// Public screens accept an empty token and are served from a throwaway controller.
func (uc *BrowseUseCase) Query(ctx context.Context, token, name string, query domain.PagedQuery, reload bool) (any, error) {
	def, err := uc.screens.Resolve(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" && def.Public {
		screen, err := uc.load(ctx, "", def)
		if err != nil {
			return nil, err
		}
		return screen.Preview(query), nil
	}

	sess, err := uc.Authenticate(token)
	if err != nil {
		return nil, err
	}
	_, existed := sess.Screen(def.Name)
	screen, err := uc.Open(ctx, sess, def.Name)
	if err != nil {
		return nil, err
	}
	if reload && existed {
		if err := uc.Reload(ctx, sess, screen); err != nil {
			return nil, err
		}
	}
	return screen.Preview(query), nil
}

type openScreen struct {
	session *Session
	screen  Screen
}

// Refresh refetches name for every session that has it open and pushes the new views.
// Polling replaces the collection wholesale: pending local edits are overwritten.
func (uc *BrowseUseCase) Refresh(ctx context.Context, name string) error {
	def, err := uc.screens.Resolve(name)
	if err != nil {
		return err
	}
	targets := uc.openScreens(def.Name)
	if len(targets) == 0 {
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(uc.refreshLimit)
	for _, target := range targets {
		group.Go(func() error {
			if err := uc.Reload(groupCtx, target.session, target.screen); err != nil {
				slog.Warn("browse refresh failed", slog.String("sessionId", target.session.ID()), slog.String("screen", def.Name), slog.Any("error", err))
				uc.Notify(groupCtx, target.session, def.Name, FailureNotice("Failed to refresh "+strings.ToLower(def.Noun)+"s", err))
				return nil
			}
			uc.Publish(groupCtx, target.session, target.screen)
			return nil
		})
	}
	err = group.Wait()
	slog.Info("browse refresh completed", slog.String("screen", def.Name), slog.Int("sessions", len(targets)))
	return err
}

// RefreshEntity refreshes every screen that displays entity.
func (uc *BrowseUseCase) RefreshEntity(ctx context.Context, entity string) error {
	for _, name := range uc.screens.ForEntity(entity) {
		if err := uc.Refresh(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Publish pushes the screen's current view to the session's websocket clients.
func (uc *BrowseUseCase) Publish(ctx context.Context, sess *Session, screen Screen) {
	if uc.broadcaster == nil {
		return
	}
	name := screen.Definition().Name
	uc.broadcaster.Broadcast(ctx, domain.NewMessage(name, domain.ActionView, "", map[string]string{
		"sessionId": sess.ID(),
		"screen":    name,
	}, screen.View(), uc.clock()))
}

// Notify pushes a transient notice to the session's clients on screen.
func (uc *BrowseUseCase) Notify(ctx context.Context, sess *Session, screen string, notice domain.Notice) {
	if uc.broadcaster == nil {
		return
	}
	uc.broadcaster.Broadcast(ctx, domain.NoticeMessage(screen, notice, map[string]string{"sessionId": sess.ID()}, uc.clock()))
}

func (uc *BrowseUseCase) load(ctx context.Context, token string, def ScreenDefinition) (Screen, error) {
	records, err := uc.fetch(ctx, token, def)
	if err != nil {
		return nil, err
	}
	screen, err := uc.screens.New(def.Name)
	if err != nil {
		return nil, err
	}
	screen.Replace(records)
	return screen, nil
}

func (uc *BrowseUseCase) fetch(ctx context.Context, token string, def ScreenDefinition) ([]map[string]any, error) {
	records, err := uc.fetcher.FetchCollection(ctx, token, def.Name)
	uc.metrics.ObserveFetch(def.Name, outcome(err))
	if err != nil {
		slog.Warn("browse fetch failed", slog.String("screen", def.Name), slog.String("category", Categorize(err)), slog.Any("error", err))
		return nil, fmt.Errorf("fetch %s: %w", def.Name, err)
	}
	return records, nil
}

func (uc *BrowseUseCase) openScreens(name string) []openScreen {
	var targets []openScreen
	for _, sess := range uc.sessions.all() {
		if screen, ok := sess.Screen(name); ok {
			targets = append(targets, openScreen{session: sess, screen: screen})
		}
	}
	return targets
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return Categorize(err)
}

type nopMetrics struct{}

func (nopMetrics) ObserveFetch(string, string)            {}
func (nopMetrics) ObserveMutation(string, string, string) {}
func (nopMetrics) ObserveUpload(string)                   {}
func (nopMetrics) SetOpenSessions(int)                    {}
