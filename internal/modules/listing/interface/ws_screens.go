package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/romdo/go-debounce"

	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/application/usecase"
	"bookshelfWs/internal/modules/listing/domain"
	"bookshelfWs/internal/modules/listing/infrastructure"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var commandValidator = validator.New(validator.WithRequiredStructEnabled())

// DefaultDebounceWait delays search commands until typing pauses.
const DefaultDebounceWait = 250 * time.Millisecond

// WebsocketOptions tunes the live screen endpoint.
type WebsocketOptions struct {
	DebounceWait   time.Duration
	AllowedActions []string
	SendBuffer     int
}

type searchPayload struct {
	Value string `json:"value"`
}

type filterPayload struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

type rangePayload struct {
	Preset string `json:"preset" validate:"required"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type pagePayload struct {
	Page int `json:"page" validate:"gte=1"`
}

type deletePayload struct {
	ID        string `json:"id" validate:"required"`
	Confirmed bool   `json:"confirmed"`
}

type updatePayload struct {
	ID    string `json:"id" validate:"required"`
	Field string `json:"field" validate:"required"`
	Value string `json:"value" validate:"required"`
}

type queryPayload struct {
	Page    int               `json:"page"`
	Search  string            `json:"search"`
	Sort    string            `json:"sort"`
	Range   string            `json:"range"`
	From    string            `json:"from"`
	To      string            `json:"to"`
	Filters map[string]string `json:"filters,omitempty"`
}

// NewScreenWebsocketHandler exposes /ws/screens/:screen. The session's screen is opened (and
// fetched) before the upgrade so a failing backend is reported as a plain HTTP error.
func NewScreenWebsocketHandler(hub *infrastructure.Hub, browse *usecase.BrowseUseCase, mutate *usecase.MutateUseCase, opts WebsocketOptions) echo.HandlerFunc {
	if opts.DebounceWait <= 0 {
		opts.DebounceWait = DefaultDebounceWait
	}
	if len(opts.AllowedActions) == 0 {
		opts.AllowedActions = []string{domain.ActionCreated, domain.ActionUpdated, domain.ActionDeleted}
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 16
	}

	return func(c echo.Context) error {
		def, err := browse.Screens().Resolve(c.Param("screen"))
		if err != nil {
			return respondError(c, "Failed to open screen", err)
		}
		sess, err := browse.Authenticate(requestToken(c))
		if err != nil {
			return respondError(c, "Failed to open screen", err)
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
		screen, err := browse.Open(ctx, sess, def.Name)
		cancel()
		if err != nil {
			return respondError(c, "Failed to fetch "+strings.ToLower(def.Noun)+"s", err)
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws handler upgrade failed", slog.String("screen", def.Name), slog.Any("error", err))
			return err
		}

		commands := &screenCommands{browse: browse, mutate: mutate, session: sess, screen: screen}
		actor := sess.State.Actor()
		client := infrastructure.NewClient(hub, conn, sess.ID(), actor.ID, def.Name, opts.SendBuffer, commands.handle)
		commands.debounced, commands.cancelSearch = debounce.NewWithMaxWait(opts.DebounceWait, 4*opts.DebounceWait, commands.applySearch)
		client.AddCloseHook(func(closed *infrastructure.Client) {
			commands.cancelSearch()
			if !hub.SessionConnected(closed.SessionID()) {
				browse.Forget(closed.SessionID())
			}
		})

		topics := buildTopics(def, opts.AllowedActions)
		hub.AttachClient(client, topics)

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(domain.NewMessage(domain.SystemEntity, domain.ActionConnected, "", map[string]string{
			"sessionId": sess.ID(),
			"screen":    def.Name,
		}, map[string]any{
			"connectionId":  client.ID(),
			"screen":        def.Name,
			"pageSize":      def.PageSize,
			"allowedTopics": topics,
			"cartCount":     sess.State.CartCount(),
		}, time.Now()))
		client.SendDomainMessage(domain.NewMessage(def.Name, domain.ActionView, "", map[string]string{
			"sessionId": sess.ID(),
			"screen":    def.Name,
		}, screen.View(), time.Now()))

		slog.Info("ws screen connected", slog.String("screen", def.Name), slog.String("sessionId", sess.ID()), slog.String("connId", client.ID()), slog.String("ip", c.RealIP()))
		return nil
	}
}

func buildTopics(def usecase.ScreenDefinition, allowedActions []string) []string {
	topics := []string{
		domain.Topic(def.Name, domain.ActionView),
		domain.Topic(def.Name, domain.ActionNotice),
		domain.Topic(domain.SystemEntity, domain.ActionError),
	}
	if def.OwnRecords {
		return topics
	}
	seen := map[string]struct{}{topics[0]: {}, topics[1]: {}, topics[2]: {}}
	for _, action := range allowedActions {
		topic := domain.Topic(def.Entity, strings.ToLower(action))
		if topic == "" {
			continue
		}
		if _, exists := seen[topic]; exists {
			continue
		}
		topics = append(topics, topic)
		seen[topic] = struct{}{}
	}
	return topics
}

// screenCommands applies one client's commands to its session screen and pushes the result to
// every connection of that session showing the screen.
type screenCommands struct {
	browse  *usecase.BrowseUseCase
	mutate  *usecase.MutateUseCase
	session *usecase.Session
	screen  usecase.Screen

	debounced    func()
	cancelSearch func()
	mu           sync.Mutex
	pending      string
}

func (s *screenCommands) handle(ctx context.Context, client *infrastructure.Client, cmd infrastructure.Command) {
	def := s.screen.Definition()
	action := strings.ToLower(strings.TrimSpace(cmd.Action))
	switch action {
	case "search":
		var p searchPayload
		if !s.decode(ctx, cmd, &p) {
			return
		}
		s.mu.Lock()
		s.pending = p.Value
		s.mu.Unlock()
		s.debounced()
		return
	case "filter":
		var p filterPayload
		if !s.decode(ctx, cmd, &p) {
			return
		}
		s.screen.SetCriterion(p.Key, p.Value)
	case "range":
		if def.RangeKey == "" {
			s.reject(ctx, action, port.ErrUnsupported)
			return
		}
		var p rangePayload
		if !s.decode(ctx, cmd, &p) {
			return
		}
		s.screen.SetRange(p.Preset, p.From, p.To)
	case "clear":
		s.screen.Clear()
	case "sort":
		s.screen.ToggleSort()
	case "page":
		var p pagePayload
		if !s.decode(ctx, cmd, &p) {
			return
		}
		s.screen.GoTo(p.Page)
	case "next":
		s.screen.Next()
	case "prev", "previous":
		s.screen.Prev()
	case "query":
		var p queryPayload
		if !s.decode(ctx, cmd, &p) {
			return
		}
		s.screen.Apply(domain.PagedQuery{
			Page:    p.Page,
			Search:  p.Search,
			Sort:    domain.ParseSortState(p.Sort),
			Range:   p.Range,
			From:    p.From,
			To:      p.To,
			Filters: p.Filters,
		})
	case "delete":
		var p deletePayload
		if !s.decode(ctx, cmd, &p) {
			return
		}
		// Outcomes are pushed to the session by the use case.
		_, _ = s.mutate.Delete(ctx, s.session, def.Name, p.ID, p.Confirmed)
		return
	case "update":
		var p updatePayload
		if !s.decode(ctx, cmd, &p) {
			return
		}
		_, _ = s.mutate.Update(ctx, s.session, def.Name, p.ID, p.Field, p.Value)
		return
	case "refresh", "reload":
		if err := s.browse.Reload(ctx, s.session, s.screen); err != nil {
			s.browse.Notify(ctx, s.session, def.Name, usecase.FailureNotice("Failed to fetch "+strings.ToLower(def.Noun)+"s", err))
			return
		}
	default:
		slog.Debug("ws screen unknown action", slog.String("screen", def.Name), slog.String("connId", client.ID()), slog.String("action", cmd.Action))
		s.reject(ctx, action, port.ErrUnsupported)
		return
	}
	s.browse.Publish(ctx, s.session, s.screen)
}

func (s *screenCommands) applySearch() {
	s.mu.Lock()
	value := s.pending
	s.mu.Unlock()
	s.screen.SetCriterion(s.screen.Definition().SearchKey, value)
	s.browse.Publish(context.Background(), s.session, s.screen)
}

func (s *screenCommands) decode(ctx context.Context, cmd infrastructure.Command, v any) bool {
	if err := cmd.Decode(v); err != nil {
		s.reject(ctx, cmd.Action, port.Invalid("invalid payload"))
		return false
	}
	if err := commandValidator.Struct(v); err != nil {
		s.reject(ctx, cmd.Action, port.Invalid("invalid %s payload", strings.ToLower(strings.TrimSpace(cmd.Action))))
		return false
	}
	return true
}

func (s *screenCommands) reject(ctx context.Context, action string, err error) {
	name := s.screen.Definition().Name
	slog.Warn("ws screen command rejected", slog.String("screen", name), slog.String("sessionId", s.session.ID()), slog.String("action", action), slog.Any("error", err))
	s.browse.Notify(ctx, s.session, name, usecase.FailureNotice("Command "+action+" failed", err))
}
