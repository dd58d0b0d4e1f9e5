package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/domain"
)

// MutateUseCase runs deletes and field updates through the session's screen controllers.
// Permission checks happen locally before any request; the controller then issues exactly one
// backend call and patches the local collection only when it succeeds.
type MutateUseCase struct {
	browse  *BrowseUseCase
	mutator port.ItemMutator
	metrics port.Metrics
}

func NewMutateUseCase(browse *BrowseUseCase, mutator port.ItemMutator, metrics port.Metrics) *MutateUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &MutateUseCase{browse: browse, mutator: mutator, metrics: metrics}
}

// Delete removes id from screen. Every outcome is also pushed to the session as a notice.
func (uc *MutateUseCase) Delete(ctx context.Context, sess *Session, screenName, id string, confirmed bool) (domain.Notice, error) {
	id = strings.TrimSpace(id)
	def, err := uc.browse.screens.Resolve(screenName)
	if err != nil {
		return FailureNotice("Failed to delete", err), err
	}
	failure := "Failed to delete " + strings.ToLower(def.Noun)

	screen, err := uc.authorizeDelete(ctx, sess, def, id, confirmed)
	if err == nil {
		err = screen.Delete(ctx, id, confirmed, func(ctx context.Context, id string) error {
			return uc.mutator.Delete(ctx, sess.State.Token(), def.Name, id)
		})
	}
	uc.metrics.ObserveMutation(def.Name, "delete", outcome(err))
	if err != nil {
		slog.Warn("mutate delete failed", slog.String("sessionId", sess.ID()), slog.String("screen", def.Name), slog.String("id", id), slog.Any("error", err))
		notice := FailureNotice(failure, err)
		uc.browse.Notify(ctx, sess, def.Name, notice)
		return notice, err
	}

	slog.Info("mutate delete succeeded", slog.String("sessionId", sess.ID()), slog.String("screen", def.Name), slog.String("id", id))
	notice := domain.Success(fmt.Sprintf("%s #%s deleted successfully", def.Noun, id))
	uc.browse.Publish(ctx, sess, screen)
	uc.browse.Notify(ctx, sess, def.Name, notice)
	return notice, nil
}

// Update sets field of id to value on screen, e.g. an order status or a user role.
func (uc *MutateUseCase) Update(ctx context.Context, sess *Session, screenName, id, field, value string) (domain.Notice, error) {
	id = strings.TrimSpace(id)
	field = strings.ToLower(strings.TrimSpace(field))
	def, err := uc.browse.screens.Resolve(screenName)
	if err != nil {
		return FailureNotice("Failed to update", err), err
	}
	failure := fmt.Sprintf("Failed to update %s %s", strings.ToLower(def.Noun), field)

	screen, err := uc.authorizeUpdate(ctx, sess, def, field)
	if err == nil {
		err = screen.Patch(ctx, id, field, value, func(ctx context.Context, id, normalized string) error {
			value = normalized
			return uc.mutator.Update(ctx, sess.State.Token(), def.Name, id, field, normalized)
		})
	}
	uc.metrics.ObserveMutation(def.Name, "update", outcome(err))
	if err != nil {
		slog.Warn("mutate update failed", slog.String("sessionId", sess.ID()), slog.String("screen", def.Name), slog.String("id", id), slog.String("field", field), slog.Any("error", err))
		notice := FailureNotice(failure, err)
		uc.browse.Notify(ctx, sess, def.Name, notice)
		return notice, err
	}

	slog.Info("mutate update succeeded", slog.String("sessionId", sess.ID()), slog.String("screen", def.Name), slog.String("id", id), slog.String("field", field), slog.String("value", value))
	notice := domain.Success(fmt.Sprintf("%s #%s %s updated to %s", def.Noun, id, field, value))
	uc.browse.Publish(ctx, sess, screen)
	uc.browse.Notify(ctx, sess, def.Name, notice)
	return notice, nil
}

func (uc *MutateUseCase) authorizeDelete(ctx context.Context, sess *Session, def ScreenDefinition, id string, confirmed bool) (Screen, error) {
	if !def.CanDelete() {
		return nil, port.ErrUnsupported
	}
	if !confirmed {
		return nil, domain.ErrConfirmationRequired
	}
	if def.ProtectActor && id == sess.State.Actor().ID {
		return nil, domain.ErrProtectedItem
	}
	if !sess.State.Can(def.DeletePermission) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, def.DeletePermission)
	}
	return uc.browse.Open(ctx, sess, def.Name)
}

func (uc *MutateUseCase) authorizeUpdate(ctx context.Context, sess *Session, def ScreenDefinition, field string) (Screen, error) {
	permission, ok := def.PatchPermission(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no updatable field %q", port.ErrUnsupported, def.Name, field)
	}
	if !sess.State.Can(permission) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, permission)
	}
	return uc.browse.Open(ctx, sess, def.Name)
}
