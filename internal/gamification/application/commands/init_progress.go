package commands

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
	sharedApplication "github.com/taskforge/taskforge/internal/shared/application"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/outbox"
)

// InitProgressCommand creates a progress record for a user if one does
// not exist yet.
type InitProgressCommand struct {
	UserID      uuid.UUID
	DisplayName string
}

// InitProgressHandler handles the InitProgressCommand.
type InitProgressHandler struct {
	progressRepo progress.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	now          func() time.Time
}

// NewInitProgressHandler creates a new InitProgressHandler.
func NewInitProgressHandler(progressRepo progress.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *InitProgressHandler {
	return &InitProgressHandler{
		progressRepo: progressRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		now:          time.Now,
	}
}

// Handle executes the InitProgressCommand. Calling it for an existing
// user is a no-op.
func (h *InitProgressHandler) Handle(ctx context.Context, cmd InitProgressCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		_, err := h.progressRepo.FindByUserID(txCtx, cmd.UserID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, progress.ErrProgressNotFound) {
			return err
		}

		p, err := progress.NewUserProgress(cmd.UserID, cmd.DisplayName, h.now())
		if err != nil {
			return err
		}

		if err := h.progressRepo.Save(txCtx, p); err != nil {
			return err
		}

		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, p.DomainEvents())
	})
}
