package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/talentvine/talentvine-backend/internal/data/repos"
	"github.com/talentvine/talentvine-backend/internal/domain"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
	"github.com/talentvine/talentvine-backend/internal/realtime"
	realtimebus "github.com/talentvine/talentvine-backend/internal/realtime/bus"
)

// AssignmentNotifier consumes post-commit assignment events. Delivery is
// best-effort: every failure is logged and swallowed, and the committed
// allocation result is never affected.
type AssignmentNotifier interface {
	Dispatch(ctx context.Context, events []AssignmentEvent)
}

type assignmentNotifier struct {
	log           *logger.Logger
	notifications repos.NotificationRepo
	bus           realtimebus.Bus
	budget        time.Duration
}

func NewAssignmentNotifier(
	baseLog *logger.Logger,
	notificationRepo repos.NotificationRepo,
	b realtimebus.Bus,
) AssignmentNotifier {
	return &assignmentNotifier{
		log:           baseLog.With("service", "AssignmentNotifier"),
		notifications: notificationRepo,
		bus:           b,
		budget:        5 * time.Second,
	}
}

func (n *assignmentNotifier) Dispatch(ctx context.Context, events []AssignmentEvent) {
	if n == nil || len(events) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, n.budget)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, ev := range events {
		g.Go(func() error {
			n.deliver(gctx, ev)
			return nil
		})
	}
	_ = g.Wait()
}

func (n *assignmentNotifier) deliver(ctx context.Context, ev AssignmentEvent) {
	if ev.ConsultantID == uuid.Nil {
		return
	}
	title, message, notifType := renderAssignmentNotice(ev)

	payload, _ := json.Marshal(map[string]any{
		"job_id":        ev.JobID,
		"assignment_id": ev.AssignmentID,
		"reason":        ev.Reason,
		"reassignment":  ev.IsReassignment,
	})
	notification := &domain.Notification{
		ID:           uuid.New(),
		ConsultantID: ev.ConsultantID,
		Title:        title,
		Message:      message,
		Type:         notifType,
		ActionURL:    "/jobs/" + ev.JobID.String(),
		Payload:      datatypes.JSON(payload),
		CreatedAt:    time.Now().UTC(),
	}
	if n.notifications != nil {
		if _, err := n.notifications.Create(ctx, nil, []*domain.Notification{notification}); err != nil {
			n.log.Warn("failed to persist assignment notification", "error", err,
				"job_id", ev.JobID, "consultant_id", ev.ConsultantID)
		}
	}

	if n.bus == nil {
		return
	}
	event := realtime.EventAssignmentCreated
	if ev.Kind == EventKindAssignmentRevoked {
		event = realtime.EventAssignmentRevoked
	}
	err := n.bus.Publish(ctx, realtime.Message{
		Channel: ev.ConsultantID.String(),
		Event:   event,
		Data: map[string]any{
			"job_id":        ev.JobID,
			"job_title":     ev.JobTitle,
			"assignment_id": ev.AssignmentID,
			"title":         title,
			"message":       message,
			"type":          notifType,
			"action_url":    notification.ActionURL,
		},
	})
	if err != nil {
		n.log.Warn("failed to publish assignment event", "error", err,
			"job_id", ev.JobID, "consultant_id", ev.ConsultantID)
	}
}

func renderAssignmentNotice(ev AssignmentEvent) (title, message, notifType string) {
	switch ev.Kind {
	case EventKindAssignmentRevoked:
		title = "Job reassigned"
		message = fmt.Sprintf("%q has been reassigned to %s.", ev.JobTitle, nameOrFallback(ev.CounterpartName))
		if ev.Reason != "" {
			message += " Reason: " + ev.Reason
		}
		return title, message, domain.NotificationTypeJobRevoked
	default:
		if ev.IsReassignment {
			title = "Job reassigned to you"
			message = fmt.Sprintf("%q has been reassigned to you from %s.", ev.JobTitle, nameOrFallback(ev.CounterpartName))
			if ev.Reason != "" {
				message += " Reason: " + ev.Reason
			}
			return title, message, domain.NotificationTypeJobReassigned
		}
		title = "New job assigned"
		message = fmt.Sprintf("You have been assigned to %q.", ev.JobTitle)
		return title, message, domain.NotificationTypeJobAssigned
	}
}

func nameOrFallback(name string) string {
	if name == "" {
		return "another consultant"
	}
	return name
}
