package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
	notifservices "github.com/pdnportal/portal/modules/notification/services"
	"github.com/pdnportal/portal/pkg/application"
	"github.com/pdnportal/portal/pkg/composables"
)

// NotificationHandler fans workflow events out to the inboxes of the users
// the event concerns. Handlers run after commit on the publisher's
// goroutine, so they carry their own pool-backed context.
type NotificationHandler struct {
	pool          *pgxpool.Pool
	notifications *notifservices.NotificationService
}

func RegisterNotificationHandler(app application.Application) *NotificationHandler {
	h := &NotificationHandler{
		pool:          app.DB(),
		notifications: app.Service(notifservices.NotificationService{}).(*notifservices.NotificationService),
	}
	app.EventPublisher().Subscribe(h.onSubmitted)
	app.EventPublisher().Subscribe(h.onAdvanced)
	app.EventPublisher().Subscribe(h.onRejected)
	app.EventPublisher().Subscribe(h.onSentBack)
	app.EventPublisher().Subscribe(h.onAssigned)
	app.EventPublisher().Subscribe(h.onCompleted)
	app.EventPublisher().Subscribe(h.onChecked)
	app.EventPublisher().Subscribe(h.onClosed)
	app.EventPublisher().Subscribe(h.onCancelled)
	return h
}

func (h *NotificationHandler) ctx() context.Context {
	return composables.WithPool(context.Background(), h.pool)
}

func requestLink(r *joborder.JobRequest) string {
	return fmt.Sprintf("/joborder/requests/%d", r.ID)
}

func (h *NotificationHandler) notify(userID, senderID uuid.UUID, r *joborder.JobRequest, title, message string) {
	h.notifications.Notify(h.ctx(), notifservices.NotifyParams{
		UserID:   userID,
		SenderID: &senderID,
		Title:    title,
		Message:  message,
		Link:     requestLink(r),
	})
}

func (h *NotificationHandler) onSubmitted(event *joborder.SubmittedEvent) {
	h.notify(event.NextStep.ApproverID, event.Request.RequesterID, event.Request,
		"Job order awaiting your approval",
		fmt.Sprintf("%s was submitted by %s.", event.Request.ControlNumber, event.Request.RequestorName),
	)
}

func (h *NotificationHandler) onAdvanced(event *joborder.AdvancedEvent) {
	h.notify(event.NextStep.ApproverID, event.ActorID, event.Request,
		"Job order awaiting your action",
		fmt.Sprintf("%s moved to %s.", event.Request.ControlNumber, event.Request.CurrentStage),
	)
	if event.NextStep.ApproverID != event.Request.RequesterID {
		h.notify(event.Request.RequesterID, event.ActorID, event.Request,
			"Job order approved",
			fmt.Sprintf("%s moved to %s.", event.Request.ControlNumber, event.Request.CurrentStage),
		)
	}
}

func (h *NotificationHandler) onRejected(event *joborder.RejectedEvent) {
	h.notify(event.Request.RequesterID, event.ActorID, event.Request,
		"Job order rejected",
		fmt.Sprintf("%s was rejected: %s", event.Request.ControlNumber, event.Remarks),
	)
}

func (h *NotificationHandler) onSentBack(event *joborder.SentBackEvent) {
	h.notify(event.ReopenedStep.ApproverID, event.ActorID, event.Request,
		"Job order sent back for rework",
		fmt.Sprintf("%s failed checking: %s", event.Request.ControlNumber, event.Remarks),
	)
}

func (h *NotificationHandler) onAssigned(event *joborder.AssignedEvent) {
	h.notify(event.AssigneeID, event.ActorID, event.Request,
		"Job order assigned to you",
		fmt.Sprintf("%s is waiting for execution.", event.Request.ControlNumber),
	)
}

func (h *NotificationHandler) onCompleted(event *joborder.CompletedEvent) {
	h.notify(event.CheckerID, event.ActorID, event.Request,
		"Job order awaiting checking",
		fmt.Sprintf("%s was completed and needs checking.", event.Request.ControlNumber),
	)
}

func (h *NotificationHandler) onChecked(event *joborder.CheckedEvent) {
	h.notify(event.Request.RequesterID, event.ActorID, event.Request,
		"Job order checked",
		fmt.Sprintf("%s passed checking and can be closed.", event.Request.ControlNumber),
	)
}

func (h *NotificationHandler) onClosed(event *joborder.ClosedEvent) {
	if event.Request.InChargeID != nil {
		h.notify(*event.Request.InChargeID, event.ActorID, event.Request,
			"Job order closed",
			fmt.Sprintf("%s was closed by the requester.", event.Request.ControlNumber),
		)
	}
}

func (h *NotificationHandler) onCancelled(event *joborder.CancelledEvent) {
	if event.Request.InChargeID != nil {
		h.notify(*event.Request.InChargeID, event.ActorID, event.Request,
			"Job order cancelled",
			fmt.Sprintf("%s was cancelled by the requester.", event.Request.ControlNumber),
		)
	}
}
