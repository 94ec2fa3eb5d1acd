package services

import (
	"context"

	"github.com/circlehub/circle-notifier/internal/metrics"
	"github.com/circlehub/circle-notifier/internal/models"
	"github.com/circlehub/circle-notifier/internal/push"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clickAction is the routing tag the mobile client expects in the data
// payload.
const clickAction = "FLUTTER_NOTIFICATION_CLICK"

// DispatchStatus classifies the outcome of one dispatch attempt.
type DispatchStatus string

const (
	// DispatchDelivered means every resolved token was accepted.
	DispatchDelivered DispatchStatus = "delivered"
	// DispatchPartial means the gateway rejected some tokens.
	DispatchPartial DispatchStatus = "partial"
	// DispatchSkipped means no push was attempted: no recipients, no
	// resolvable tokens, or an error that degraded to a no-op.
	DispatchSkipped DispatchStatus = "skipped"
)

// FailedToken records one token the gateway rejected, with its reason.
type FailedToken struct {
	Token  string
	Reason string
}

// DispatchResult is the explicit outcome of dispatching one notification
// record. Failures never propagate past the dispatcher; the result exists so
// callers can log and count what happened.
type DispatchResult struct {
	Status       DispatchStatus
	SuccessCount int
	FailureCount int
	FailedTokens []FailedToken
}

type tokenResolver interface {
	ResolveTokens(ctx context.Context, userIDs []primitive.ObjectID) ([]string, error)
}

// Dispatcher turns one notification record into at most one multicast push
// call. Delivery is best-effort and at-most-once: every failure path degrades
// to a logged skip so the trigger facility never retries a record whose push
// may already have gone out.
type Dispatcher struct {
	tokens  tokenResolver
	gateway push.Gateway
}

// NewDispatcher creates a new instance of Dispatcher.
func NewDispatcher(tokens tokenResolver, gateway push.Gateway) *Dispatcher {
	return &Dispatcher{
		tokens:  tokens,
		gateway: gateway,
	}
}

// Dispatch attempts push delivery for the given record. It never returns an
// error; repeated invocations for the same record are harmless.
func (d *Dispatcher) Dispatch(ctx context.Context, notif *models.Notification) *DispatchResult {
	log := logrus.WithField("notificationID", notif.ID.Hex())

	if len(notif.RecipientUserIDs) == 0 {
		log.Info("Notification has no recipients, skipping")
		return d.finish(&DispatchResult{Status: DispatchSkipped})
	}

	tokens, err := d.tokens.ResolveTokens(ctx, notif.RecipientUserIDs)
	if err != nil {
		log.WithError(err).Error("Failed to resolve push tokens")
		return d.finish(&DispatchResult{Status: DispatchSkipped})
	}
	if len(tokens) == 0 {
		log.Info("No push tokens registered for recipients, skipping")
		return d.finish(&DispatchResult{Status: DispatchSkipped})
	}

	msg := &push.Message{
		Title:  notif.Title,
		Body:   notif.Body,
		Data:   dataPayload(notif),
		Tokens: tokens,
	}

	resp, err := d.gateway.SendMulticast(ctx, msg)
	if err != nil {
		log.WithError(err).Error("Push gateway call failed")
		return d.finish(&DispatchResult{Status: DispatchSkipped})
	}

	result := &DispatchResult{
		Status:       DispatchDelivered,
		SuccessCount: resp.SuccessCount,
		FailureCount: resp.FailureCount,
	}
	for i, tr := range resp.Results {
		if tr.Success || i >= len(tokens) {
			continue
		}
		result.FailedTokens = append(result.FailedTokens, FailedToken{
			Token:  tokens[i],
			Reason: tr.Error,
		})
		log.WithFields(logrus.Fields{
			"token":  tokens[i],
			"reason": tr.Error,
		}).Warn("Push delivery failed for token")
	}
	if result.FailureCount > 0 {
		result.Status = DispatchPartial
	}

	log.WithFields(logrus.Fields{
		"success": result.SuccessCount,
		"failure": result.FailureCount,
	}).Info("Notification dispatched")

	return d.finish(result)
}

func (d *Dispatcher) finish(result *DispatchResult) *DispatchResult {
	metrics.NotificationsDispatched.WithLabelValues(string(result.Status)).Inc()
	metrics.PushTokensDelivered.Add(float64(result.SuccessCount))
	metrics.PushTokensFailed.Add(float64(result.FailureCount))
	return result
}

// dataPayload builds the client data map. Absent references become empty
// strings and the type falls back to general, matching what the mobile
// client tolerates.
func dataPayload(notif *models.Notification) map[string]string {
	circleID := ""
	if !notif.CircleID.IsZero() {
		circleID = notif.CircleID.Hex()
	}
	eventID := ""
	if !notif.EventID.IsZero() {
		eventID = notif.EventID.Hex()
	}
	notifType := notif.Type
	if notifType == "" {
		notifType = models.NotifTypeGeneral
	}

	return map[string]string{
		"notificationId": notif.ID.Hex(),
		"circleId":       circleID,
		"eventId":        eventID,
		"type":           notifType,
		"clickAction":    clickAction,
	}
}
