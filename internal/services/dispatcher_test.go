package services

import (
	"context"
	"errors"
	"testing"

	"github.com/circlehub/circle-notifier/internal/models"
	"github.com/circlehub/circle-notifier/internal/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeTokenResolver struct {
	tokens []string
	err    error
}

func (f *fakeTokenResolver) ResolveTokens(ctx context.Context, userIDs []primitive.ObjectID) ([]string, error) {
	return f.tokens, f.err
}

type fakeGateway struct {
	calls    int
	lastMsg  *push.Message
	response *push.Response
	err      error
}

func (f *fakeGateway) SendMulticast(ctx context.Context, msg *push.Message) (*push.Response, error) {
	f.calls++
	f.lastMsg = msg
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func okResponse(tokens int) *push.Response {
	resp := &push.Response{SuccessCount: tokens}
	for i := 0; i < tokens; i++ {
		resp.Results = append(resp.Results, push.TokenResult{Success: true})
	}
	return resp
}

func TestDispatcher_EmptyRecipients_NoGatewayCall(t *testing.T) {
	gateway := &fakeGateway{}
	d := NewDispatcher(&fakeTokenResolver{tokens: []string{"t1"}}, gateway)

	result := d.Dispatch(context.Background(), &models.Notification{ID: primitive.NewObjectID()})

	assert.Equal(t, DispatchSkipped, result.Status)
	assert.Zero(t, gateway.calls)
}

func TestDispatcher_NoResolvableTokens_NoGatewayCall(t *testing.T) {
	gateway := &fakeGateway{}
	d := NewDispatcher(&fakeTokenResolver{}, gateway)

	notif := &models.Notification{
		ID:               primitive.NewObjectID(),
		RecipientUserIDs: []primitive.ObjectID{primitive.NewObjectID()},
	}
	result := d.Dispatch(context.Background(), notif)

	assert.Equal(t, DispatchSkipped, result.Status)
	assert.Zero(t, gateway.calls)
}

func TestDispatcher_SingleMulticastCall(t *testing.T) {
	gateway := &fakeGateway{response: okResponse(3)}
	d := NewDispatcher(&fakeTokenResolver{tokens: []string{"t1", "t2", "t3"}}, gateway)

	circleID := primitive.NewObjectID()
	eventID := primitive.NewObjectID()
	notif := &models.Notification{
		ID:               primitive.NewObjectID(),
		CircleID:         circleID,
		EventID:          eventID,
		Type:             models.NotifTypeEventReminder,
		Title:            "title",
		Body:             "body",
		RecipientUserIDs: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()},
	}

	result := d.Dispatch(context.Background(), notif)

	assert.Equal(t, DispatchDelivered, result.Status)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Zero(t, result.FailureCount)

	// One gateway call for the whole batch, regardless of fan-out size.
	require.Equal(t, 1, gateway.calls)
	require.NotNil(t, gateway.lastMsg)
	assert.Equal(t, []string{"t1", "t2", "t3"}, gateway.lastMsg.Tokens)
	assert.Equal(t, "title", gateway.lastMsg.Title)
	assert.Equal(t, map[string]string{
		"notificationId": notif.ID.Hex(),
		"circleId":       circleID.Hex(),
		"eventId":        eventID.Hex(),
		"type":           models.NotifTypeEventReminder,
		"clickAction":    "FLUTTER_NOTIFICATION_CLICK",
	}, gateway.lastMsg.Data)
}

func TestDispatcher_DataPayloadDefaults(t *testing.T) {
	gateway := &fakeGateway{response: okResponse(1)}
	d := NewDispatcher(&fakeTokenResolver{tokens: []string{"t1"}}, gateway)

	// No circle, no event, no type.
	notif := &models.Notification{
		ID:               primitive.NewObjectID(),
		Title:            "hello",
		Body:             "world",
		RecipientUserIDs: []primitive.ObjectID{primitive.NewObjectID()},
	}
	d.Dispatch(context.Background(), notif)

	require.NotNil(t, gateway.lastMsg)
	assert.Equal(t, "", gateway.lastMsg.Data["circleId"])
	assert.Equal(t, "", gateway.lastMsg.Data["eventId"])
	assert.Equal(t, models.NotifTypeGeneral, gateway.lastMsg.Data["type"])
}

func TestDispatcher_PartialFailure_NotEscalated(t *testing.T) {
	gateway := &fakeGateway{
		response: &push.Response{
			SuccessCount: 1,
			FailureCount: 1,
			Results: []push.TokenResult{
				{Success: true},
				{Success: false, Error: "NotRegistered"},
			},
		},
	}
	d := NewDispatcher(&fakeTokenResolver{tokens: []string{"good", "stale"}}, gateway)

	notif := &models.Notification{
		ID:               primitive.NewObjectID(),
		RecipientUserIDs: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()},
	}
	result := d.Dispatch(context.Background(), notif)

	assert.Equal(t, DispatchPartial, result.Status)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.FailedTokens, 1)
	assert.Equal(t, "stale", result.FailedTokens[0].Token)
	assert.Equal(t, "NotRegistered", result.FailedTokens[0].Reason)
}

func TestDispatcher_GatewayError_DegradesToSkip(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("gateway unreachable")}
	d := NewDispatcher(&fakeTokenResolver{tokens: []string{"t1"}}, gateway)

	notif := &models.Notification{
		ID:               primitive.NewObjectID(),
		RecipientUserIDs: []primitive.ObjectID{primitive.NewObjectID()},
	}
	result := d.Dispatch(context.Background(), notif)

	assert.Equal(t, DispatchSkipped, result.Status)
}

func TestDispatcher_ResolverError_DegradesToSkip(t *testing.T) {
	gateway := &fakeGateway{response: okResponse(1)}
	d := NewDispatcher(&fakeTokenResolver{err: errors.New("store unreachable")}, gateway)

	notif := &models.Notification{
		ID:               primitive.NewObjectID(),
		RecipientUserIDs: []primitive.ObjectID{primitive.NewObjectID()},
	}
	result := d.Dispatch(context.Background(), notif)

	assert.Equal(t, DispatchSkipped, result.Status)
	assert.Zero(t, gateway.calls)
}

func TestDispatcher_DuplicateDelivery_Tolerated(t *testing.T) {
	gateway := &fakeGateway{response: okResponse(1)}
	d := NewDispatcher(&fakeTokenResolver{tokens: []string{"t1"}}, gateway)

	notif := &models.Notification{
		ID:               primitive.NewObjectID(),
		RecipientUserIDs: []primitive.ObjectID{primitive.NewObjectID()},
	}

	// The trigger facility has at-least-once semantics: the same record can
	// arrive twice. Both dispatches complete; the push simply goes out again.
	first := d.Dispatch(context.Background(), notif)
	second := d.Dispatch(context.Background(), notif)

	assert.Equal(t, DispatchDelivered, first.Status)
	assert.Equal(t, DispatchDelivered, second.Status)
	assert.Equal(t, 2, gateway.calls)
}
