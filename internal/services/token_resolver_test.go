package services

import (
	"context"
	"errors"
	"testing"

	"github.com/circlehub/circle-notifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserSource struct {
	users []models.User
	err   error
}

func (f *fakeUserSource) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func TestTokenResolver_ResolveTokens(t *testing.T) {
	source := &fakeUserSource{
		users: []models.User{
			{ID: primitive.NewObjectID(), FCMToken: "token-a"},
			{ID: primitive.NewObjectID()}, // no token registered
			{ID: primitive.NewObjectID(), FCMToken: "token-b"},
			{ID: primitive.NewObjectID(), FCMToken: "token-a"}, // shared device
		},
	}
	resolver := NewTokenResolver(source)

	tokens, err := resolver.ResolveTokens(context.Background(), []primitive.ObjectID{primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Equal(t, []string{"token-a", "token-b"}, tokens)
}

func TestTokenResolver_ResolveTokens_NoIDs(t *testing.T) {
	resolver := NewTokenResolver(&fakeUserSource{})

	tokens, err := resolver.ResolveTokens(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenResolver_ResolveTokens_NoTokens(t *testing.T) {
	source := &fakeUserSource{
		users: []models.User{
			{ID: primitive.NewObjectID()},
			{ID: primitive.NewObjectID()},
		},
	}
	resolver := NewTokenResolver(source)

	tokens, err := resolver.ResolveTokens(context.Background(), []primitive.ObjectID{primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenResolver_ResolveTokens_SourceError(t *testing.T) {
	resolver := NewTokenResolver(&fakeUserSource{err: errors.New("store unreachable")})

	_, err := resolver.ResolveTokens(context.Background(), []primitive.ObjectID{primitive.NewObjectID()})
	assert.Error(t, err)
}
