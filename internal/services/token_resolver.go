package services

import (
	"context"

	"github.com/circlehub/circle-notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userSource interface {
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// TokenResolver maps recipient user ids to deliverable push tokens. Users
// without a registered token are skipped; having no token is not an error.
type TokenResolver struct {
	users userSource
}

// NewTokenResolver creates a new instance of TokenResolver.
func NewTokenResolver(users userSource) *TokenResolver {
	return &TokenResolver{users: users}
}

// ResolveTokens returns the deduplicated push tokens of the given users, in
// first-seen order. The result may be empty.
func (r *TokenResolver) ResolveTokens(ctx context.Context, userIDs []primitive.ObjectID) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	users, err := r.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(users))
	var tokens []string
	for _, user := range users {
		if user.FCMToken == "" {
			continue
		}
		if _, dup := seen[user.FCMToken]; dup {
			continue
		}
		seen[user.FCMToken] = struct{}{}
		tokens = append(tokens, user.FCMToken)
	}

	return tokens, nil
}
