package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member roles within a circle.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type CircleMember struct {
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role   string             `bson:"role" json:"role"`
}

// Circle represents a club/circle. Read-only to this service.
type Circle struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Members []CircleMember     `bson:"members" json:"members"`
}

// AdminIDs returns the user ids of members with the admin role.
func (c *Circle) AdminIDs() []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, m := range c.Members {
		if m.Role == RoleAdmin {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}
