package models

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant statuses.
const (
	ParticipantConfirmed = "confirmed"
	ParticipantPending   = "pending"
	ParticipantDeclined  = "declined"
)

type Participant struct {
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status string             `bson:"status" json:"status"`
}

// Event is a circle event. Owned by the event subsystem; this service only
// reads it. Fee is deliberately untyped: client versions have written it as
// a number or as a free-form string, so it is normalized through FeeAmount.
type Event struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CircleID     primitive.ObjectID `bson:"circle_id" json:"circle_id"`
	Name         string             `bson:"name" json:"name"`
	Datetime     time.Time          `bson:"datetime" json:"datetime"`
	EndDatetime  time.Time          `bson:"end_datetime" json:"end_datetime"`
	Fee          interface{}        `bson:"fee,omitempty" json:"fee,omitempty"`
	Participants []Participant      `bson:"participants" json:"participants"`
}

// ConfirmedParticipantIDs returns the user ids of participants whose status
// is confirmed, in document order.
func (e *Event) ConfirmedParticipantIDs() []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, p := range e.Participants {
		if p.Status == ParticipantConfirmed {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

// FeeAmount normalizes the fee to yen. Strings are parsed leniently: leading
// digits count, anything unparsable means no fee.
func (e *Event) FeeAmount() int {
	switch v := e.Fee.(type) {
	case nil:
		return 0
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		return leadingInt(v)
	default:
		return 0
	}
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
