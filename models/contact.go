package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactStatus enum
type ContactStatus string

const (
	ContactNew        ContactStatus = "New"
	ContactInProgress ContactStatus = "In Progress"
	ContactResolved   ContactStatus = "Resolved"
	ContactClosed     ContactStatus = "Closed"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactInProgress, ContactResolved, ContactClosed:
		return true
	}
	return false
}

// ContactMessage is a message sent through the public contact form.
type ContactMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Subject   string             `bson:"subject" json:"subject"`
	Message   string             `bson:"message" json:"message"`
	Status    ContactStatus      `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
