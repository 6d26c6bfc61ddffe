package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending      IssueStatus = "Pending"
	UnderReview  IssueStatus = "Under Review"
	NotImportant IssueStatus = "Not Important"
	Fake         IssueStatus = "Fake"
	InProgress   IssueStatus = "In Progress"
	Resolved     IssueStatus = "Resolved"
	Rejected     IssueStatus = "Rejected"
)

// IssueStatuses lists every status an administrator may assign, in display order.
var IssueStatuses = []IssueStatus{
	Pending, UnderReview, NotImportant, Fake, InProgress, Resolved, Rejected,
}

// Valid reports whether s is one of the known statuses.
func (s IssueStatus) Valid() bool {
	for _, known := range IssueStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OtherOption is the escape hatch value for both category and sub-issue.
const OtherOption = "Other"

// IssueCategories maps each category to the sub-issues offered for it.
var IssueCategories = map[string][]string{
	"Road & Infrastructure": {"Potholes", "Broken road", "Damaged bridge", "Missing signage", "Waterlogging on road"},
	"Water Supply":          {"No water supply", "Contaminated water", "Pipeline leakage", "Low water pressure", "Broken hand pump"},
	"Electricity":           {"Power outage", "Broken streetlight", "Exposed wiring", "Transformer fault", "Voltage fluctuation"},
	"Sanitation":            {"Garbage not collected", "Overflowing drain", "Open defecation", "Blocked sewer", "Public toilet unusable"},
	"Health":                {"Health centre closed", "Medicine unavailable", "Mosquito breeding", "Stray animal menace"},
	"Education":             {"School building damaged", "Teacher absent", "Mid-day meal issue", "No drinking water in school"},
	"Public Transport":      {"Bus not running", "Bus stop damaged", "Overcharging"},
}

// ValidCategory reports whether category is a known category other than "Other".
func ValidCategory(category string) bool {
	_, ok := IssueCategories[category]
	return ok
}

// ValidSubIssue reports whether subIssue belongs to category.
func ValidSubIssue(category, subIssue string) bool {
	for _, s := range IssueCategories[category] {
		if s == subIssue {
			return true
		}
	}
	return false
}

// GeoPoint is an optional coordinate pair attached to a location.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat" binding:"min=-90,max=90"`
	Lng float64 `bson:"lng" json:"lng" binding:"min=-180,max=180"`
}

// Location is the structured address of an issue.
type Location struct {
	State       string    `bson:"state" json:"state" binding:"required"`
	District    string    `bson:"district" json:"district" binding:"required"`
	Block       string    `bson:"block" json:"block" binding:"required"`
	Village     string    `bson:"village" json:"village" binding:"required"`
	Panchayat   string    `bson:"panchayat" json:"panchayat" binding:"required"`
	HouseNo     string    `bson:"houseNo,omitempty" json:"houseNo,omitempty"`
	PinCode     string    `bson:"pinCode" json:"pinCode" binding:"required,numeric,len=6"`
	Mobile      string    `bson:"mobile" json:"mobile" binding:"required,numeric,len=10"`
	Coordinates *GeoPoint `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// Comment is one entry of an issue's append-only discussion.
type Comment struct {
	UserID    string    `bson:"userId" json:"userId"`
	Name      string    `bson:"name" json:"name"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"userId" json:"userId"`
	Title         string             `bson:"title" json:"title"`
	Category      string             `bson:"category" json:"category"`
	SubIssue      string             `bson:"subIssue" json:"subIssue"`
	Description   string             `bson:"description" json:"description"`
	Location      Location           `bson:"location" json:"location"`
	PhotoURL      string             `bson:"photoURL" json:"photoURL"`
	PhotoPublicID string             `bson:"photoPublicId" json:"photoPublicId"`
	Status        IssueStatus        `bson:"status" json:"status"`
	Likes         []string           `bson:"likes" json:"likes"`
	LikesCount    int                `bson:"likesCount" json:"likesCount"`
	Comments      []Comment          `bson:"comments" json:"comments"`
	Retweets      []string           `bson:"retweets" json:"retweets"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewIssue fills in the server-owned fields of a freshly reported issue.
func NewIssue(userID string, now time.Time) Issue {
	return Issue{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Status:    Pending,
		Likes:     []string{},
		Comments:  []Comment{},
		Retweets:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LikedBy reports whether userID is in the issue's like set.
func (i *Issue) LikedBy(userID string) bool {
	for _, id := range i.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
