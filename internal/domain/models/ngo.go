// internal/domain/models/ngo.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NGO verification statuses. Transitions are validated by ngostore:
// pending → under-review → {verified, rejected}.
const (
	VerificationPending     = "pending"
	VerificationUnderReview = "under-review"
	VerificationVerified    = "verified"
	VerificationRejected    = "rejected"
)

// NGO includes case/diacritic-insensitive fields for search/sort.
type NGO struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Website     string             `bson:"website,omitempty" json:"website,omitempty"`
	City        string             `bson:"city" json:"city"`
	CityCI      string             `bson:"city_ci" json:"-"`
	Country     string             `bson:"country" json:"country"`

	// OwnerID is the ngo-role user that manages this organization.
	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	Verification Verification         `bson:"verification" json:"verification"`
	Rating       Rating               `bson:"rating" json:"rating"`
	Followers    []primitive.ObjectID `bson:"followers,omitempty" json:"followers,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Verification tracks the admin review state of an NGO.
type Verification struct {
	Status string `bson:"status" json:"status"`
	// Reference is assigned (uuid) when the NGO reaches verified.
	Reference  string     `bson:"reference,omitempty" json:"reference,omitempty"`
	Note       string     `bson:"note,omitempty" json:"note,omitempty"`
	ReviewedAt *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
}

// Rating is the review aggregate for an NGO. Average and Count are always
// recomputed from Reviews; a user has at most one review (re-reviewing
// replaces the prior entry).
type Rating struct {
	Average float64  `bson:"average" json:"average"`
	Count   int      `bson:"count" json:"count"`
	Reviews []Review `bson:"reviews,omitempty" json:"reviews,omitempty"`
}

// Review is a single user review of an NGO.
type Review struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Stars     int                `bson:"stars" json:"stars"` // 1..5
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
