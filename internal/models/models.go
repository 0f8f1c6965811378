package models

import "time"

// JobStatus is the lifecycle state of a posted job
type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusAssigned  JobStatus = "assigned"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
)

// PaymentStatus tracks the hosted checkout for a job
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Job represents a delivery job posted by a client
type Job struct {
	ID             string        `json:"id"`
	ClientID       string        `json:"client_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Budget         float64       `json:"budget"`
	PickupAddress  string        `json:"pickup_address"`
	DropoffAddress string        `json:"dropoff_address"`
	PickupLat      *float64      `json:"pickup_lat,omitempty"`
	PickupLon      *float64      `json:"pickup_lon,omitempty"`
	DropoffLat     *float64      `json:"dropoff_lat,omitempty"`
	DropoffLon     *float64      `json:"dropoff_lon,omitempty"`
	Status         JobStatus     `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// JobUpdate lists the fields a client may change on an open job
type JobUpdate struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Budget         *float64 `json:"budget,omitempty"`
	PickupAddress  *string  `json:"pickup_address,omitempty"`
	DropoffAddress *string  `json:"dropoff_address,omitempty"`
}

// Empty reports whether the update carries no fields
func (u JobUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Budget == nil &&
		u.PickupAddress == nil && u.DropoffAddress == nil
}

// RequestStatus is the decision state of a job request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// JobRequest represents a driver's interest in a job
type JobRequest struct {
	ID          string        `json:"id"`
	JobID       string        `json:"job_id"`
	DriverID    string        `json:"driver_id"`
	OfferAmount *float64      `json:"offer_amount,omitempty"`
	IsApproved  bool          `json:"is_approved"`
	Status      RequestStatus `json:"status"`
	Direct      bool          `json:"direct"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ActiveJobStatus is the delivery progress of an approved job
type ActiveJobStatus string

const (
	ActiveJobOngoing   ActiveJobStatus = "ongoing"
	ActiveJobCollected ActiveJobStatus = "collected"
	ActiveJobDelivered ActiveJobStatus = "delivered"
	ActiveJobCancelled ActiveJobStatus = "cancelled"
)

// activeJobTransitions holds every legal status change
var activeJobTransitions = map[ActiveJobStatus][]ActiveJobStatus{
	ActiveJobOngoing:   {ActiveJobCollected, ActiveJobCancelled},
	ActiveJobCollected: {ActiveJobDelivered},
}

// CanTransition reports whether an active job may move from one status to another
func (s ActiveJobStatus) CanTransition(to ActiveJobStatus) bool {
	for _, next := range activeJobTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status
func (s ActiveJobStatus) Valid() bool {
	switch s {
	case ActiveJobOngoing, ActiveJobCollected, ActiveJobDelivered, ActiveJobCancelled:
		return true
	}
	return false
}

// ActiveJob binds one approved driver to one job
type ActiveJob struct {
	ID        string          `json:"id"`
	JobID     string          `json:"job_id"`
	RequestID string          `json:"request_id"`
	DriverID  string          `json:"driver_id"`
	ClientID  string          `json:"client_id"`
	JobStatus ActiveJobStatus `json:"job_status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// HasParty reports whether userID is the driver or the client of the job
func (a *ActiveJob) HasParty(userID string) bool {
	return a.DriverID == userID || a.ClientID == userID
}

// DeliveredJob is the proof of delivery plus the two confirmations gating payment
type DeliveredJob struct {
	ID                 string     `json:"id"`
	ActiveJobID        string     `json:"active_job_id"`
	LocationID         *string    `json:"location_id,omitempty"`
	ProofOfDeliveryURL string     `json:"proof_of_delivery_url"`
	IsDriverConfirmed  bool       `json:"is_driver_confirmed"`
	IsClientConfirmed  bool       `json:"is_client_confirmed"`
	PaymentReleasedAt  *time.Time `json:"payment_released_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ReadyForRelease reports whether both parties confirmed and nothing was paid out yet
func (d *DeliveredJob) ReadyForRelease() bool {
	return d.IsDriverConfirmed && d.IsClientConfirmed && d.PaymentReleasedAt == nil
}

// Role names used by the access guard
type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// UserRole holds the role flags of a user
type UserRole struct {
	UserID    string    `json:"user_id"`
	Driver    bool      `json:"driver"`
	Client    bool      `json:"client"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Has reports whether the flags grant role r. Admin is not stored here.
func (u *UserRole) Has(r Role) bool {
	switch r {
	case RoleDriver:
		return u.Driver
	case RoleClient:
		return u.Client
	}
	return false
}

// RoleUpdate lists the role flags to set; nil keeps the stored value
type RoleUpdate struct {
	Driver *bool `json:"driver,omitempty"`
	Client *bool `json:"client,omitempty"`
}

// Contact is a client-driver pairing that owns a chat thread
type Contact struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	DriverID  string    `json:"driver_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Other returns the counterpart of userID in the contact
func (c *Contact) Other(userID string) string {
	if c.ClientID == userID {
		return c.DriverID
	}
	return c.ClientID
}

// HasParty reports whether userID belongs to the contact
func (c *Contact) HasParty(userID string) bool {
	return c.ClientID == userID || c.DriverID == userID
}

// Message is a chat message inside a contact thread
type Message struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contact_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is a saved, geocoded address
type Location struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Label     string    `json:"label"`
	Address   string    `json:"address"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a rating left for a driver or a client
type Review struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	TargetID    string    `json:"target_id"`
	TargetRole  Role      `json:"target_role"`
	ActiveJobID *string   `json:"active_job_id,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// Platform identifies the push gateway for a device token
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// PushToken is a device registration for push notifications
type PushToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Platform  Platform  `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}
