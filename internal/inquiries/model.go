package inquiries

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusGhosted    Status = "ghosted"
	StatusClosedWon  Status = "closed_won"
	StatusClosedLost Status = "closed_lost"

	// StatusClosed is the legacy terminal status. The CRM still accepts it but
	// the pipeline has no column for it.
	StatusClosed Status = "closed"
)

var knownStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusGhosted,
	StatusClosedWon,
	StatusClosedLost,
	StatusClosed,
}

func ParseStatus(raw string) (Status, bool) {
	for _, s := range knownStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

func IsValidStatus(s Status) bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// ReplyEntry records one outbound reply. Entries are only ever appended.
type ReplyEntry struct {
	ID      string    `bson:"id" json:"id"`
	Date    time.Time `bson:"date" json:"date"`
	Subject string    `bson:"subject" json:"subject"`
	Body    string    `bson:"body" json:"body"`
	Sender  string    `bson:"sender" json:"sender"`
}

type Inquiry struct {
	ID              string       `bson:"_id,omitempty" json:"id"`
	Name            string       `bson:"name" json:"name"`
	Email           string       `bson:"email" json:"email"`
	Phone           string       `bson:"phone,omitempty" json:"phone,omitempty"`
	ProductInterest string       `bson:"productInterest" json:"productInterest"`
	Quantity        string       `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Message         string       `bson:"message" json:"message"`
	Status          Status       `bson:"status" json:"status"`
	DealValue       *float64     `bson:"dealValue,omitempty" json:"dealValue,omitempty"`
	Notes           string       `bson:"notes,omitempty" json:"notes,omitempty"`
	Labels          []string     `bson:"labels" json:"labels"`
	ReplyHistory    []ReplyEntry `bson:"replyHistory" json:"replyHistory"`
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
	TimeString      string       `bson:"timeString,omitempty" json:"timeString,omitempty"`
	UpdatedAt       time.Time    `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Patch lists the fields one update writes. Nil pointers are left untouched.
type Patch struct {
	Status         *Status
	Labels         *[]string
	Notes          *string
	DealValue      *float64
	ClearDealValue bool
}

type ListFilter struct {
	Query  string
	Status Status
}

// StatusChange is returned by status updates so a caller that applied the
// change optimistically knows what to revert to.
type StatusChange struct {
	ID       string `json:"id"`
	Previous Status `json:"previous"`
	Current  Status `json:"current"`
}

// ContactRequest is the public contact form submission.
type ContactRequest struct {
	Name            string `json:"name" validate:"required,notblank,max=120"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,phone"`
	ProductInterest string `json:"productInterest" validate:"required,notblank,max=200"`
	Quantity        string `json:"quantity" validate:"max=120"`
	Message         string `json:"message" validate:"required,notblank,max=5000"`
}

// LeadRequest creates an inquiry by hand from the pipeline board.
type LeadRequest struct {
	Name            string   `json:"name" validate:"required,notblank,max=120"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone" validate:"omitempty,phone"`
	ProductInterest string   `json:"productInterest" validate:"max=200"`
	Quantity        string   `json:"quantity" validate:"max=120"`
	Message         string   `json:"message" validate:"max=5000"`
	Status          Status   `json:"status" validate:"required"`
	DealValue       *float64 `json:"dealValue" validate:"omitempty,gte=0"`
	Notes           string   `json:"notes"`
	Labels          []string `json:"labels" validate:"omitempty,dive,max=60"`
}

type StatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

type MoveRequest struct {
	ID     string `json:"id" validate:"required"`
	Status Status `json:"status" validate:"required"`
}

type LabelRequest struct {
	Label string `json:"label" validate:"max=60"`
}

type NotesRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

type DealValueRequest struct {
	DealValue *float64 `json:"dealValue"`
}

type ReplyRequest struct {
	Subject string `json:"subject" validate:"required,notblank,max=300"`
	Body    string `json:"body" validate:"required,notblank"`
}
