package dto

import (
	"github.com/shopspring/decimal"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
)

// EventKind distinguishes inbound chat events
type EventKind int

const (
	EventText EventKind = iota
	EventCallback
)

// Profile carries sender details of a text message
type Profile struct {
	Username  string
	FirstName string
	LastName  string
}

// InboundEvent is a transport independent chat event
type InboundEvent struct {
	Kind       EventKind
	ChatID     int64
	Text       string
	Data       string
	CallbackID string
	Sender     *Profile
}

// Button is an inline button with its callback token
type Button struct {
	Text string
	Data string
}

// OutboundMessage is a message to one chat. Buttons holds rows of inline buttons.
type OutboundMessage struct {
	ChatID         int64
	Text           string
	Buttons        [][]Button
	RemoveKeyboard bool
}

// LeadRequest is the lead submission body accepted over HTTP and Kafka
type LeadRequest struct {
	Fio      string           `json:"fio" validate:"required,min=2,max=100"`
	Phone    string           `json:"phone" validate:"required,max=32"`
	District string           `json:"district" validate:"required,max=50"`
	Source   string           `json:"source" validate:"required,max=80"`
	Quantity *int             `json:"quantity" validate:"required,gte=0"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
}

// ContactRequest is a CRM contact added with /add
type ContactRequest struct {
	Fio      string `validate:"required,min=2,max=100"`
	Phone    string `validate:"required,max=32"`
	District string `validate:"required,max=50"`
	Source   string `validate:"required,max=80"`
	Quantity int    `validate:"gte=0"`
}

// SubmitOutcome is the result of a lead submission
type SubmitOutcome string

const (
	OutcomeCreated   SubmitOutcome = "created"
	OutcomeDuplicate SubmitOutcome = "duplicate"
)

// SubmitLeadResult is returned by lead submission
type SubmitLeadResult struct {
	Outcome SubmitOutcome
	Lead    *entities.Lead
	Report  *BroadcastReport
}

// SubscribeOutcome is the result of /notify_me
type SubscribeOutcome int

const (
	SubscribeAlready SubscribeOutcome = iota
	SubscribeEnabled
	SubscribeCreated
)

// UnsubscribeOutcome is the result of /notify_off
type UnsubscribeOutcome int

const (
	UnsubscribeNoRecord UnsubscribeOutcome = iota
	UnsubscribeAlreadyOff
	UnsubscribeDisabled
)

// Delivery is the outcome of one broadcast send
type Delivery struct {
	ChatID int64
	Err    error
}

// BroadcastReport aggregates per recipient outcomes of one broadcast
type BroadcastReport struct {
	RunID      string
	LeadID     int64
	Deliveries []Delivery
}

// Delivered returns the number of successful sends
func (r *BroadcastReport) Delivered() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the failed deliveries
func (r *BroadcastReport) Failed() []Delivery {
	var failed []Delivery
	for _, d := range r.Deliveries {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}

// LeadCreatedEvent is published after a lead is stored
type LeadCreatedEvent struct {
	Type      string `json:"type"`
	LeadID    int64  `json:"lead_id"`
	Fio       string `json:"fio"`
	Phone     string `json:"phone"`
	District  string `json:"district"`
	Source    string `json:"source"`
	Quantity  int    `json:"quantity"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}
