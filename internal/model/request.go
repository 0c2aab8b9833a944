package model

import "time"

// RequestStatus is the lifecycle state of a payment request.
// A request starts pending and transitions to approved or rejected
// exactly once; there is no way back.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

type PaymentRequest struct {
	ID                string         `json:"id"`
	StoreID           int64          `json:"store_id"`
	VendorID          *int64         `json:"vendor_id,omitempty"`
	RequesterName     string         `json:"requester_name"`
	Amount            int64          `json:"amount"`
	Category          string         `json:"category"`
	Description       string         `json:"description"`
	Status            RequestStatus  `json:"status"`
	OriginChannelID   string         `json:"origin_channel_id"`
	OriginMessageTS   *string        `json:"origin_message_ts,omitempty"`
	ApprovalMessageTS *string        `json:"approval_message_ts,omitempty"`
	ProcessedBy       *string        `json:"processed_by,omitempty"`
	ProcessedAt       *time.Time     `json:"processed_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// ParsedRequest is the parser's output before a request is persisted.
// VendorName is empty when the text named no vendor.
type ParsedRequest struct {
	Amount      int64
	Category    string
	Description string
	VendorName  string
}

// Store is a physical location mapped one-to-one to a chat channel.
type Store struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ChannelID string `json:"channel_id"`
}

type Vendor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
