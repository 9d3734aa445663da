package model

import "time"

// TicketStatus tracks the handling state of a support ticket.
type TicketStatus string

const (
    TicketOpen       TicketStatus = "OPEN"
    TicketInProgress TicketStatus = "IN_PROGRESS"
    TicketResolved   TicketStatus = "RESOLVED"
    TicketClosed     TicketStatus = "CLOSED"
)

// TicketPriority orders tickets for support staff.  Expert-reported
// issues are filed HIGH; customer tickets default to MEDIUM.
type TicketPriority string

const (
    TicketLow    TicketPriority = "LOW"
    TicketMedium TicketPriority = "MEDIUM"
    TicketHigh   TicketPriority = "HIGH"
)

// Ticket is a support request, optionally tied to a booking.
type Ticket struct {
    ID          uint64         // tickets.id
    UserID      uint64         // tickets.user_id
    BookingID   *uint64        // tickets.booking_id (nullable)
    Subject     string         // tickets.subject
    Description string         // tickets.description
    Status      TicketStatus   // tickets.status
    Priority    TicketPriority // tickets.priority
    CreatedAt   time.Time      // tickets.created_at
    UpdatedAt   time.Time      // tickets.updated_at
}
