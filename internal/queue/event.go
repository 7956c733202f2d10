// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published whenever a desk booking is created,
// whether booked manually or materialised from a template.  It carries
// enough context for downstream consumers to log or notify without
// reading the primary documents.
type BookingCreatedEvent struct {
	BookingKey  string `json:"booking_key"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	Room        string `json:"room"`
	DeskNum     int    `json:"desk_num"`
	DeskName    string `json:"desk_name"`
	BookingType string `json:"booking_type"`
	CreatedVia  string `json:"created_via"`
	CreatedAt   string `json:"created_at"`
}
