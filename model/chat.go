// model/chat.go
package model

import "time"

type MessageType string

const (
	MessageText         MessageType = "TEXT"
	MessageSystem       MessageType = "SYSTEM"
	MessagePaymentEvent MessageType = "PAYMENT_EVENT"
)

// ChatRoom is a durable two-party channel scoped to one item transaction.
// Exactly one room exists per (unordered participant pair, rental item);
// buyer and seller roles are fixed when the room is created.
type ChatRoom struct {
	ID           int64     `json:"id"`
	RentalItemID int64     `json:"rental_item_id"`
	BuyerID      int64     `json:"buyer_id"`
	SellerID     int64     `json:"seller_id"`
	LastMessage  string    `json:"last_message"`
	CreatedAt    time.Time `json:"created_at"`
}

// Participants returns the unordered pair as a slice for API responses.
func (r *ChatRoom) Participants() []int64 {
	return []int64{r.BuyerID, r.SellerID}
}

// HasParticipant reports whether uid is one of the two parties.
func (r *ChatRoom) HasParticipant(uid int64) bool {
	return uid == r.BuyerID || uid == r.SellerID
}

// Other returns the counterparty of uid, or 0 if uid is not a participant.
func (r *ChatRoom) Other(uid int64) int64 {
	switch uid {
	case r.BuyerID:
		return r.SellerID
	case r.SellerID:
		return r.BuyerID
	}
	return 0
}

type Message struct {
	ID       int64       `json:"id"`
	RoomID   int64       `json:"room_id"`
	SenderID int64       `json:"sender_id"`
	Type     MessageType `json:"type"`
	Text     string      `json:"text"`
	Amount   *int64      `json:"amount,omitempty"`
	SentAt   time.Time   `json:"sent_at"`
	IsRead   bool        `json:"is_read"`
}
