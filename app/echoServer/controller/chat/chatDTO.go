package chat

type StartChatReq struct {
	OtherUserID  int64 `json:"other_user_id" validate:"required,gt=0"`
	RentalItemID int64 `json:"rental_item_id" validate:"required,gt=0"`
}

type SendMessageReq struct {
	Text string `json:"text" validate:"required"`
}

type AddParticipantsReq struct {
	RoomID       int64   `json:"room_id" validate:"required,gt=0"`
	Participants []int64 `json:"participants" validate:"required,min=1"`
}
