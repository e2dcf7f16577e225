package payment

type CreateIntentReq struct {
	RentalItemID int64 `json:"rental_item_id" validate:"required,gt=0"`
	Amount       int64 `json:"amount" validate:"required,gt=0"`
}

type ConfirmReq struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	RentalItemID    int64  `json:"rental_item_id" validate:"required,gt=0"`
}

type RefundReq struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type AutoRefundReq struct {
	UserID       int64 `json:"user_id" validate:"required,gt=0"`
	RentalItemID int64 `json:"rental_item_id" validate:"required,gt=0"`
}
