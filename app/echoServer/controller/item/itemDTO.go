package item

type CreateItemReq struct {
	Name          string `json:"name" validate:"required"`
	Category      string `json:"category" validate:"required"`
	DepositAmount int64  `json:"deposit_amount" validate:"gte=0"`
}
