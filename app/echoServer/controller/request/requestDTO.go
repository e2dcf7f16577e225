package request

type SubmitRequestReq struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

type DecideReq struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
}
