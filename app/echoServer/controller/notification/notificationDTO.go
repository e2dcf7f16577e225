package notification

type RegisterTokenReq struct {
	Token string `json:"token" validate:"required"`
}

type SendReq struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Title  string `json:"title" validate:"required"`
	Body   string `json:"body" validate:"required"`
}
