package striperepo

// Repo is the deposit-side contract with the hosted payment processor. This
// system never stores card data; it only keeps the processor-issued intent and
// refund identifiers and their statuses.

type CreateIntentReq struct {
	Amount       int64
	Currency     string
	UserID       int64
	RentalItemID int64
}

type CreateIntentResp struct {
	IntentID     string
	ClientSecret string
}

type IntentStatus struct {
	IntentID string
	Status   string
}

type RefundResp struct {
	RefundID string
}

type Repo interface {
	CreateIntent(req CreateIntentReq) (*CreateIntentResp, error)
	RetrieveIntent(intentID string) (*IntentStatus, error)
	CreateRefund(intentID string) (*RefundResp, error)
}
