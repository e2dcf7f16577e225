// model/item.go
package model

import "time"

type Item struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	DepositAmount int64     `json:"deposit_amount"`
	CreatedAt     time.Time `json:"created_at"`
}
