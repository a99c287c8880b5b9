package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Nickname  *string   `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}
