package game

import "time"

// User is a registered player. Creation happens implicitly on first
// use of a user id; authentication lives outside this service.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
