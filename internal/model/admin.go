package model

// Admin is a console operator account.
type Admin struct {
	ID           int    `json:"admin_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
}
