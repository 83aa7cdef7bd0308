package models

import "time"

// ContactMessage is a message left through the contact page.
type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	IPAddress string    `db:"ip_address" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
