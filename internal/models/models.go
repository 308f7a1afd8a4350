// Package models defines the core data types for the customer record system.
package models

import "strings"

// AccountWidth is the number of digits in a zero-padded account number.
const AccountWidth = 6

// Customer is a persisted customer record. AccountNumber is the storage key
// and never changes once assigned.
type Customer struct {
	AccountNumber string   `json:"account_number"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Notes         []string `json:"notes"`
}

// NewCustomer returns a record with an empty (non-nil) notes sequence.
func NewCustomer(accountNumber, name, email, phone string) *Customer {
	return &Customer{
		AccountNumber: accountNumber,
		Name:          name,
		Email:         email,
		Phone:         phone,
		Notes:         make([]string, 0),
	}
}

// AppendNote adds note as the last element of the notes sequence.
func (c *Customer) AppendNote(note string) {
	c.Notes = append(c.Notes, note)
}

// Email is a single plain-text message to one recipient.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Blank reports whether s is empty or whitespace-only.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
