// Package ticketcode produces the QR payload stored on each ticket.
package ticketcode

import (
	"crypto/subtle"
	"encoding/base64"
)

type Encoder interface {
	Encode(ticketID string) (string, error)
	Verify(ticketID, payload string) bool
}

// Base64 encodes the ticket id itself. It identifies a ticket but proves nothing.
type Base64 struct{}

func (Base64) Encode(ticketID string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(ticketID)), nil
}

func (Base64) Verify(ticketID, payload string) bool {
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(decoded, []byte(ticketID)) == 1
}

var _ Encoder = Base64{}
