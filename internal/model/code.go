package model

import (
	"crypto/rand"
	"encoding/hex"
)

// TicketCodeBytes is the number of random bytes behind a ticket code.
// The hex encoding doubles it, producing 16-character codes.
const TicketCodeBytes = 8

// MaxCodeAttempts bounds the collision retry loop of the ticket code
// generator. Codes are the sole external lookup key for gate
// validation, so generation must terminate rather than loop forever on
// a pathological source.
const MaxCodeAttempts = 5

// CodeSource produces random opaque strings for ticket codes. It is
// injected into the sales engine so tests can substitute a
// deterministic source.
type CodeSource interface {
	NewCode() (string, error)
}

// RandomCodeSource is the production CodeSource backed by crypto/rand.
type RandomCodeSource struct{}

// NewCode returns a hex-encoded random code of TicketCodeBytes bytes.
func (RandomCodeSource) NewCode() (string, error) {
	b := make([]byte, TicketCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
