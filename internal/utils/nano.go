package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	nanoidSize     = 32
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NanoID returns a 32-character alphanumeric id, used for user and
// beneficiary primary keys.
func NanoID() string {
	return gonanoid.MustGenerate(nanoidAlphabet, nanoidSize)
}
