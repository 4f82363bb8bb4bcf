package crypto

import (
	"crypto/rand"

	"github.com/turtacn/oralrisk/pkg/errors"
)

// RandomBytes returns n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.ErrInternalServer.WithMessage("entropy source failed").WithCause(err)
	}
	return b, nil
}
