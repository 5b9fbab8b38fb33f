package domain

import (
	"errors"
	"fmt"
)

// ErrDataIntegrity est la sentinelle des échantillons malformés
var ErrDataIntegrity = errors.New("data integrity error")

// DataIntegrityError signale un échantillon rejeté (ventes négatives,
// taux hors de [0, 100]). L'échantillon est exclu de la classification.
type DataIntegrityError struct {
	Key    SampleKey
	Reason string
}

func newIntegrityError(key SampleKey, reason string) *DataIntegrityError {
	return &DataIntegrityError{Key: key, Reason: reason}
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s: %s", e.Key, e.Reason)
}

// Is permet errors.Is(err, ErrDataIntegrity)
func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}
