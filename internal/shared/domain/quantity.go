package domain

import (
	"errors"
	"fmt"
)

// ErrNegativeQuantity est retournée quand un nombre de ventes est négatif
var ErrNegativeQuantity = errors.New("quantity cannot be negative")

// Quantity représente un nombre d'unités vendues sur un mois (appareils ou forfaits)
type Quantity struct {
	value int
}

// NewQuantity refuse les valeurs négatives
func NewQuantity(value int) (Quantity, error) {
	if value < 0 {
		return Quantity{}, ErrNegativeQuantity
	}
	return Quantity{value: value}, nil
}

// MustNewQuantity pour les tests et les constantes
func MustNewQuantity(value int) Quantity {
	q, err := NewQuantity(value)
	if err != nil {
		panic(fmt.Sprintf("invalid quantity: %v", err))
	}
	return q
}

func (q Quantity) Value() int {
	return q.value
}

func (q Quantity) IsZero() bool {
	return q.value == 0
}

// Ratio retourne q / total en pourcentage, 0 si total est nul
func (q Quantity) Ratio(total Quantity) float64 {
	if total.IsZero() {
		return 0
	}
	return float64(q.value) / float64(total.value) * 100
}
