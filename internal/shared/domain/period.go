package domain

import (
	"errors"
	"fmt"
	"time"
)

// Period représente un mois de reporting (mois + année)
// DESIGN PATTERN: Value Object (DDD)
//   - Immutable: pas de setters, valeurs fixées à la création
//   - Validation dans le constructeur (NewPeriod)
//   - Égalité basée sur les valeurs: deux Period identiques sont comparables avec ==
type Period struct {
	month int
	year  int
}

const (
	minYear = 2000
	maxYear = 2100
)

// NewPeriod crée une période validée
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid month %d: must be between 1 and 12", month)
	}
	if year < minYear || year > maxYear {
		return Period{}, fmt.Errorf("invalid year %d: must be between %d and %d", year, minYear, maxYear)
	}
	return Period{month: month, year: year}, nil
}

// MustNewPeriod crée une Period en paniquant si invalide
func MustNewPeriod(month, year int) Period {
	p, err := NewPeriod(month, year)
	if err != nil {
		panic(fmt.Sprintf("invalid period: %v", err))
	}
	return p
}

// CurrentPeriod retourne la période contenant t
func CurrentPeriod(t time.Time) Period {
	return Period{month: int(t.Month()), year: t.Year()}
}

// ParsePeriod lit une période au format YYYY-MM
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, errors.New("period must use the YYYY-MM format")
	}
	return NewPeriod(int(t.Month()), t.Year())
}

// Month retourne le mois (1-12)
func (p Period) Month() int {
	return p.month
}

// Year retourne l'année
func (p Period) Year() int {
	return p.year
}

// IsZero vérifie si la période n'a pas été initialisée
func (p Period) IsZero() bool {
	return p.month == 0 && p.year == 0
}

// Previous retourne le mois précédent (janvier → décembre de l'année précédente)
func (p Period) Previous() Period {
	if p.month == 1 {
		return Period{month: 12, year: p.year - 1}
	}
	return Period{month: p.month - 1, year: p.year}
}

// Next retourne le mois suivant
func (p Period) Next() Period {
	if p.month == 12 {
		return Period{month: 1, year: p.year + 1}
	}
	return Period{month: p.month + 1, year: p.year}
}

// Before vérifie si p est strictement antérieure à other
func (p Period) Before(other Period) bool {
	if p.year != other.year {
		return p.year < other.year
	}
	return p.month < other.month
}

// String retourne la période au format YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.year, p.month)
}
