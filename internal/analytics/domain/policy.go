package domain

import (
	"fmt"
	"strings"
)

// EscalationPolicy décide du statut final d'une marque à partir de son détail
// Couche optionnelle au-dessus du classifieur pur, qui lui n'escalade jamais.
type EscalationPolicy interface {
	Name() string
	FinalStatus(d BrandRAGDetail) Status
}

// NoEscalation est la politique par défaut: statut final = statut de base
type NoEscalation struct{}

// Name retourne le nom de la politique
func (NoEscalation) Name() string { return "none" }

// FinalStatus retourne le statut de base
func (NoEscalation) FinalStatus(d BrandRAGDetail) Status { return d.BaseStatus }

// DecliningEscalation aggrave d'un cran les marques en baisse
//   - amber + declined → red
//   - green + declined → amber, seulement si EscalateGreen
type DecliningEscalation struct {
	EscalateGreen bool
}

// Name retourne le nom de la politique
func (p DecliningEscalation) Name() string {
	if p.EscalateGreen {
		return "declining-all"
	}
	return "declining"
}

// FinalStatus applique l'escalade
func (p DecliningEscalation) FinalStatus(d BrandRAGDetail) Status {
	if d.PerformanceChange != TrendDeclined {
		return d.BaseStatus
	}
	switch d.BaseStatus {
	case StatusAmber:
		return StatusRed
	case StatusGreen:
		if p.EscalateGreen {
			return StatusAmber
		}
	}
	return d.BaseStatus
}

// ParsePolicy retourne la politique correspondant à son nom de configuration
func ParsePolicy(name string) (EscalationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoEscalation{}, nil
	case "declining":
		return DecliningEscalation{}, nil
	case "declining-all":
		return DecliningEscalation{EscalateGreen: true}, nil
	}
	return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown escalation policy %q", name)}
}

// ApplyPolicy retourne une copie des détails avec le statut final de la politique
// Les détails d'origine ne sont jamais modifiés
func ApplyPolicy(details []BrandRAGDetail, policy EscalationPolicy) []BrandRAGDetail {
	if policy == nil {
		policy = NoEscalation{}
	}
	out := make([]BrandRAGDetail, len(details))
	for i, d := range details {
		d.FinalStatus = policy.FinalStatus(d)
		out[i] = d
	}
	return out
}
