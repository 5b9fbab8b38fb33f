package application

import (
	"errors"
	"fmt"
	"time"

	"ragreport/internal/analytics/domain"
	catalogdomain "ragreport/internal/catalog/domain"
	shareddomain "ragreport/internal/shared/domain"
)

// ErrInvalidQuery requête de rapport mal formée
var ErrInvalidQuery = errors.New("invalid report query")

// ReportQuery paramètres d'un rapport RAG
// Period zéro = mois courant
type ReportQuery struct {
	Period shareddomain.Period
	City   string
	Brand  string
	Status domain.Status
}

// Validate vérifie les filtres de la requête
func (q ReportQuery) Validate() error {
	if q.Status != "" && !q.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, q.Status)
	}
	return nil
}

// StoreFilter retourne le filtre catalogue (ville, marque partenaire)
func (q ReportQuery) StoreFilter() catalogdomain.StoreFilter {
	return catalogdomain.StoreFilter{City: q.City, Brand: q.Brand}
}

// FiltersApplied filtres renvoyés au client pour affichage
type FiltersApplied struct {
	City   string        `json:"city,omitempty"`
	Brand  string        `json:"brand,omitempty"`
	Status domain.Status `json:"status,omitempty"`
}

// RejectedSample échantillon exclu pour incohérence
type RejectedSample struct {
	StoreID catalogdomain.StoreID `json:"storeId"`
	BrandID catalogdomain.BrandID `json:"brandId"`
	Period  string                `json:"period"`
	Reason  string                `json:"reason"`
}

// ReportMetadata contexte du calcul
type ReportMetadata struct {
	CurrentMonth     int                     `json:"currentMonth"`
	PreviousMonth    int                     `json:"previousMonth"`
	Year             int                     `json:"year"`
	PreviousYear     int                     `json:"previousYear"`
	Criteria         domain.Criteria         `json:"criteria"`
	FiltersApplied   FiltersApplied          `json:"filtersApplied"`
	Policy           string                  `json:"policy"`
	GeneratedAt      time.Time               `json:"generatedAt"`
	RejectedSamples  []RejectedSample        `json:"rejectedSamples"`
	InsufficientData []catalogdomain.StoreID `json:"insufficientData"`
}

// Period retourne le mois du rapport
func (m ReportMetadata) Period() shareddomain.Period {
	p, _ := shareddomain.NewPeriod(m.CurrentMonth, m.Year)
	return p
}

// RAGStatusResponse rapport complet: chaque magasin avec le détail par marque
type RAGStatusResponse struct {
	Stores   []domain.StoreRAGData `json:"stores"`
	Summary  domain.RAGSummary     `json:"summary"`
	Metadata ReportMetadata        `json:"metadata"`
}

// RAGSummaryResponse rapport condensé, sans le détail par marque
type RAGSummaryResponse struct {
	RAGSummary map[catalogdomain.StoreID]domain.StoreRAGSummary `json:"ragSummary"`
	Summary    domain.RAGSummary                                `json:"summary"`
	Metadata   ReportMetadata                                   `json:"metadata"`
}
