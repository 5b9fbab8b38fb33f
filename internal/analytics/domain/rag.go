package domain

import (
	catalogdomain "ragreport/internal/catalog/domain"
)

// Status représente un statut RAG (Red / Amber / Green)
type Status string

const (
	StatusGreen Status = "green"
	StatusAmber Status = "amber"
	StatusRed   Status = "red"
)

// severity ordonne les statuts du moins grave au plus grave
func (s Status) severity() int {
	switch s {
	case StatusGreen:
		return 0
	case StatusAmber:
		return 1
	case StatusRed:
		return 2
	}
	return -1
}

// IsValid vérifie si le statut fait partie de l'énumération
func (s Status) IsValid() bool {
	return s.severity() >= 0
}

// Worst retourne le statut le plus grave des deux
func Worst(a, b Status) Status {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// Trend représente l'évolution de l'attach rate par rapport au mois précédent
type Trend string

const (
	TrendImproved Trend = "improved"
	TrendDeclined Trend = "declined"
	TrendStable   Trend = "stable"
)

// BrandRAGDetail est le résultat de classification d'une marque dans un magasin
// Dérivé, jamais persisté
type BrandRAGDetail struct {
	BrandID            catalogdomain.BrandID   `json:"brandId"`
	BrandTier          catalogdomain.BrandTier `json:"brandTier"`
	BrandName          string                  `json:"brandName"`
	CurrentAttachRate  float64                 `json:"currentAttachRate"`
	PreviousAttachRate float64                 `json:"previousAttachRate"`
	BaseStatus         Status                  `json:"baseStatus"`
	FinalStatus        Status                  `json:"finalStatus"`
	PerformanceChange  Trend                   `json:"performanceChange"`
}

// WithBrandName retourne une copie du détail avec le nom de la marque
func (d BrandRAGDetail) WithBrandName(name string) BrandRAGDetail {
	d.BrandName = name
	return d
}

// StoreRAGData est la vue RAG complète d'un magasin
type StoreRAGData struct {
	ID              catalogdomain.StoreID `json:"id"`
	StoreName       string                `json:"storeName"`
	City            string                `json:"city"`
	Address         string                `json:"address"`
	PartnerBrands   []string              `json:"partnerBrands"`
	RAGStatus       Status                `json:"ragStatus"`
	BrandRAGDetails []BrandRAGDetail      `json:"brandRAGDetails"`
	TotalBrands     int                   `json:"totalBrands"`
	GreenBrands     int                   `json:"greenBrands"`
	AmberBrands     int                   `json:"amberBrands"`
	RedBrands       int                   `json:"redBrands"`
	ImprovingBrands int                   `json:"improvingBrands"`
	DecliningBrands int                   `json:"decliningBrands"`
	StableBrands    int                   `json:"stableBrands"`
}

// Trend retourne la tendance dominante du magasin pour le résumé flotte
// Égalité entre hausses et baisses → stable
func (s StoreRAGData) Trend() Trend {
	switch {
	case s.ImprovingBrands > s.DecliningBrands:
		return TrendImproved
	case s.DecliningBrands > s.ImprovingBrands:
		return TrendDeclined
	default:
		return TrendStable
	}
}

// StoreRAGSummary est la vue condensée d'un magasin (sans le détail par marque)
type StoreRAGSummary struct {
	StoreName   string `json:"storeName"`
	City        string `json:"city"`
	RAGStatus   Status `json:"ragStatus"`
	Trend       Trend  `json:"trend"`
	TotalBrands int    `json:"totalBrands"`
	GreenBrands int    `json:"greenBrands"`
	AmberBrands int    `json:"amberBrands"`
	RedBrands   int    `json:"redBrands"`
}

// Condense construit la vue condensée d'un magasin
func Condense(s StoreRAGData) StoreRAGSummary {
	return StoreRAGSummary{
		StoreName:   s.StoreName,
		City:        s.City,
		RAGStatus:   s.RAGStatus,
		Trend:       s.Trend(),
		TotalBrands: s.TotalBrands,
		GreenBrands: s.GreenBrands,
		AmberBrands: s.AmberBrands,
		RedBrands:   s.RedBrands,
	}
}

// RAGSummary agrège les magasins de la flotte par statut et par tendance
type RAGSummary struct {
	Total    int `json:"total"`
	Green    int `json:"green"`
	Amber    int `json:"amber"`
	Red      int `json:"red"`
	Improved int `json:"improved"`
	Declined int `json:"declined"`
	Stable   int `json:"stable"`
}
