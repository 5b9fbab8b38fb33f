package domain

import (
	"errors"

	catalogdomain "ragreport/internal/catalog/domain"
)

// Aggregate construit la vue RAG d'un magasin à partir de ses détails de marque
//
// Le statut du magasin est le pire statut final de ses marques (jamais une moyenne).
// Un magasin sans détail retourne une *NoDataError: il n'a ni statut par défaut
// ni place dans les agrégats.
func Aggregate(store *catalogdomain.Store, details []BrandRAGDetail) (StoreRAGData, error) {
	if store == nil {
		return StoreRAGData{}, errors.New("aggregate: store metadata is required")
	}
	if len(details) == 0 {
		return StoreRAGData{}, &NoDataError{StoreID: store.ID()}
	}

	data := StoreRAGData{
		ID:              store.ID(),
		StoreName:       store.Name(),
		City:            store.City(),
		Address:         store.Address(),
		PartnerBrands:   store.PartnerBrandNames(),
		RAGStatus:       StatusGreen,
		BrandRAGDetails: append([]BrandRAGDetail{}, details...),
		TotalBrands:     len(details),
	}

	for _, d := range details {
		data.RAGStatus = Worst(data.RAGStatus, d.FinalStatus)

		switch d.FinalStatus {
		case StatusGreen:
			data.GreenBrands++
		case StatusAmber:
			data.AmberBrands++
		default:
			// Un statut inconnu est compté comme le plus grave
			data.RedBrands++
			data.RAGStatus = StatusRed
		}

		switch d.PerformanceChange {
		case TrendImproved:
			data.ImprovingBrands++
		case TrendDeclined:
			data.DecliningBrands++
		default:
			data.StableBrands++
		}
	}

	return data, nil
}
