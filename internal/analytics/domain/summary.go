package domain

// Summarize compte les magasins de la flotte par statut et par tendance dominante
// Invariant: Green + Amber + Red == Total == len(stores)
func Summarize(stores []StoreRAGData) RAGSummary {
	summary := RAGSummary{Total: len(stores)}

	for _, s := range stores {
		switch s.RAGStatus {
		case StatusGreen:
			summary.Green++
		case StatusAmber:
			summary.Amber++
		default:
			summary.Red++
		}

		switch s.Trend() {
		case TrendImproved:
			summary.Improved++
		case TrendDeclined:
			summary.Declined++
		default:
			summary.Stable++
		}
	}

	return summary
}
