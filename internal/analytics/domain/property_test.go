package domain

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	catalogdomain "ragreport/internal/catalog/domain"
	salesdomain "ragreport/internal/sales/domain"
)

func newProperties(minSuccessful int) *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = minSuccessful
	return gopter.NewProperties(parameters)
}

// TestStatusBoundaries vérifie la classification pour tout tier et tout taux
// Property: r >= green ⇒ green; amber <= r < green ⇒ amber; r < amber ⇒ red
func TestStatusBoundaries(t *testing.T) {
	criteria := DefaultCriteria()
	tiers := catalogdomain.AllBrandTiers()
	properties := newProperties(500)

	properties.Property("base status respects tier thresholds", prop.ForAll(
		func(tierIdx int, rate float64) bool {
			th := criteria[tiers[tierIdx]]
			got := statusFor(rate, th)
			switch {
			case rate >= th.Green:
				return got == StatusGreen
			case rate >= th.Amber:
				return got == StatusAmber
			default:
				return got == StatusRed
			}
		},
		gen.IntRange(0, len(tiers)-1),
		gen.Float64Range(0, 100),
	))

	properties.Property("exact threshold edges are inclusive", prop.ForAll(
		func(tierIdx int) bool {
			th := criteria[tiers[tierIdx]]
			return statusFor(th.Green, th) == StatusGreen && statusFor(th.Amber, th) == StatusAmber
		},
		gen.IntRange(0, len(tiers)-1),
	))

	properties.TestingRun(t)
}

// TestClassifyFromSales vérifie la même propriété à travers Classify
func TestClassifyFromSales(t *testing.T) {
	criteria := DefaultCriteria()
	tiers := catalogdomain.AllBrandTiers()
	properties := newProperties(300)

	properties.Property("classify agrees with thresholds on computed attach rate", prop.ForAll(
		func(tierIdx, devices, planShare int) bool {
			tier := tiers[tierIdx]
			plans := devices * planShare / 100
			s, err := salesdomain.NewAttachRateSample(
				salesdomain.SampleKey{StoreID: 1, BrandID: 1, Period: testPeriod},
				tier, devices, plans,
			)
			if err != nil {
				return false
			}
			d, err := Classify(s, nil, criteria)
			if err != nil {
				return false
			}
			return d.BaseStatus == statusFor(s.AttachPct(), criteria[tier]) &&
				d.FinalStatus == d.BaseStatus &&
				d.PerformanceChange == TrendStable
		},
		gen.IntRange(0, len(tiers)-1),
		gen.IntRange(1, 5000),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// TestClassifyIdempotent vérifie que Classify est une fonction pure
// Property: Classify(x) == Classify(x)
func TestClassifyIdempotent(t *testing.T) {
	criteria := DefaultCriteria()
	tiers := catalogdomain.AllBrandTiers()
	properties := newProperties(200)

	properties.Property("classify is deterministic", prop.ForAll(
		func(tierIdx, devices, plans, prevDevices, prevPlans int) bool {
			if plans > devices {
				plans = devices
			}
			if prevPlans > prevDevices {
				prevPlans = prevDevices
			}
			tier := tiers[tierIdx]
			cur, err := salesdomain.NewAttachRateSample(
				salesdomain.SampleKey{StoreID: 3, BrandID: 7, Period: testPeriod}, tier, devices, plans)
			if err != nil {
				return false
			}
			prev, err := salesdomain.NewAttachRateSample(
				salesdomain.SampleKey{StoreID: 3, BrandID: 7, Period: testPrevPeriod}, tier, prevDevices, prevPlans)
			if err != nil {
				return false
			}

			d1, err1 := Classify(cur, prev, criteria)
			d2, err2 := Classify(cur, prev, criteria)
			return err1 == nil && err2 == nil && reflect.DeepEqual(d1, d2)
		},
		gen.IntRange(0, len(tiers)-1),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

// TestAggregateInvariants vérifie les compteurs et la règle du pire statut
func TestAggregateInvariants(t *testing.T) {
	store := testStore(t)
	properties := newProperties(300)

	statuses := []Status{StatusGreen, StatusAmber, StatusRed}
	trends := []Trend{TrendImproved, TrendDeclined, TrendStable}

	properties.Property("green+amber+red == total == len(details), worst-of status", prop.ForAll(
		func(statusIdx []int, trendIdx []int) bool {
			if len(statusIdx) == 0 {
				_, err := Aggregate(store, nil)
				return err != nil
			}
			details := make([]BrandRAGDetail, len(statusIdx))
			worst := StatusGreen
			for i, si := range statusIdx {
				tr := TrendStable
				if i < len(trendIdx) {
					tr = trends[trendIdx[i]]
				}
				details[i] = BrandRAGDetail{BaseStatus: statuses[si], FinalStatus: statuses[si], PerformanceChange: tr}
				worst = Worst(worst, statuses[si])
			}

			data, err := Aggregate(store, details)
			if err != nil {
				return false
			}
			return data.GreenBrands+data.AmberBrands+data.RedBrands == data.TotalBrands &&
				data.TotalBrands == len(data.BrandRAGDetails) &&
				data.ImprovingBrands+data.DecliningBrands+data.StableBrands == data.TotalBrands &&
				data.RAGStatus == worst
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}

// TestSummarizeConservation vérifie green + amber + red == total == len(stores)
func TestSummarizeConservation(t *testing.T) {
	properties := newProperties(300)
	statuses := []Status{StatusGreen, StatusAmber, StatusRed}

	properties.Property("summary buckets sum to total", prop.ForAll(
		func(statusIdx []int, improving []int) bool {
			stores := make([]StoreRAGData, len(statusIdx))
			for i, si := range statusIdx {
				stores[i] = StoreRAGData{RAGStatus: statuses[si], TotalBrands: 1}
				if i < len(improving) {
					stores[i].ImprovingBrands = improving[i]
				}
			}
			s := Summarize(stores)
			return s.Total == len(stores) &&
				s.Green+s.Amber+s.Red == s.Total &&
				s.Improved+s.Declined+s.Stable == s.Total
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
