package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "ragreport/internal/catalog/domain"
)

func TestNoEscalation_KeepsBaseStatus(t *testing.T) {
	d := detail(StatusAmber, TrendDeclined)
	assert.Equal(t, StatusAmber, NoEscalation{}.FinalStatus(d))
}

func TestDecliningEscalation(t *testing.T) {
	tests := []struct {
		name   string
		policy DecliningEscalation
		in     BrandRAGDetail
		want   Status
	}{
		{"amber declining to red", DecliningEscalation{}, detail(StatusAmber, TrendDeclined), StatusRed},
		{"amber stable unchanged", DecliningEscalation{}, detail(StatusAmber, TrendStable), StatusAmber},
		{"green declining unchanged by default", DecliningEscalation{}, detail(StatusGreen, TrendDeclined), StatusGreen},
		{"green declining to amber", DecliningEscalation{EscalateGreen: true}, detail(StatusGreen, TrendDeclined), StatusAmber},
		{"red stays red", DecliningEscalation{EscalateGreen: true}, detail(StatusRed, TrendDeclined), StatusRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.FinalStatus(tt.in))
		})
	}
}

func TestApplyPolicy_DoesNotMutateInput(t *testing.T) {
	in := []BrandRAGDetail{detail(StatusAmber, TrendDeclined), detail(StatusGreen, TrendImproved)}

	out := ApplyPolicy(in, DecliningEscalation{})

	assert.Equal(t, StatusRed, out[0].FinalStatus)
	assert.Equal(t, StatusAmber, out[0].BaseStatus)
	assert.Equal(t, StatusAmber, in[0].FinalStatus)
	assert.Equal(t, StatusGreen, out[1].FinalStatus)

	// nil → politique par défaut
	same := ApplyPolicy(in, nil)
	assert.Equal(t, in, same)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, "none", p.Name())

	p, err = ParsePolicy("Declining")
	require.NoError(t, err)
	assert.Equal(t, "declining", p.Name())

	p, err = ParsePolicy("declining-all")
	require.NoError(t, err)
	assert.Equal(t, "declining-all", p.Name())

	_, err = ParsePolicy("panic")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestCriteria_Validate(t *testing.T) {
	assert.NoError(t, DefaultCriteria().Validate())

	bad := Criteria{catalogdomain.BrandTierA: {Green: 30, Amber: 40}}
	assert.ErrorIs(t, bad.Validate(), ErrConfiguration)

	outOfRange := Criteria{catalogdomain.BrandTierA: {Green: 120, Amber: 40}}
	assert.ErrorIs(t, outOfRange.Validate(), ErrConfiguration)

	assert.ErrorIs(t, Criteria{}.Validate(), ErrConfiguration)
}

func TestCriteria_ForAndClone(t *testing.T) {
	c := DefaultCriteria()

	th, err := c.For(catalogdomain.BrandTierA)
	require.NoError(t, err)
	assert.Equal(t, Thresholds{Green: 60, Amber: 40}, th)

	_, err = c.For("Z")
	assert.ErrorIs(t, err, ErrConfiguration)

	clone := c.Clone()
	clone[catalogdomain.BrandTierA] = Thresholds{Green: 1, Amber: 0}
	assert.Equal(t, 60.0, c[catalogdomain.BrandTierA].Green)
}
