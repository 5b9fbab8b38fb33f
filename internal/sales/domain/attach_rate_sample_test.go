package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "ragreport/internal/catalog/domain"
	"ragreport/internal/shared/domain"
)

func testKey() SampleKey {
	return SampleKey{StoreID: 1, BrandID: 2, Period: domain.MustNewPeriod(3, 2024)}
}

func TestNewAttachRateSample_ComputesAttachRate(t *testing.T) {
	s, err := NewAttachRateSample(testKey(), catalogdomain.BrandTierA, 200, 50)
	require.NoError(t, err)

	assert.InDelta(t, 25.0, s.AttachPct(), 1e-9)
	assert.Equal(t, 200, s.DeviceSales().Value())
	assert.Equal(t, 50, s.PlanSales().Value())
	assert.True(t, s.HasDeviceSales())
	assert.Equal(t, catalogdomain.StoreID(1), s.StoreID())
	assert.Equal(t, catalogdomain.BrandID(2), s.BrandID())
	assert.Equal(t, "2024-03", s.Period().String())
}

func TestNewAttachRateSample_ZeroDeviceSales(t *testing.T) {
	s, err := NewAttachRateSample(testKey(), catalogdomain.BrandTierA, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 0.0, s.AttachPct())
	assert.False(t, s.HasDeviceSales())
}

func TestNewAttachRateSample_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		key     SampleKey
		devices int
		plans   int
	}{
		{"negative device sales", testKey(), -1, 0},
		{"negative plan sales", testKey(), 10, -3},
		{"attach rate above 100", testKey(), 10, 11},
		{"plans without devices", testKey(), 0, 4},
		{"missing store", SampleKey{BrandID: 2, Period: domain.MustNewPeriod(3, 2024)}, 10, 1},
		{"missing brand", SampleKey{StoreID: 1, Period: domain.MustNewPeriod(3, 2024)}, 10, 1},
		{"missing period", SampleKey{StoreID: 1, BrandID: 2}, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewAttachRateSample(tt.key, catalogdomain.BrandTierA, tt.devices, tt.plans)
			assert.Nil(t, s)
			require.Error(t, err)

			assert.True(t, errors.Is(err, ErrDataIntegrity))
			var integrityErr *DataIntegrityError
			require.True(t, errors.As(err, &integrityErr))
			assert.Equal(t, tt.key, integrityErr.Key)
		})
	}
}

func TestNewAttachRateSample_FullAttach(t *testing.T) {
	s, err := NewAttachRateSample(testKey(), catalogdomain.BrandTierD, 7, 7)
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.AttachPct())
}

func TestValidateAttachRate(t *testing.T) {
	assert.NoError(t, ValidateAttachRate(0))
	assert.NoError(t, ValidateAttachRate(100))
	assert.Error(t, ValidateAttachRate(-0.01))
	assert.Error(t, ValidateAttachRate(100.01))
	assert.Error(t, ValidateAttachRate(math.NaN()))
	assert.Error(t, ValidateAttachRate(math.Inf(1)))
}
