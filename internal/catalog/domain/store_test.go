package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBrand(t *testing.T, id BrandID, name string, tier BrandTier) *Brand {
	t.Helper()
	b, err := NewBrand(id, name, tier)
	require.NoError(t, err)
	return b
}

func TestParseBrandTier(t *testing.T) {
	assert.Equal(t, BrandTierAPlus, ParseBrandTier("a+"))
	assert.Equal(t, BrandTierAPlus, ParseBrandTier(" A_PLUS "))
	assert.Equal(t, BrandTierB, ParseBrandTier("b"))
	assert.Equal(t, BrandTier("Z"), ParseBrandTier("z"))
	assert.False(t, BrandTier("Z").IsKnown())
	assert.True(t, BrandTierD.IsKnown())
}

func TestNewBrand_Validation(t *testing.T) {
	_, err := NewBrand(0, "Samsung", BrandTierA)
	assert.Error(t, err)

	_, err = NewBrand(1, "  ", BrandTierA)
	assert.Error(t, err)

	_, err = NewBrand(1, "Samsung", "")
	assert.Error(t, err)
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(0, "Store", "Paris", "", nil)
	assert.Error(t, err)

	_, err = NewStore(1, "", "Paris", "", nil)
	assert.Error(t, err)
}

func TestStore_PartnerBrands(t *testing.T) {
	samsung := mustBrand(t, 1, "Samsung", BrandTierAPlus)
	oppo := mustBrand(t, 2, "Oppo", BrandTierC)

	store, err := NewStore(10, "Downtown", "Lyon", "1 rue de la République", []*Brand{samsung, oppo})
	require.NoError(t, err)

	assert.Equal(t, []string{"Samsung", "Oppo"}, store.PartnerBrandNames())
	assert.True(t, store.HasPartnerBrand("samsung"))
	assert.False(t, store.HasPartnerBrand("Apple"))

	b, ok := store.PartnerBrand(2)
	require.True(t, ok)
	assert.Equal(t, BrandTierC, b.Tier())

	// La copie retournée ne modifie pas le magasin
	brands := store.PartnerBrands()
	brands[0] = oppo
	assert.Equal(t, "Samsung", store.PartnerBrands()[0].Name())
}
