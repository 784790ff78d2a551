package teacher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTier(t *testing.T) {
	for _, tier := range AllTiers() {
		parsed, ok := ParseTier(string(tier))
		assert.True(t, ok)
		assert.Equal(t, tier, parsed)
	}

	for _, raw := range []string{"", "oliy ", "3", "OLIY"} {
		_, ok := ParseTier(raw)
		assert.False(t, ok, "raw %q must not parse", raw)
	}
}

func TestTierLabels(t *testing.T) {
	assert.Equal(t, "Oliy", TierTop.Label())
	assert.Equal(t, "1-toifa", TierFirst.Label())
	assert.Equal(t, "2-toifa", TierSecond.Label())
	assert.Equal(t, "Mutaxassis", TierSpecialist.Label())
	assert.Equal(t, "Yo'q", TierNone.Label())
}

func TestRequiresDocument(t *testing.T) {
	assert.False(t, TierNone.RequiresDocument())
	for _, tier := range []Tier{TierTop, TierFirst, TierSecond, TierSpecialist} {
		assert.True(t, tier.RequiresDocument(), "tier %q needs a document", tier)
	}
}
