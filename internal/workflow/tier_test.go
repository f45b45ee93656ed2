package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierCoveredBy(t *testing.T) {
	tests := []struct {
		requested Tier
		entitled  Tier
		want      bool
	}{
		{TierFree, TierFree, true},
		{TierFree, TierPremium, true},
		{TierBasic, TierBasic, true},
		{TierBasic, TierFree, false},
		{TierPremium, TierBasic, false},
		{TierPremium, TierPremium, true},
		{Tier("platinum"), TierPremium, false},
		{TierFree, Tier("unknown"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.requested.CoveredBy(tt.entitled),
			"requested=%s entitled=%s", tt.requested, tt.entitled)
	}
}

func TestTierValid(t *testing.T) {
	assert.True(t, TierFree.Valid())
	assert.True(t, TierBasic.Valid())
	assert.True(t, TierPremium.Valid())
	assert.False(t, Tier("gold").Valid())
	assert.False(t, Tier("").Valid())
}
