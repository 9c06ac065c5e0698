package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
)

func TestShouldAlert_FiresAtOrBelowLowest90Days(t *testing.T) {
	item := &wishlist.Item{CurrentPrice: 50_000}
	assert.True(t, shouldAlert(item, 45_000, 45_000))
	assert.True(t, shouldAlert(item, 40_000, 45_000))
	assert.False(t, shouldAlert(item, 46_000, 45_000))
}

func TestShouldAlert_FiresAtOrBelowTargetPrice(t *testing.T) {
	target := int64(30_000)
	item := &wishlist.Item{CurrentPrice: 50_000, TargetPrice: &target}

	assert.True(t, shouldAlert(item, 30_000, 20_000))
	assert.False(t, shouldAlert(item, 35_000, 20_000))
}

func TestShouldAlert_NoTargetAndAboveLowestNeverFires(t *testing.T) {
	item := &wishlist.Item{CurrentPrice: 50_000}
	assert.False(t, shouldAlert(item, 48_000, 45_000))
}
