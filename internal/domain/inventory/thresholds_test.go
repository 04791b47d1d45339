package inventory_test

import (
	"testing"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
)

func TestFillPercentage(t *testing.T) {
	assert.Equal(t, "50", inventory.FillPercentage(10, 20).String())
	assert.Equal(t, "33.33", inventory.FillPercentage(1, 3).String())
	assert.Equal(t, "66.67", inventory.FillPercentage(2, 3).String())
	assert.Equal(t, "150", inventory.FillPercentage(30, 20).String())
	assert.True(t, inventory.FillPercentage(5, 0).IsZero())
}

func TestSuggestedOrder(t *testing.T) {
	assert.Equal(t, 19, inventory.SuggestedOrder(1, 20))
	assert.Equal(t, 0, inventory.SuggestedOrder(20, 20))
	assert.Equal(t, 0, inventory.SuggestedOrder(25, 20))
}
