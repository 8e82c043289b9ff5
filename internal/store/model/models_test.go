package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus(t *testing.T) {
	assert.Equal(t, "PENDING", OrderStatusPending.String())
	assert.Equal(t, "SETTLED", OrderStatusSettled.String())
	assert.Equal(t, "CANCELED", OrderStatusCanceled.String())
	assert.Equal(t, "UNKNOWN", OrderStatus(9).String())

	assert.False(t, OrderStatusPending.Terminal())
	assert.True(t, OrderStatusSettled.Terminal())
	assert.True(t, OrderStatusCanceled.Terminal())
}
