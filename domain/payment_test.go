package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	p, err := NewPayment(1, decimal.RequireFromString("50.00"), decimal.RequireFromString("35.00"))
	require.NoError(t, err)

	assert.Equal(t, OrderID(1), p.OrderID())
	assert.Equal(t, "15", p.Change().String())
	assert.False(t, p.PaidOn().IsZero())

	_, err = NewPayment(1, decimal.RequireFromString("20"), decimal.RequireFromString("24"))
	assert.True(t, IsArgumentError(err))

	_, err = NewPayment(0, decimal.RequireFromString("20"), decimal.RequireFromString("20"))
	assert.True(t, IsArgumentError(err))
}
