package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	item, err := NewItem("  Mouse ", 15000, 5)
	require.NoError(t, err)
	require.Equal(t, "Mouse", item.Name)

	_, err = NewItem("", 1, 1)
	require.ErrorIs(t, err, ErrEmptyName)
	_, err = NewItem("Mouse", -1, 1)
	require.ErrorIs(t, err, ErrNegativePrice)
	_, err = NewItem("Mouse", 1, -1)
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestReprice_Bounded(t *testing.T) {
	item, err := NewItem("Mouse", MaxPrice, 1)
	require.NoError(t, err)
	require.ErrorIs(t, item.Reprice(MaxPrice+1), ErrPriceTooHigh)
	require.Equal(t, MaxPrice, item.Price)

	_, err = NewItem("Yacht", math.MaxInt64/2+1, 1)
	require.ErrorIs(t, err, ErrPriceTooHigh)
}

func TestAdjust_NeverNegative(t *testing.T) {
	item, err := NewItem("Mouse", 15000, 5)
	require.NoError(t, err)

	require.NoError(t, item.Adjust(-5))
	require.Equal(t, int32(0), item.Amount)
	require.ErrorIs(t, item.Adjust(-1), ErrInsufficientAmount)
	require.Equal(t, int32(0), item.Amount)
	require.NoError(t, item.Adjust(3))
	require.Equal(t, int32(3), item.Amount)
}

func TestAdjust_Overflow(t *testing.T) {
	item, err := NewItem("Mouse", 1, math.MaxInt32)
	require.NoError(t, err)
	require.ErrorIs(t, item.Adjust(1), ErrAmountOverflow)
	require.Equal(t, int32(math.MaxInt32), item.Amount)
}

func TestCategory_SelfParent(t *testing.T) {
	parent := int64(3)
	c, err := NewCategory("Mice", &parent)
	require.NoError(t, err)
	require.True(t, c.IsSubcategory())
	c.ID = 3
	require.ErrorIs(t, c.Validate(), ErrSelfParent)
}
