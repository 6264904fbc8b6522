package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

func remera() domain.Product {
	return domain.Product{ProductID: "P1", Name: "Remera Oversize", Price: 25000}
}

func buzo() domain.Product {
	return domain.Product{ProductID: "P2", Name: "Buzo Hoodie", Price: 55000}
}

func TestAddMergesBySameProductAndSize(t *testing.T) {
	c := New()
	c.Add(remera(), domain.SizeM)
	c.Add(remera(), domain.SizeM)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

// Two sizes of the same product stay separate lines; they never collapse.
func TestAddKeepsSizesApart(t *testing.T) {
	c := New()
	c.Add(remera(), domain.SizeM)
	c.Add(remera(), domain.SizeL)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, domain.SizeM, lines[0].Size)
	assert.Equal(t, domain.SizeL, lines[1].Size)
}

func TestAddQuantityIgnoresNonPositive(t *testing.T) {
	c := New()
	c.AddQuantity(remera(), domain.SizeM, 0)
	c.AddQuantity(remera(), domain.SizeM, -3)

	assert.True(t, c.Empty())
}

func TestRemoveDropsOnlyThatSize(t *testing.T) {
	c := New()
	c.Add(remera(), domain.SizeM)
	c.Add(remera(), domain.SizeL)
	c.Add(buzo(), domain.SizeM)

	c.Remove("P1", domain.SizeM)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, domain.SizeL, lines[0].Size)
	assert.Equal(t, "P2", lines[1].ProductID)
}

func TestRemoveLastLineEmptiesCart(t *testing.T) {
	c := New()
	c.Add(remera(), domain.SizeM)
	c.Remove("P1", domain.SizeM)

	assert.True(t, c.Empty())
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(remera(), domain.SizeM)
	c.Add(buzo(), domain.SizeS)

	c.Clear()

	assert.True(t, c.Empty())
	assert.Empty(t, c.Lines())
}

func TestTotalUsesSnapshotPrices(t *testing.T) {
	c := New()
	c.AddQuantity(remera(), domain.SizeM, 2)
	c.Add(buzo(), domain.SizeS)

	assert.Equal(t, 105000.0, c.Total())
}

func TestCheckoutItems(t *testing.T) {
	c := New()
	c.AddQuantity(remera(), domain.SizeM, 2)
	c.Add(buzo(), domain.SizeS)

	items := c.CheckoutItems()
	require.Len(t, items, 2)
	assert.Equal(t, domain.CartLine{
		ProductID: "P1",
		Name:      "Remera Oversize",
		Size:      domain.SizeM,
		Quantity:  2,
		UnitPrice: 25000,
	}, items[0])
}

// Lines returns a snapshot: mutating it does not touch the cart.
func TestLinesIsACopy(t *testing.T) {
	c := New()
	c.Add(remera(), domain.SizeM)

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, c.Lines()[0].Quantity)
}
