package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	t.Run("creates active supplier", func(t *testing.T) {
		supplier, err := NewSupplier("Acme Corp", SupplierTypeIn)
		require.NoError(t, err)

		assert.Equal(t, "Acme Corp", supplier.Name)
		assert.Equal(t, SupplierTypeIn, supplier.SupplierType)
		assert.True(t, supplier.IsActive)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewSupplier("", SupplierTypeIn)
		require.Error(t, err)
	})

	t.Run("fails with invalid type", func(t *testing.T) {
		_, err := NewSupplier("Acme Corp", SupplierType("sideways"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Supplier type")
	})
}

func TestSupplierDeactivate(t *testing.T) {
	supplier, err := NewSupplier("Acme Corp", SupplierTypeOut)
	require.NoError(t, err)

	supplier.Deactivate()
	assert.False(t, supplier.IsActive)

	supplier.Activate()
	assert.True(t, supplier.IsActive)
}

func TestSupplierTypeIsValid(t *testing.T) {
	assert.True(t, SupplierTypeIn.IsValid())
	assert.True(t, SupplierTypeOut.IsValid())
	assert.False(t, SupplierType("").IsValid())
	assert.False(t, SupplierType("both").IsValid())
}
