package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegistersAreIndependent(t *testing.T) {
	m := NewManager()

	_, err := m.Update("till-1", func(r *Register) error {
		r.Cart.AddItem("p1", "Pen", decimal.NewFromInt(2))
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, m.Snapshot("till-1").Cart.Lines, 1)
	assert.Empty(t, m.Snapshot("till-2").Cart.Lines)
	assert.Equal(t, []string{"till-1"}, m.IDs())
}

func TestManager_UnknownRegistersAreNotStored(t *testing.T) {
	m := NewManager()

	for i := 0; i < 3; i++ {
		snap := m.Snapshot(fmt.Sprintf("till-%d", i))
		assert.Empty(t, snap.Cart.Lines)
	}
	_, err := m.Update("till-9", func(r *Register) error {
		if !r.Cart.SetQuantity("missing", 2) {
			return errors.New("no such line")
		}
		return nil
	})
	require.Error(t, err)

	assert.Empty(t, m.IDs())
}

func TestManager_ClearedRegisterIsForgotten(t *testing.T) {
	m := NewManager()
	m.Update("till-1", func(r *Register) error {
		r.Cart.AddItem("p1", "Pen", decimal.NewFromInt(2))
		return nil
	})
	require.Len(t, m.IDs(), 1)

	snap, err := m.Update("till-1", func(r *Register) error {
		r.Cart.Clear()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "till-1", snap.ID)
	assert.Empty(t, m.IDs())

	m.Update("till-1", func(r *Register) error {
		r.Drawer.CashIn = decimal.NewFromInt(20)
		return nil
	})
	assert.Equal(t, []string{"till-1"}, m.IDs())
	assert.True(t, m.Snapshot("till-1").Drawer.Current().Equal(decimal.NewFromInt(20)))
}

func TestManager_SnapshotIsACopy(t *testing.T) {
	m := NewManager()
	m.Update("till-1", func(r *Register) error {
		r.Cart.AddItem("p1", "Pen", decimal.NewFromInt(2))
		return nil
	})

	snap := m.Snapshot("till-1")
	snap.Cart.Lines[0].Quantity = 40

	assert.Equal(t, 1, m.Snapshot("till-1").Cart.Lines[0].Quantity)
}

func TestManager_UpdateReturnsError(t *testing.T) {
	m := NewManager()
	boom := errors.New("boom")

	_, err := m.Update("till-1", func(r *Register) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestManager_ConcurrentUpdates(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Update("till-1", func(r *Register) error {
				r.Cart.AddItem("p1", "Pen", decimal.NewFromInt(2))
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, m.Snapshot("till-1").Cart.Lines[0].Quantity)
}

func TestDrawer_CurrentAndRoll(t *testing.T) {
	d := Drawer{
		StartAmount: decimal.NewFromInt(100),
		CashIn:      decimal.NewFromInt(20),
		CashOut:     decimal.NewFromInt(35),
		CashSales:   decimal.RequireFromString("41.75"),
	}

	assert.Equal(t, "126.75", d.Current().StringFixed(2))

	d.Roll()
	assert.Equal(t, "126.75", d.StartAmount.StringFixed(2))
	assert.True(t, d.CashIn.IsZero())
	assert.True(t, d.CashSales.IsZero())
}
