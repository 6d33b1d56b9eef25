// Package session keeps per-register state: the in-progress cart and the
// cash drawer. Registers are independent; all access to one register is
// serialized through its lock.
package session

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
)

// Drawer tracks cash movements since the last Z-report.
type Drawer struct {
	StartAmount decimal.Decimal `json:"start_amount"`
	CashIn      decimal.Decimal `json:"cash_in"`
	CashOut     decimal.Decimal `json:"cash_out"`
	CashSales   decimal.Decimal `json:"cash_sales"`
}

// Current is the cash expected to be in the drawer.
func (d Drawer) Current() decimal.Decimal {
	return d.StartAmount.Add(d.CashIn).Add(d.CashSales).Sub(d.CashOut)
}

// Roll starts a new shift whose opening float is the current amount.
func (d *Drawer) Roll() {
	*d = Drawer{StartAmount: d.Current()}
}

// Register is the state of one till.
type Register struct {
	ID     string       `json:"id"`
	Cart   pricing.Cart `json:"cart"`
	Drawer Drawer       `json:"drawer"`
}

type entry struct {
	mu  sync.Mutex
	reg Register
	// dropped is set once the entry has left the map; holders retry.
	dropped bool
}

// Manager owns every register's state. Only registers holding state are
// kept; a register back in its initial state is forgotten.
type Manager struct {
	mu        sync.Mutex
	registers map[string]*entry
}

func NewManager() *Manager {
	return &Manager{registers: make(map[string]*entry)}
}

func (m *Manager) getOrCreate(id string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.registers[id]
	if !ok {
		e = &entry{reg: Register{ID: id}}
		m.registers[id] = e
	}
	return e
}

func (m *Manager) lookup(id string) (*entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.registers[id]
	return e, ok
}

// drop removes e if it is still the entry for id. Caller holds e.mu.
func (m *Manager) drop(id string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registers[id] == e {
		delete(m.registers, id)
	}
	e.dropped = true
}

// Update runs fn against the register with exclusive access. Changes made
// by fn are kept even when it returns an error; fn decides what to mutate.
func (m *Manager) Update(id string, fn func(r *Register) error) (Register, error) {
	for {
		e := m.getOrCreate(id)
		e.mu.Lock()
		if e.dropped {
			e.mu.Unlock()
			continue
		}

		err := fn(&e.reg)
		snap := e.reg.snapshot()
		if e.reg.isInitial() {
			m.drop(id, e)
		}
		e.mu.Unlock()
		return snap, err
	}
}

// Snapshot returns a deep copy of the register state. Unknown registers
// read as empty and are not stored.
func (m *Manager) Snapshot(id string) Register {
	e, ok := m.lookup(id)
	if !ok {
		return Register{ID: id}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dropped {
		return Register{ID: id}
	}
	return e.reg.snapshot()
}

// IDs lists the registers currently holding state.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.registers))
	for id := range m.registers {
		ids = append(ids, id)
	}
	return ids
}

func (r *Register) snapshot() Register {
	return Register{ID: r.ID, Cart: r.Cart.Clone(), Drawer: r.Drawer}
}

func (r *Register) isInitial() bool {
	c, d := &r.Cart, r.Drawer
	return len(c.Lines) == 0 && len(c.Fees) == 0 && c.OrderDiscountPercent.IsZero() &&
		c.Customer == nil && c.Notes == "" && c.Shipping == nil &&
		d.StartAmount.IsZero() && d.CashIn.IsZero() && d.CashOut.IsZero() && d.CashSales.IsZero()
}
