package admin

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/princinho/storecatalog/models"
)

// ErrCancelled is returned by Delete when the operator declines.
var ErrCancelled = errors.New("cancelled")

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Refresher rebuilds whatever catalog views live outside the list.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Manager is the store's product list. It owns the fetched rows and only
// patches them from server answers.
type Manager struct {
	client    *Client
	notifier  Notifier
	confirmer Confirmer
	refresher Refresher
	log       *zap.Logger

	mu         sync.RWMutex
	products   []models.Product
	categories map[string]string
}

func NewManager(c *Client, n Notifier, confirm Confirmer, refresh Refresher) *Manager {
	if n == nil {
		n = nopNotifier{}
	}
	return &Manager{
		client:     c,
		notifier:   n,
		confirmer:  confirm,
		refresher:  refresh,
		log:        c.log,
		categories: map[string]string{},
	}
}

// Load fetches the store's products, newest first, and the category names.
// The two fetches are independent: a category failure leaves the lookup
// empty and the product list intact.
func (m *Manager) Load(ctx context.Context) error {
	var wg sync.WaitGroup
	var cats []models.Category
	var catErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		cats, catErr = m.client.Categories(ctx)
	}()

	products, err := m.client.StoreProducts(ctx)
	wg.Wait()

	lookup := map[string]string{}
	if catErr != nil {
		m.log.Warn("load categories", zap.Error(catErr))
	} else {
		for _, c := range cats {
			lookup[c.Id.Hex()] = c.Name
		}
	}

	m.mu.Lock()
	m.categories = lookup
	m.mu.Unlock()

	if err != nil {
		m.notifier.Error(err.Error())
		return err
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	m.mu.Lock()
	m.products = products
	m.mu.Unlock()
	return nil
}

func (m *Manager) Products() []models.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Product(nil), m.products...)
}

func (m *Manager) Product(id string) (models.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.index(id); i >= 0 {
		return m.products[i], true
	}
	return models.Product{}, false
}

// CategoryNames resolves a product's category IDs, keeping the raw ID for
// any category the lookup does not know.
func (m *Manager) CategoryNames(p models.Product) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := p.CategoryIDs()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := m.categories[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, id)
		}
	}
	return names
}

// ToggleStock flips the stock flag on the server and applies the returned value.
func (m *Manager) ToggleStock(ctx context.Context, id string) error {
	resp, err := m.client.ToggleStock(ctx, id)
	if err != nil {
		m.notifier.Error(err.Error())
		return err
	}
	m.patch(id, func(p *models.Product) { p.InStock = resp.InStock })
	m.notifier.Success(resp.Message)
	return nil
}

func (m *Manager) ToggleFastDelivery(ctx context.Context, id string) error {
	resp, err := m.client.ToggleFastDelivery(ctx, id)
	if err != nil {
		m.notifier.Error(err.Error())
		return err
	}
	m.patch(id, func(p *models.Product) { p.FastDelivery = resp.FastDelivery })
	m.notifier.Success(resp.Message)
	return nil
}

// Delete removes a product after the operator confirms.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if m.confirmer != nil && !m.confirmer.Confirm("Are you sure you want to delete this product?") {
		return ErrCancelled
	}
	if _, err := m.client.DeleteProduct(ctx, id); err != nil {
		m.notifier.Error(err.Error())
		return err
	}

	m.mu.Lock()
	if i := m.index(id); i >= 0 {
		m.products = append(m.products[:i:i], m.products[i+1:]...)
	}
	m.mu.Unlock()
	m.notifier.Success("Product deleted successfully")
	return nil
}

// Edit opens an editor on a listed product. A successful save replaces the
// row and asks the refresher to rebuild other views. Extra hooks run after.
func (m *Manager) Edit(id string, hooks EditorHooks) (*Editor, error) {
	p, ok := m.Product(id)
	if !ok {
		return nil, errors.New("product not in list")
	}
	onSuccess := hooks.OnSuccess
	hooks.OnSuccess = func(saved models.Product) {
		m.replace(saved)
		if m.refresher != nil {
			m.refresher.Refresh(context.Background())
		}
		if onSuccess != nil {
			onSuccess(saved)
		}
	}
	return NewEditor(m.client, &p, m.notifier, hooks), nil
}

// Create opens an editor on an empty form. The saved product is prepended.
func (m *Manager) Create(hooks EditorHooks) *Editor {
	onSuccess := hooks.OnSuccess
	hooks.OnSuccess = func(saved models.Product) {
		m.mu.Lock()
		m.products = append([]models.Product{saved}, m.products...)
		m.mu.Unlock()
		if m.refresher != nil {
			m.refresher.Refresh(context.Background())
		}
		if onSuccess != nil {
			onSuccess(saved)
		}
	}
	return NewEditor(m.client, nil, m.notifier, hooks)
}

func (m *Manager) replace(saved models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(saved.ID.Hex()); i >= 0 {
		m.products[i] = saved
	}
}

func (m *Manager) patch(id string, fn func(*models.Product)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 {
		fn(&m.products[i])
	}
}

// index must be called with mu held.
func (m *Manager) index(id string) int {
	for i, p := range m.products {
		if p.ID.Hex() == id {
			return i
		}
	}
	return -1
}
