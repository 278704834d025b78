package controllers

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/storecatalog/apperrors"
	"github.com/princinho/storecatalog/database"
	"github.com/princinho/storecatalog/models"
)

// memProducts is an in-memory database.ProductStore.
type memProducts struct {
	mu    sync.Mutex
	items map[bson.ObjectID]models.Product
	clock time.Time
}

func newMemProducts() *memProducts {
	return &memProducts{
		items: map[bson.ObjectID]models.Product{},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memProducts) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memProducts) slugTaken(slug string, except bson.ObjectID) bool {
	for id, p := range m.items {
		if id != except && p.Slug == slug {
			return true
		}
	}
	return false
}

func (m *memProducts) List(_ context.Context, f database.ProductFilter) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Product, 0)
	for _, p := range m.items {
		if f.StoreID != "" && p.StoreID != f.StoreID {
			continue
		}
		if f.InStock != nil && p.InStock != *f.InStock {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memProducts) Get(_ context.Context, id bson.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, apperrors.NotFound("product")
	}
	return &p, nil
}

func (m *memProducts) GetForStore(ctx context.Context, id bson.ObjectID, storeID string) (*models.Product, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.StoreID != storeID {
		return nil, apperrors.NotFound("product")
	}
	return p, nil
}

func (m *memProducts) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(p.Slug, bson.NilObjectID) {
		return apperrors.Conflict("slug", "slug already exists")
	}
	p.ID = bson.NewObjectID()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	m.items[p.ID] = *p
	return nil
}

func (m *memProducts) Replace(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[p.ID]
	if !ok || cur.StoreID != p.StoreID {
		return apperrors.NotFound("product")
	}
	if m.slugTaken(p.Slug, p.ID) {
		return apperrors.Conflict("slug", "slug already exists")
	}
	p.UpdatedAt = m.tick()
	m.items[p.ID] = *p
	return nil
}

func (m *memProducts) update(id bson.ObjectID, storeID string, fn func(*models.Product)) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok || p.StoreID != storeID {
		return nil, apperrors.NotFound("product")
	}
	fn(&p)
	p.UpdatedAt = m.tick()
	m.items[id] = p
	return &p, nil
}

func (m *memProducts) SetImages(_ context.Context, id bson.ObjectID, storeID string, images []string) (*models.Product, error) {
	return m.update(id, storeID, func(p *models.Product) { p.Images = images })
}

func (m *memProducts) Delete(_ context.Context, id bson.ObjectID, storeID string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok || p.StoreID != storeID {
		return nil, apperrors.NotFound("product")
	}
	delete(m.items, id)
	return &p, nil
}

func (m *memProducts) ToggleStock(_ context.Context, id bson.ObjectID, storeID string) (bool, error) {
	p, err := m.update(id, storeID, func(p *models.Product) { p.InStock = !p.InStock })
	if err != nil {
		return false, err
	}
	return p.InStock, nil
}

func (m *memProducts) ToggleFastDelivery(_ context.Context, id bson.ObjectID, storeID string) (bool, error) {
	p, err := m.update(id, storeID, func(p *models.Product) { p.FastDelivery = !p.FastDelivery })
	if err != nil {
		return false, err
	}
	return p.FastDelivery, nil
}

func (m *memProducts) SetFBT(_ context.Context, id bson.ObjectID, storeID string, cfg database.FBTConfig) (*models.Product, error) {
	return m.update(id, storeID, func(p *models.Product) {
		p.EnableFBT = cfg.Enabled
		p.FBTProductIDs = cfg.ProductIDs
		p.FBTBundlePrice = cfg.BundlePrice
		p.FBTBundleDiscount = cfg.BundleDiscount
	})
}

// seed stores p as-is and returns it with an ID.
func (m *memProducts) seed(p models.Product) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.tick()
	}
	m.items[p.ID] = p
	return p
}

func (m *memProducts) get(id bson.ObjectID) (models.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	return p, ok
}

type memCategories struct {
	mu    sync.Mutex
	items []models.Category
}

func (m *memCategories) List(_ context.Context, q string) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, 0)
	for _, c := range m.items {
		if q == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(q)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.items {
		if x.Slug == c.Slug {
			return apperrors.Conflict("slug", "slug already exists")
		}
	}
	c.Id = bson.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	m.items = append(m.items, *c)
	return nil
}

func (m *memCategories) Update(_ context.Context, id bson.ObjectID, set bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.items {
		if c.Id != id {
			continue
		}
		if v, ok := set["name"].(string); ok {
			m.items[i].Name = v
		}
		if v, ok := set["slug"].(string); ok {
			m.items[i].Slug = v
		}
		if v, ok := set["isActive"].(bool); ok {
			m.items[i].IsActive = v
		}
		return nil
	}
	return apperrors.NotFound("category")
}

func (m *memCategories) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.items {
		if c.Id == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("category")
}

type memUsers struct {
	byEmail map[string]models.User
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return &u, nil
}

func (m *memUsers) SeedUser(_ context.Context, u models.User) (bool, error) {
	if _, ok := m.byEmail[u.Email]; ok {
		return false, nil
	}
	m.byEmail[u.Email] = u
	return true, nil
}

const cdnPrefix = "https://cdn.test/"

// memStorage is an in-memory utils.ObjectStore serving from cdnPrefix.
type memStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	deleted   []string
	failWrite bool
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStorage) Upload(_ context.Context, name, contentType string, body io.Reader) (string, error) {
	if m.failWrite {
		return "", errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = b
	m.types[name] = contentType
	return cdnPrefix + name, nil
}

func (m *memStorage) Delete(_ context.Context, names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range names {
		delete(m.objects, n)
		m.deleted = append(m.deleted, n)
	}
	return nil
}

func (m *memStorage) ObjectName(raw string) (string, error) {
	if !strings.HasPrefix(raw, cdnPrefix) {
		return "", errors.New("not ours")
	}
	return strings.TrimPrefix(raw, cdnPrefix), nil
}

func (m *memStorage) Close() error { return nil }

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
