package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/storecatalog/dto"
	"github.com/princinho/storecatalog/form"
	"github.com/princinho/storecatalog/models"
)

type call struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
	Form   map[string][]string
}

// fakeBackend answers every route from a table and records each call.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []call
	routes map[string]http.HandlerFunc
}

func newFakeBackend(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()
	fb := &fakeBackend{routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	return fb, NewClient(srv.URL, StaticToken("tok"))
}

func (f *fakeBackend) on(method, path string, h http.HandlerFunc) {
	f.routes[method+" "+path] = h
}

func (f *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	c := call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: raw}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		c.Form = r.MultipartForm.Value
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	h, ok := f.routes[r.Method+" "+r.URL.Path]
	if !ok {
		writeJSON(w, http.StatusNotFound, jsonMap{"error": "no route"})
		return
	}
	h(w, r)
}

func (f *fakeBackend) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

type jsonMap map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

type answer bool

func (a answer) Confirm(string) bool { return bool(a) }

type countingRefresher struct{ n int }

func (r *countingRefresher) Refresh(context.Context) { r.n++ }

func newProduct(name string, created time.Time) models.Product {
	return models.Product{
		ID:        bson.NewObjectID(),
		Name:      name,
		SKU:       "SKU-" + name,
		Price:     10,
		MRP:       12,
		InStock:   true,
		Images:    []string{"https://cdn/" + name + ".jpg"},
		CreatedAt: created,
	}
}

func addImage(t *testing.T, e *Editor) {
	t.Helper()
	require.NoError(t, e.Dispatch(form.SetImage{Slot: 1, Upload: form.Upload{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("x")}}))
}

func TestSubmit_NoImageSendsNothing(t *testing.T) {
	fb, client := newFakeBackend(t)
	n := &recordingNotifier{}
	e := NewEditor(client, nil, n, EditorHooks{})

	res, err := e.Submit(context.Background())
	assert.ErrorIs(t, err, form.ErrNoImage)
	assert.Nil(t, res)
	assert.Empty(t, fb.recorded())
	assert.Equal(t, []string{form.ErrNoImage.Error()}, n.errors)
	assert.False(t, e.Loading())
}

func TestSubmit_CreateThenAlwaysPatchFBT(t *testing.T) {
	fb, client := newFakeBackend(t)
	saved := newProduct("honey", time.Now())
	fb.on(http.MethodPost, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, dto.ProductResponse{Message: "Product added successfully", Product: saved})
	})
	fb.on(http.MethodPatch, "/api/products/"+saved.ID.Hex()+"/fbt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, jsonMap{"message": "ok"})
	})

	var order []string
	n := &recordingNotifier{}
	e := NewEditor(client, nil, n, EditorHooks{
		OnSuccess: func(p models.Product) {
			assert.Equal(t, saved.ID, p.ID)
			order = append(order, "success")
		},
		OnClose:  func() { order = append(order, "close") },
		Navigate: func() { order = append(order, "navigate") },
	})
	require.NoError(t, e.Dispatch(form.SetText{Field: form.FieldName, Value: "Honey"}))
	addImage(t, e)

	res, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Partial())
	assert.Equal(t, "Product added successfully", res.Message)
	assert.Equal(t, []string{"success", "close", "navigate"}, order)
	assert.Equal(t, []string{"Product added successfully", "FBT configuration saved!"}, n.successes)

	calls := fb.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "Bearer tok", calls[0].Auth)
	assert.Equal(t, []string{"Honey"}, calls[0].Form["name"])
	assert.Equal(t, []string{"honey"}, calls[0].Form["slug"])
	assert.NotContains(t, calls[0].Form, "productId")
	assert.NotContains(t, calls[0].Form, "category")
	assert.Equal(t, http.MethodPatch, calls[1].Method)
	assert.Equal(t, "Bearer tok", calls[1].Auth)
	assert.JSONEq(t, `{"enableFBT":false,"fbtProductIds":[],"fbtBundlePrice":null,"fbtBundleDiscount":null}`, string(calls[1].Body))
}

func TestSubmit_UpdateSendsIdentity(t *testing.T) {
	fb, client := newFakeBackend(t)
	saved := newProduct("honey", time.Now())
	other := newProduct("wax", time.Now())
	fb.on(http.MethodPut, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductResponse{Message: "Product updated successfully", Product: saved})
	})
	fb.on(http.MethodPatch, "/api/products/"+saved.ID.Hex()+"/fbt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, jsonMap{})
	})

	e := NewEditor(client, &saved, nil, EditorHooks{})
	require.NoError(t, e.Dispatch(form.SetFBTEnabled{Enabled: true}))
	require.NoError(t, e.Dispatch(form.SelectFBTProduct{Candidate: form.CandidateFrom(other)}))
	require.NoError(t, e.Dispatch(form.SetFBTPricing{BundleDiscount: "15"}))

	res, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Partial())

	calls := fb.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, []string{saved.ID.Hex()}, calls[0].Form["productId"])
	assert.Equal(t, []string{saved.Images[0]}, calls[0].Form["images"])

	var patch dto.FBTPatch
	require.NoError(t, json.Unmarshal(calls[1].Body, &patch))
	assert.True(t, patch.EnableFBT)
	assert.Equal(t, []string{other.ID.Hex()}, patch.FBTProductIDs)
	assert.Nil(t, patch.FBTBundlePrice)
	require.NotNil(t, patch.FBTBundleDiscount)
	assert.Equal(t, 15.0, *patch.FBTBundleDiscount)
}

func TestSubmit_FBTFailureIsPartial(t *testing.T) {
	fb, client := newFakeBackend(t)
	saved := newProduct("honey", time.Now())
	fb.on(http.MethodPost, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, dto.ProductResponse{Message: "Product added successfully", Product: saved})
	})

	successCalled := false
	n := &recordingNotifier{}
	e := NewEditor(client, nil, n, EditorHooks{OnSuccess: func(models.Product) { successCalled = true }})
	addImage(t, e)

	res, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Partial())
	assert.True(t, IsStatus(res.FBTErr, http.StatusNotFound))
	assert.True(t, successCalled)
	assert.Equal(t, []string{"Product saved but FBT config failed"}, n.errors)
	assert.False(t, e.State().Initialized())
}

func TestSubmit_NoProductIDSkipsFBTPatch(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on(http.MethodPost, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, jsonMap{"message": "Product added successfully", "product": jsonMap{"name": "Honey"}})
	})

	successCalled := false
	n := &recordingNotifier{}
	e := NewEditor(client, nil, n, EditorHooks{OnSuccess: func(models.Product) { successCalled = true }})
	addImage(t, e)

	res, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Partial())
	assert.ErrorIs(t, res.FBTErr, ErrNoProductID)
	assert.True(t, successCalled)
	assert.Equal(t, []string{"Product saved but FBT config failed"}, n.errors)

	calls := fb.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
}

func TestSubmit_ProductRejectedSurfacesServerMessage(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on(http.MethodPost, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, jsonMap{"error": "slug already exists", "field": "slug"})
	})

	successCalled := false
	n := &recordingNotifier{}
	e := NewEditor(client, nil, n, EditorHooks{OnSuccess: func(models.Product) { successCalled = true }})
	addImage(t, e)

	res, err := e.Submit(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.Equal(t, "slug already exists", err.Error())
	assert.Equal(t, []string{"slug already exists"}, n.errors)
	assert.False(t, successCalled)
	assert.False(t, e.Loading())
	assert.Len(t, fb.recorded(), 1)

	// the form stays open and can be resubmitted
	_, err = e.Submit(context.Background())
	assert.True(t, IsStatus(err, http.StatusConflict))
}

func TestSubmit_RejectsConcurrentSubmit(t *testing.T) {
	_, client := newFakeBackend(t)
	e := NewEditor(client, nil, nil, EditorHooks{})
	e.loading.Store(true)

	_, err := e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
}

func TestEditor_LoadFBT(t *testing.T) {
	fb, client := newFakeBackend(t)
	p := newProduct("honey", time.Now())
	other := newProduct("wax", time.Now())
	discount := 10.0
	fb.on(http.MethodGet, "/api/products/"+p.ID.Hex()+"/fbt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.FBTResponse{EnableFBT: true, Products: []models.Product{other}, BundleDiscount: &discount})
	})

	e := NewEditor(client, &p, nil, EditorHooks{})
	e.LoadFBT(context.Background())

	s := e.State()
	assert.True(t, s.FBT.Enabled)
	assert.Equal(t, "10", s.FBT.BundleDiscount)
	require.Len(t, s.FBT.Selected, 1)
	assert.Equal(t, other.ID.Hex(), s.FBT.Selected[0].ID)
}

func TestEditor_LoadFBTFailureLeavesEmptyConfig(t *testing.T) {
	_, client := newFakeBackend(t)
	p := newProduct("honey", time.Now())
	e := NewEditor(client, &p, nil, EditorHooks{})
	e.LoadFBT(context.Background())

	s := e.State()
	assert.False(t, s.FBT.Enabled)
	assert.Empty(t, s.FBT.Selected)
}

func TestEditor_Candidates(t *testing.T) {
	fb, client := newFakeBackend(t)
	self := newProduct("honey", time.Now())
	wax := newProduct("wax", time.Now())
	comb := newProduct("comb", time.Now())
	jar := newProduct("jar", time.Now())
	fb.on(http.MethodGet, "/api/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductsResponse{Products: []models.Product{self, wax, comb, jar}})
	})

	e := NewEditor(client, &self, nil, EditorHooks{})
	require.NoError(t, e.Dispatch(form.SelectFBTProduct{Candidate: form.CandidateFrom(comb)}))

	got := e.Candidates(context.Background(), "")
	ids := []string{}
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{wax.ID.Hex(), jar.ID.Hex()}, ids)

	got = e.Candidates(context.Background(), "sku-JAR")
	require.Len(t, got, 1)
	assert.Equal(t, "jar", got[0].Name)
}

func TestEditor_CandidatesFetchFailure(t *testing.T) {
	_, client := newFakeBackend(t)
	e := NewEditor(client, nil, nil, EditorHooks{})
	assert.Equal(t, []form.Candidate{}, e.Candidates(context.Background(), "x"))
}

func TestEditor_DeleteImageWritesImmediately(t *testing.T) {
	fb, client := newFakeBackend(t)
	p := newProduct("honey", time.Now())
	p.Images = []string{"https://cdn/1.jpg", "https://cdn/2.jpg", "https://cdn/3.jpg"}
	fb.on(http.MethodPut, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductResponse{Message: "ok", Product: p})
	})

	n := &recordingNotifier{}
	e := NewEditor(client, &p, n, EditorHooks{})
	require.NoError(t, e.Dispatch(form.SetText{Field: form.FieldBrand, Value: "unsaved"}))
	require.NoError(t, e.DeleteImage(context.Background(), 2))

	calls := fb.recorded()
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"productId":"`+p.ID.Hex()+`","images":["https://cdn/1.jpg","https://cdn/3.jpg"]}`, string(calls[0].Body))
	assert.Equal(t, []string{"Image deleted and saved!"}, n.successes)
	assert.True(t, e.State().Images[1].Empty())
	assert.Equal(t, "unsaved", e.State().Brand)
}

func TestEditor_DeleteImageFailure(t *testing.T) {
	_, client := newFakeBackend(t)
	p := newProduct("honey", time.Now())
	n := &recordingNotifier{}
	e := NewEditor(client, &p, n, EditorHooks{})

	assert.Error(t, e.DeleteImage(context.Background(), 1))
	assert.Equal(t, []string{"Failed to delete image on server"}, n.errors)
}

func TestEditor_DeleteUnsavedImageStaysLocal(t *testing.T) {
	fb, client := newFakeBackend(t)
	e := NewEditor(client, nil, nil, EditorHooks{})
	addImage(t, e)

	require.NoError(t, e.DeleteImage(context.Background(), 1))
	assert.Empty(t, fb.recorded())
	assert.True(t, e.State().Images[0].Empty())
}

func TestManager_LoadSortsAndDegradesCategories(t *testing.T) {
	fb, client := newFakeBackend(t)
	now := time.Now()
	older := newProduct("older", now.Add(-time.Hour))
	newer := newProduct("newer", now)
	older.Categories = []string{"cat-1"}
	fb.on(http.MethodGet, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, dto.ProductsResponse{Products: []models.Product{older, newer}})
	})
	fb.on(http.MethodGet, "/api/store/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, jsonMap{"error": "boom"})
	})

	m := NewManager(client, nil, nil, nil)
	require.NoError(t, m.Load(context.Background()))

	list := m.Products()
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Name)
	assert.Equal(t, []string{"cat-1"}, m.CategoryNames(list[1]))
}

func TestManager_CategoryNames(t *testing.T) {
	fb, client := newFakeBackend(t)
	cat := models.Category{Id: bson.NewObjectID(), Name: "Pantry"}
	p := newProduct("honey", time.Now())
	p.Categories = []string{cat.Id.Hex(), "gone"}
	fb.on(http.MethodGet, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductsResponse{Products: []models.Product{p}})
	})
	fb.on(http.MethodGet, "/api/store/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.CategoriesResponse{Categories: []models.Category{cat}})
	})

	m := NewManager(client, nil, nil, nil)
	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, []string{"Pantry", "gone"}, m.CategoryNames(p))
}

func TestManager_TogglesApplyServerState(t *testing.T) {
	fb, client := newFakeBackend(t)
	p := newProduct("honey", time.Now())
	fb.on(http.MethodGet, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductsResponse{Products: []models.Product{p}})
	})
	fb.on(http.MethodPost, "/api/store/stock-toggle", func(w http.ResponseWriter, r *http.Request) {
		// the server state wins even if it did not flip
		writeJSON(w, http.StatusOK, dto.StockToggleResponse{Message: "Product stock status updated", InStock: true})
	})
	fb.on(http.MethodPost, "/api/store/fast-delivery-toggle", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.FastDeliveryToggleResponse{Message: "Fast delivery enabled", FastDelivery: true})
	})

	n := &recordingNotifier{}
	m := NewManager(client, n, nil, nil)
	require.NoError(t, m.Load(context.Background()))
	require.NoError(t, m.ToggleStock(context.Background(), p.ID.Hex()))
	require.NoError(t, m.ToggleFastDelivery(context.Background(), p.ID.Hex()))

	got, ok := m.Product(p.ID.Hex())
	require.True(t, ok)
	assert.True(t, got.InStock)
	assert.True(t, got.FastDelivery)
	assert.Equal(t, []string{"Product stock status updated", "Fast delivery enabled"}, n.successes)
}

func TestManager_ToggleFailureKeepsRow(t *testing.T) {
	fb, client := newFakeBackend(t)
	p := newProduct("honey", time.Now())
	fb.on(http.MethodGet, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductsResponse{Products: []models.Product{p}})
	})
	fb.on(http.MethodPost, "/api/store/stock-toggle", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, jsonMap{"error": "product not found"})
	})

	n := &recordingNotifier{}
	m := NewManager(client, n, nil, nil)
	require.NoError(t, m.Load(context.Background()))
	err := m.ToggleStock(context.Background(), p.ID.Hex())
	require.Error(t, err)

	got, _ := m.Product(p.ID.Hex())
	assert.True(t, got.InStock)
	assert.Equal(t, []string{"product not found"}, n.errors)
}

func TestManager_DeleteNeedsConfirmation(t *testing.T) {
	fb, client := newFakeBackend(t)
	p := newProduct("honey", time.Now())
	fb.on(http.MethodGet, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductsResponse{Products: []models.Product{p}})
	})
	fb.on(http.MethodDelete, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, p.ID.Hex(), r.URL.Query().Get("productId"))
		writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Product deleted"})
	})

	declined := NewManager(client, nil, answer(false), nil)
	require.NoError(t, declined.Load(context.Background()))
	assert.ErrorIs(t, declined.Delete(context.Background(), p.ID.Hex()), ErrCancelled)
	assert.Len(t, declined.Products(), 1)
	for _, c := range fb.recorded() {
		assert.NotEqual(t, http.MethodDelete, c.Method)
	}

	n := &recordingNotifier{}
	m := NewManager(client, n, answer(true), nil)
	require.NoError(t, m.Load(context.Background()))
	require.NoError(t, m.Delete(context.Background(), p.ID.Hex()))
	assert.Empty(t, m.Products())
	assert.Equal(t, []string{"Product deleted successfully"}, n.successes)
}

func TestManager_EditReplacesRowAndRefreshes(t *testing.T) {
	fb, client := newFakeBackend(t)
	p := newProduct("honey", time.Now())
	fb.on(http.MethodGet, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductsResponse{Products: []models.Product{p}})
	})
	updated := p
	updated.Name = "Raw Honey"
	fb.on(http.MethodPut, "/api/store/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductResponse{Message: "Product updated", Product: updated})
	})
	fb.on(http.MethodPatch, "/api/products/"+p.ID.Hex()+"/fbt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, jsonMap{})
	})

	refresher := &countingRefresher{}
	m := NewManager(client, nil, nil, refresher)
	require.NoError(t, m.Load(context.Background()))

	e, err := m.Edit(p.ID.Hex(), EditorHooks{})
	require.NoError(t, err)
	assert.Equal(t, "honey", e.State().Name)
	require.NoError(t, e.Dispatch(form.SetText{Field: form.FieldName, Value: "Raw Honey"}))

	_, err = e.Submit(context.Background())
	require.NoError(t, err)
	got, _ := m.Product(p.ID.Hex())
	assert.Equal(t, "Raw Honey", got.Name)
	assert.Equal(t, 1, refresher.n)

	_, err = m.Edit("missing", EditorHooks{})
	assert.Error(t, err)
}

func TestLoginTokenSource_CachesToken(t *testing.T) {
	logins := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var in dto.LoginDTO
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		logins++
		if in.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, jsonMap{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, dto.LoginResponse{AccessToken: "issued"})
	}))
	defer srv.Close()

	ts := &LoginTokenSource{BaseURL: srv.URL, Email: "a@b.co", Password: "secret"}
	for i := 0; i < 2; i++ {
		tok, err := ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "issued", tok)
	}
	assert.Equal(t, 1, logins)

	bad := &LoginTokenSource{BaseURL: srv.URL, Email: "a@b.co", Password: "nope"}
	_, err := bad.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestClient_UploadImage(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on(http.MethodPost, "/api/store/upload-image", func(w http.ResponseWriter, r *http.Request) {
		f, h, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		f.Close()
		assert.Equal(t, "clip.mp4", h.Filename)
		assert.Equal(t, "video/mp4", h.Header.Get("Content-Type"))
		writeJSON(w, http.StatusOK, dto.UploadImageResponse{URL: "https://cdn/clip.mp4"})
	})

	url, err := client.UploadImage(context.Background(), form.Upload{Filename: "clip.mp4", ContentType: "video/mp4", Data: []byte("mp4")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/clip.mp4", url)
}
