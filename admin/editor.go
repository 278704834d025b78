package admin

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/princinho/storecatalog/form"
	"github.com/princinho/storecatalog/models"
)

var (
	// ErrSubmitInFlight is returned when Submit is called while a save runs.
	ErrSubmitInFlight = errors.New("a save is already in progress")
	// ErrNoProductID marks a save answer that carried no product to attach
	// the cross-sell configuration to.
	ErrNoProductID = errors.New("saved product has no id")
)

// Notifier shows short user-facing messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// SaveResult records the outcome of both phases of a save. The product write
// succeeded whenever a SaveResult is returned; FBTErr holds the failure of the
// cross-sell patch that follows it.
type SaveResult struct {
	Product models.Product
	Message string
	FBTErr  error
}

// Partial reports whether the product was saved but the cross-sell patch was not.
func (r *SaveResult) Partial() bool {
	return r.FBTErr != nil
}

// EditorHooks are called after a successful save, in field order.
type EditorHooks struct {
	OnSuccess func(models.Product)
	OnClose   func()
	Navigate  func()
}

// Editor is one create or edit session of a product.
type Editor struct {
	client   *Client
	notifier Notifier
	hooks    EditorHooks
	log      *zap.Logger

	mu    sync.Mutex
	state form.State

	loading atomic.Bool
}

// NewEditor opens a session. A nil product starts an empty form; otherwise
// the form is hydrated from it.
func NewEditor(c *Client, product *models.Product, n Notifier, hooks EditorHooks) *Editor {
	if n == nil {
		n = nopNotifier{}
	}
	e := &Editor{client: c, notifier: n, hooks: hooks, log: c.log, state: form.New()}
	if product != nil {
		e.state, _ = form.Reduce(e.state, form.Hydrate{Product: *product})
	}
	return e
}

func (e *Editor) State() form.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) Loading() bool {
	return e.loading.Load()
}

// Dispatch applies one form event. A rejected event leaves the form as it was.
func (e *Editor) Dispatch(ev form.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := form.Reduce(e.state, ev)
	if err != nil {
		return err
	}
	e.state = next
	return nil
}

// LoadFBT fetches the cross-sell configuration of the product being edited.
// A failed fetch leaves an empty configuration.
func (e *Editor) LoadFBT(ctx context.Context) {
	id := e.State().ProductID
	if id == "" {
		return
	}
	cfg, err := e.client.GetFBT(ctx, id)
	if err != nil {
		e.log.Warn("load fbt config", zap.String("productId", id), zap.Error(err))
		return
	}
	_ = e.Dispatch(form.LoadFBT{Config: *cfg})
}

// Candidates searches the public product list by name or SKU, leaving out
// the product being edited and products already selected. A failed fetch
// yields no candidates.
func (e *Editor) Candidates(ctx context.Context, query string) []form.Candidate {
	products, err := e.client.Products(ctx)
	if err != nil {
		e.log.Warn("load fbt candidates", zap.Error(err))
		return []form.Candidate{}
	}

	s := e.State()
	skip := map[string]bool{s.ProductID: true}
	for _, c := range s.FBT.Selected {
		skip[c.ID] = true
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := []form.Candidate{}
	for _, p := range products {
		if skip[p.ID.Hex()] {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
			continue
		}
		out = append(out, form.CandidateFrom(p))
	}
	return out
}

// DeleteImage clears a slot. When the slot held a stored image of an existing
// product, the reduced image list is written right away, independent of any
// other unsaved change.
func (e *Editor) DeleteImage(ctx context.Context, slot int) error {
	s := e.State()
	if err := e.Dispatch(form.ClearImage{Slot: slot}); err != nil {
		return err
	}
	if !s.Editing() || s.Images[slot-1].Upload != nil || s.Images[slot-1].URL == "" {
		return nil
	}

	if _, err := e.client.SetImages(ctx, s.ProductID, e.State().PersistedImages()); err != nil {
		e.log.Error("delete product image", zap.String("productId", s.ProductID), zap.Error(err))
		e.notifier.Error("Failed to delete image on server")
		return err
	}
	e.notifier.Success("Image deleted and saved!")
	return nil
}

// Submit saves the product, then always writes the cross-sell configuration
// for the saved product. A rejected product write aborts with the server's
// message; a rejected cross-sell write is recorded in the result and the
// success hooks still run.
func (e *Editor) Submit(ctx context.Context) (*SaveResult, error) {
	if !e.loading.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer e.loading.Store(false)

	sub, err := form.Normalize(e.State())
	if err != nil {
		e.notifier.Error(err.Error())
		return nil, err
	}

	resp, err := e.client.SaveProduct(ctx, sub)
	if err != nil {
		e.notifier.Error(err.Error())
		return nil, err
	}
	e.notifier.Success(resp.Message)

	res := &SaveResult{Product: resp.Product, Message: resp.Message}
	if resp.Product.ID.IsZero() {
		e.log.Error("save fbt config", zap.Error(ErrNoProductID))
		res.FBTErr = ErrNoProductID
		e.notifier.Error("Product saved but FBT config failed")
	} else if err := e.client.PatchFBT(ctx, resp.Product.ID.Hex(), sub.FBT); err != nil {
		e.log.Error("save fbt config", zap.String("productId", resp.Product.ID.Hex()), zap.Error(err))
		res.FBTErr = err
		e.notifier.Error("Product saved but FBT config failed")
	} else {
		e.notifier.Success("FBT configuration saved!")
	}

	if e.hooks.OnSuccess != nil {
		e.hooks.OnSuccess(res.Product)
	}
	e.Close()
	if e.hooks.OnClose != nil {
		e.hooks.OnClose()
	}
	if e.hooks.Navigate != nil {
		e.hooks.Navigate()
	}
	return res, nil
}

// Close ends the session; a later Hydrate re-reads the product.
func (e *Editor) Close() {
	_ = e.Dispatch(form.Close{})
}
