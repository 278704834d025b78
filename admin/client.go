// Package admin drives the catalog backend on behalf of a merchant: the
// product list and its row actions, and product edit sessions.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/princinho/storecatalog/dto"
	"github.com/princinho/storecatalog/form"
	"github.com/princinho/storecatalog/models"
)

const defaultTimeout = 30 * time.Second

// APIError is a rejected request. Message is the server's error text as sent.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// TokenSource hands out the bearer credential for mutating calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a pre-issued access token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("no access token configured")
	}
	return string(t), nil
}

// LoginTokenSource logs in with email and password on first use and keeps
// the issued token.
type LoginTokenSource struct {
	BaseURL    string
	Email      string
	Password   string
	HTTPClient *http.Client

	mu    sync.Mutex
	token string
}

func (s *LoginTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token, nil
	}

	hc := s.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	body, err := json.Marshal(dto.LoginDTO{Email: s.Email, Password: s.Password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.BaseURL, "/")+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out dto.LoginResponse
	if err := do(hc, req, &out); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	s.token = out.AccessToken
	return s.token, nil
}

// Client talks to the catalog REST API. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out dto.CategoriesResponse
	if err := c.send(ctx, http.MethodGet, "/api/store/categories", false, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// Products returns the public product list.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var out dto.ProductsResponse
	if err := c.send(ctx, http.MethodGet, "/api/products", false, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// StoreProducts returns the products of the caller's store.
func (c *Client) StoreProducts(ctx context.Context) ([]models.Product, error) {
	var out dto.ProductsResponse
	if err := c.send(ctx, http.MethodGet, "/api/store/product", true, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// SaveProduct creates or updates a product from a normalized form. An update
// is a PUT carrying the product ID; a create is a POST without one.
func (c *Client) SaveProduct(ctx context.Context, sub *form.Submission) (*dto.ProductResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := sub.WriteMultipart(mw); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	method := http.MethodPost
	if sub.Update() {
		method = http.MethodPut
	}
	var out dto.ProductResponse
	if err := c.send(ctx, method, "/api/store/product", true, &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetImages replaces the stored image list of a product and nothing else.
func (c *Client) SetImages(ctx context.Context, productID string, images []string) (*dto.ProductResponse, error) {
	if images == nil {
		images = []string{}
	}
	var out dto.ProductResponse
	err := c.sendJSON(ctx, http.MethodPut, "/api/store/product", dto.ImagesUpdateDTO{ProductID: productID, Images: images}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) (string, error) {
	var out dto.MessageResponse
	path := "/api/store/product?productId=" + url.QueryEscape(productID)
	if err := c.send(ctx, http.MethodDelete, path, true, nil, "", &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) GetFBT(ctx context.Context, productID string) (*dto.FBTResponse, error) {
	var out dto.FBTResponse
	if err := c.send(ctx, http.MethodGet, fbtPath(productID), false, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatchFBT(ctx context.Context, productID string, patch dto.FBTPatch) error {
	if patch.FBTProductIDs == nil {
		patch.FBTProductIDs = []string{}
	}
	return c.sendJSON(ctx, http.MethodPatch, fbtPath(productID), patch, nil)
}

func (c *Client) ToggleStock(ctx context.Context, productID string) (*dto.StockToggleResponse, error) {
	var out dto.StockToggleResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/api/store/stock-toggle", dto.ToggleDTO{ProductID: productID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleFastDelivery(ctx context.Context, productID string) (*dto.FastDeliveryToggleResponse, error) {
	var out dto.FastDeliveryToggleResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/api/store/fast-delivery-toggle", dto.ToggleDTO{ProductID: productID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage stores a single image or video and returns its hosted URL.
func (c *Client) UploadImage(ctx context.Context, up form.Upload) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	w, err := form.CreateFilePart(mw, "image", up.Filename, up.ContentType)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(up.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out dto.UploadImageResponse
	if err := c.send(ctx, http.MethodPost, "/api/store/upload-image", true, &buf, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func fbtPath(productID string) string {
	return "/api/products/" + url.PathEscape(productID) + "/fbt"
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, method, path, true, bytes.NewReader(body), "application/json", out)
}

func (c *Client) send(ctx context.Context, method, path string, auth bool, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("get access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	err = do(c.http, req, out)
	c.log.Debug("catalog api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("latency", time.Since(start)),
		zap.Error(err),
	)
	return err
}

func do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e dto.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: e.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
