package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/infra/storage"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testPaymentSecret = "rzp_test_secret"
	adminEmail        = "admin@example.com"
	adminPassword     = "adminpass123"
)

var dbSeq atomic.Int64

// =====================
// テスト用の外部部品
// =====================

// 送られたイベントを記録する
type recordingPublisher struct {
	mu     sync.Mutex
	events []usecase.OrderEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := event.(usecase.OrderEvent); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// 決済ゲートウェイの代わり
type fakeGateway struct {
	seq atomic.Int64
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req usecase.GatewayOrderRequest) (usecase.GatewayOrder, error) {
	return usecase.GatewayOrder{
		ID:          fmt.Sprintf("order_e2e_%d", g.seq.Add(1)),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Status:      "created",
	}, nil
}

// =====================
// TestClient
// =====================

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
	Events  *recordingPublisher
}

// sqlite(in-memory) + 一時ディレクトリで本物のサーバーを立てる
func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.Config{
		DBDriver:          "sqlite",
		DatabaseURL:       fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbSeq.Add(1)),
		JWTSecret:         "e2e-secret",
		JWTTTL:            time.Hour,
		UploadDir:         t.TempDir(),
		UploadMaxBytes:    1 << 20,
		PublicImagePath:   "/images",
		RazorpayKeySecret: testPaymentSecret,
		PaymentCurrency:   "INR",
	}

	ctx := context.Background()
	gdb, err := db.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.Migrate(gdb))

	images, err := storage.NewLocalImageStore(cfg.UploadDir, cfg.PublicImagePath)
	require.NoError(t, err)

	events := &recordingPublisher{}
	app, err := server.New(server.Deps{
		Config:  cfg,
		DB:      gdb,
		Events:  events,
		Images:  images,
		Gateway: &fakeGateway{},
	})
	require.NoError(t, err)

	_, err = app.Auth.EnsureAdmin(ctx, "admin", adminEmail, adminPassword)
	require.NoError(t, err)

	ts := httptest.NewServer(app.Echo)
	t.Cleanup(ts.Close)

	return &TestClient{
		BaseURL: ts.URL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Events:  events,
	}
}

// =====================
// レスポンス型
// =====================

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

type AuthResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    UserDTO `json:"user"`
}

type ProductDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity"`
}

type CartItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Available bool            `json:"available"`
}

type CartResponse struct {
	Items     []CartItem      `json:"items"`
	ItemCount int64           `json:"item_count"`
	Total     decimal.Decimal `json:"total_price"`
}

type OrderItemDTO struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type OrderDTO struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaymentID   string          `json:"payment_id"`
	Items       []OrderItemDTO  `json:"items"`
}

type PlaceOrderResponse struct {
	Message     string          `json:"message"`
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderDetailResponse struct {
	Order OrderDTO       `json:"order"`
	Items []OrderItemDTO `json:"items"`
}

// =====================
// helper
// =====================

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return c.do(t, req)
}

func (c *TestClient) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

// multipart の image フィールドで送る
func (c *TestClient) uploadImage(ctx context.Context, t *testing.T, bearer string, filename string, content []byte) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload/image", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(t, req)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return b
}

func mustDecode(t *testing.T, body []byte, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, dst); err != nil {
		t.Fatalf("json.Unmarshal(%T) failed: %v body=%s", dst, err, string(body))
	}
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustDecodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var v ErrorResponse
	mustDecode(t, body, &v)
	return v
}

func login(t *testing.T, c *TestClient, ctx context.Context, email string, password string) string {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", mustJSON(t, map[string]string{
		"email":    email,
		"password": password,
	}))
	requireStatus(t, resp, http.StatusOK, body)

	var v AuthResponse
	mustDecode(t, body, &v)
	if v.Token == "" {
		t.Fatalf("token is empty: body=%s", string(body))
	}
	return v.Token
}

func adminLogin(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()
	return login(t, c, ctx, adminEmail, adminPassword)
}

// 会員登録してトークンを返す
func registerUser(t *testing.T, c *TestClient, ctx context.Context, username string) (string, UserDTO) {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", mustJSON(t, map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}))
	requireStatus(t, resp, http.StatusCreated, body)

	var v AuthResponse
	mustDecode(t, body, &v)
	return v.Token, v.User
}

func createProduct(t *testing.T, c *TestClient, ctx context.Context, admin string, name string, price string, stock int64) ProductDTO {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/products/admin", admin, mustJSON(t, map[string]interface{}{
		"name":           name,
		"price":          price,
		"stock_quantity": stock,
	}))
	requireStatus(t, resp, http.StatusCreated, body)

	var p ProductDTO
	mustDecode(t, body, &p)
	return p
}

func addToCart(t *testing.T, c *TestClient, ctx context.Context, token string, productID int64, qty int64) CartResponse {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/cart/add", token, mustJSON(t, map[string]int64{
		"product_id": productID,
		"quantity":   qty,
	}))
	requireStatus(t, resp, http.StatusOK, body)

	var cart CartResponse
	mustDecode(t, body, &cart)
	return cart
}

func placeOrder(t *testing.T, c *TestClient, ctx context.Context, token string) PlaceOrderResponse {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/orders/create", token, mustJSON(t, map[string]string{
		"shipping_address": "1-2-3 Shibuya, Tokyo",
	}))
	requireStatus(t, resp, http.StatusCreated, body)

	var out PlaceOrderResponse
	mustDecode(t, body, &out)
	return out
}
