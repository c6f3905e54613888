package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go-inventory-api/internal/events"
	"go-inventory-api/internal/middleware"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"
	"go-inventory-api/internal/testutil"
	"go-inventory-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app      *fiber.App
	token    string
	recorder *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)

	products := repository.NewProductRepo(db)
	audit := repository.NewAuditRepo(db)
	users := repository.NewUserRepo(db)
	rec := &events.Recorder{}

	authSvc := service.NewAuthService(users, jwt.NewManager("handler-secret", time.Hour), nil)
	invSvc := service.NewInventoryService(products, audit, db, rec, nil, t.TempDir())
	statsSvc := service.NewStatisticsService(products, audit, nil, nil)

	app := fiber.New()
	Routes{
		Auth:        NewAuthHandler(authSvc, nil),
		Inventory:   NewInventoryHandler(invSvc, nil),
		Statistics:  NewStatisticsHandler(statsSvc, nil),
		RequireAuth: middleware.RequireAuth(authSvc),
	}.Register(app)

	s := &testServer{app: app, recorder: rec}

	res, body := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ops", "email": "ops@example.com", "password": "secret1",
	}, false)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	var auth service.AuthResponse
	require.NoError(t, json.Unmarshal(body, &auth))
	s.token = auth.Token
	return s
}

func (s *testServer) do(t *testing.T, method, path string, payload interface{}, withAuth bool) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		switch p := payload.(type) {
		case string:
			reader = strings.NewReader(p)
		default:
			b, err := json.Marshal(p)
			require.NoError(t, err)
			reader = bytes.NewReader(b)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	res, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, body
}

func (s *testServer) createProduct(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	res, body := s.do(t, http.MethodPost, "/api/products", payload, true)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	var product map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &product))
	return product
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t)

	created := s.createProduct(t, map[string]interface{}{"name": "Widget", "category": "Tools", "stock": "12"})
	assert.Equal(t, "Widget", created["name"])
	assert.EqualValues(t, 12, created["stock"])
	id := int(created["id"].(float64))
	path := "/api/products/" + strconv.Itoa(id)

	res, body := s.do(t, http.MethodGet, path, nil, false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"name":"Widget"`)

	res, body = s.do(t, http.MethodPut, path, map[string]interface{}{"stock": 7}, true)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.Contains(t, string(body), `"stock":7`)

	res, body = s.do(t, http.MethodGet, path+"/history", nil, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var history []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 2)
	assert.EqualValues(t, 12, history[0]["old_quantity"])
	assert.EqualValues(t, 7, history[0]["new_quantity"])
	assert.Equal(t, "ops@example.com", history[0]["user_info"])

	res, body = s.do(t, http.MethodDelete, path, nil, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"message":"Product deleted"}`, string(body))

	res, _ = s.do(t, http.MethodGet, path, nil, false)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res, _ = s.do(t, http.MethodGet, path+"/history", nil, true)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res, _ = s.do(t, http.MethodDelete, path, nil, true)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	assert.Equal(t, []string{
		events.ActionProductCreated,
		events.ActionProductUpdated,
		events.ActionProductDeleted,
	}, s.recorder.Actions())
}

func TestProductErrorsMapToStatusCodes(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, map[string]interface{}{"name": "Widget", "stock": 1})

	res, body := s.do(t, http.MethodPost, "/api/products", map[string]interface{}{"name": "Widget", "stock": 2}, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.JSONEq(t, `{"error":"Product name already exists"}`, string(body))

	res, body = s.do(t, http.MethodPost, "/api/products", map[string]interface{}{"name": "", "stock": -1}, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, string(body), `"errors"`)

	res, _ = s.do(t, http.MethodPost, "/api/products", `{"name":`, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body = s.do(t, http.MethodPost, "/api/products", map[string]interface{}{"name": "Half", "stock": 3.9}, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid JSON"}`, string(body))

	res, _ = s.do(t, http.MethodPut, "/api/products/1", map[string]interface{}{"stock": "2.5"}, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = s.do(t, http.MethodPost, "/api/products", map[string]interface{}{"name": "Nope"}, false)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = s.do(t, http.MethodPut, "/api/products/999", map[string]interface{}{"stock": 3}, true)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = s.do(t, http.MethodGet, "/api/products/abc", nil, false)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	res, _ := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ops", "email": "ops@example.com", "password": "secret1",
	}, false)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ops@example.com", "password": "secret1",
	}, false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"token"`)

	res, _ = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ops@example.com", "password": "wrong",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/products/statistics", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	res, _ = s.send(t, req)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestListProductsAndCategories(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, map[string]interface{}{"name": "Bolt", "category": "Hardware", "stock": 40})
	s.createProduct(t, map[string]interface{}{"name": "Hammer", "category": "Tools", "stock": 3})
	s.createProduct(t, map[string]interface{}{"name": "Wrench", "category": "Tools", "stock": 8})

	res, body := s.do(t, http.MethodGet, "/api/products?category=Tools&sort=stock&order=desc&limit=1", nil, false)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var page struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
		Pagination struct {
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Wrench", page.Data[0].Name)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	res, body = s.do(t, http.MethodGet, "/api/products/categories", nil, false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `["Hardware","Tools"]`, string(body))
}

func TestStatisticsRoute(t *testing.T) {
	s := newTestServer(t)
	for i, stock := range []int{20, 0, 5, 10} {
		s.createProduct(t, map[string]interface{}{"name": "P" + strconv.Itoa(i), "category": "A", "stock": stock})
	}

	res, body := s.do(t, http.MethodGet, "/api/products/statistics", nil, true)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var stats service.Statistics
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 35, stats.Overview.TotalStock)
	assert.Equal(t, 3, stats.Overview.LowStockCount)
	assert.Equal(t, 1, stats.Overview.OutOfStockCount)
	require.Len(t, stats.StockByCategory, 1)
	assert.Equal(t, 100.0, stats.StockByCategory[0].Percentage)
	assert.Equal(t, 4, stats.RecentActivity.UpdatesLast7Days)
	assert.Equal(t, 35, stats.RecentActivity.StockIncrease)
}

func TestImportAndExport(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, map[string]interface{}{"name": "Widget", "stock": 1})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("csvFile", "products.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("name,category,stock\nWidget,Tools,5\nBolt,Hardware,40\n,Hardware,1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	res, body := s.send(t, req)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.JSONEq(t, `{"added":1,"skipped":2}`, string(body))

	res, body = s.do(t, http.MethodPost, "/api/products/import", nil, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.JSONEq(t, `{"error":"CSV file is required"}`, string(body))

	res, body = s.do(t, http.MethodGet, "/api/products/export", nil, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get(fiber.HeaderContentDisposition), "products.csv")
	assert.Equal(t, "id,name,unit,category,brand,stock,status,image\n1,Widget,,,,1,,\n2,Bolt,,Hardware,,40,,", string(body))
}
