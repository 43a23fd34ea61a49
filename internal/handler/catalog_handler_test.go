package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-price-pilot/internal/model"
	"go-price-pilot/internal/pricing"
	"go-price-pilot/internal/repository"
	"go-price-pilot/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) (*fiber.App, service.CatalogService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.ProductRecord{}))

	repo := repository.NewProductRepo(db, pricing.MarginPercent, zap.NewNop())
	catalog := service.NewCatalogService(repo, pricing.MarginPercent, nil, zap.NewNop())
	catalog.Load(context.Background())

	app := fiber.New()
	SetupRoutes(app, NewCatalogHandler(catalog), NewDashboardHandler(service.NewDashboardService(catalog)), nil)
	return app, catalog
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, []byte) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

type createdResponse struct {
	Message string        `json:"message"`
	Data    model.Product `json:"data"`
}

func createSilla(t *testing.T, app *fiber.App) model.Product {
	status, body := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":                  "Silla",
		"category":              "Muebles",
		"cost":                  100,
		"shipping":              10,
		"tax_rate":              21,
		"profit_margin_percent": 30,
		"links":                 []map[string]string{{"name": "Proveedor", "url": "https://example.com/silla"}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var resp createdResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data
}

func TestProductCRUDOverHTTP(t *testing.T) {
	app, _ := setupTestApp(t)
	silla := createSilla(t, app)
	assert.NotEqual(t, uuid.Nil, silla.ID)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, status)
	var products []model.Product
	require.NoError(t, json.Unmarshal(body, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Silla", products[0].Name)
	assert.Equal(t, []model.ProductLink{{Name: "Proveedor", URL: "https://example.com/silla"}}, products[0].Links)

	status, body = doJSON(t, app, http.MethodPut, "/api/v1/products/"+silla.ID.String(), map[string]interface{}{
		"name": "Silla alta", "category": "Muebles", "cost": 150, "tax_rate": 21, "profit_margin_percent": 30,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/products/"+silla.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	var got model.Product
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Silla alta", got.Name)
	assert.Equal(t, 150.0, got.Cost)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/v1/products/"+silla.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestGetProductsFilters(t *testing.T) {
	app, _ := setupTestApp(t)
	createSilla(t, app)

	_, body := doJSON(t, app, http.MethodGet, "/api/v1/products?q=SIL&category=Muebles", nil)
	var products []model.Product
	require.NoError(t, json.Unmarshal(body, &products))
	assert.Len(t, products, 1)

	_, body = doJSON(t, app, http.MethodGet, "/api/v1/products?q=zz-no-match", nil)
	assert.JSONEq(t, `[]`, string(body))
}

func TestCreateProductValidation(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": " ", "category": "Muebles", "cost": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "ProductInput.Name")

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "a", "category": "b", "cost": -1,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "a", "category": "b", "links": []map[string]string{{"name": "x", "url": "::bad"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateAndDeleteErrors(t *testing.T) {
	app, _ := setupTestApp(t)

	status, _ := doJSON(t, app, http.MethodPut, "/api/v1/products/not-a-uuid", map[string]interface{}{"name": "a", "category": "b"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/products/"+uuid.NewString(), map[string]interface{}{"name": "a", "category": "b"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPriceEndpoints(t *testing.T) {
	app, _ := setupTestApp(t)
	silla := createSilla(t, app)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/products/"+silla.ID.String()+"/price", nil)
	require.Equal(t, http.StatusOK, status)
	var quote service.Quote
	require.NoError(t, json.Unmarshal(body, &quote))
	assert.Equal(t, pricing.MarginPercent, quote.Strategy)
	assert.Equal(t, "110.00 €", quote.Formatted.Base)
	assert.Equal(t, "133.10 €", quote.Formatted.WithTax)
	assert.Equal(t, "173.03 €", quote.Formatted.FinalPrice)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/products/"+silla.ID.String()+"/price", map[string]interface{}{"margin": 0})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &quote))
	assert.Equal(t, "133.10 €", quote.Formatted.FinalPrice)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/products/"+silla.ID.String()+"/price", map[string]interface{}{"tax_rate": -5})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCategoryEndpoints(t *testing.T) {
	app, _ := setupTestApp(t)
	createSilla(t, app)

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Jardín"})
	require.Equal(t, http.StatusCreated, status)

	_, body := doJSON(t, app, http.MethodGet, "/api/v1/categories", nil)
	assert.JSONEq(t, `["Muebles","Jardín"]`, string(body))

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/categories", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/catalog/reload", nil)
	require.Equal(t, http.StatusOK, status)
	_, body = doJSON(t, app, http.MethodGet, "/api/v1/categories", nil)
	assert.JSONEq(t, `["Muebles"]`, string(body))
}

func TestEditSessionEndpoints(t *testing.T) {
	app, catalog := setupTestApp(t)
	silla := createSilla(t, app)

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/products/"+silla.ID.String()+"/edit", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, catalog.Editing())
	assert.Equal(t, silla.ID, catalog.Editing().ID)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/v1/edit", nil)
	assert.Equal(t, http.StatusNoContent, status)

	_, body := doJSON(t, app, http.MethodGet, "/api/v1/edit", nil)
	assert.JSONEq(t, `{"data":null}`, string(body))
}

func TestStatusAndDashboard(t *testing.T) {
	app, _ := setupTestApp(t)
	createSilla(t, app)

	_, body := doJSON(t, app, http.MethodGet, "/api/v1/catalog/status", nil)
	assert.JSONEq(t, `{"loading":false,"products":1,"strategy":"margin_percent"}`, string(body))

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, status)
	var stats service.CatalogStats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, "173.03 €", stats.Formatted.AverageFinalPrice)
}
