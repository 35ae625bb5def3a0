package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/resto-pos-api/internal/application/conversion"
	"github.com/jhoicas/resto-pos-api/internal/application/recipe"
	"github.com/jhoicas/resto-pos-api/internal/application/sales"
	"github.com/jhoicas/resto-pos-api/internal/application/stock"
	"github.com/jhoicas/resto-pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/resto-pos-api/internal/infrastructure/metrics"
	"github.com/jhoicas/resto-pos-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/resto-pos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/resto-pos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// newAPI arma la app completa sobre el store en memoria con el catálogo de demostración.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewSeeded()
	rec := metrics.New("pos")

	conv := conversion.NewService(store.Units(), store.ConversionRules(), store.Materials(), log)
	ledger := stock.NewLedger(store, store.Materials(), store.Ledger(), conv, log)
	resolver := recipe.NewResolver(store.MenuItems(), store.Recipes(), store.Materials(), conv)
	engine := sales.NewEngine(store, ledger, resolver, store.Transactions(), rec, log,
		sales.Config{CodePrefix: "TRX", Location: time.UTC})
	receipts := sales.NewReceiptUseCase(engine, pdf.NewReceiptGenerator(), "Resto Demo")

	return apphttp.NewApp(apphttp.AppOptions{
		Name:           "resto-pos-test",
		Log:            log,
		Requests:       rec,
		MetricsHandler: rec.Handler(),
	}, apphttp.RouterDeps{
		Conversions: conv,
		Ledger:      ledger,
		Resolver:    resolver,
		Engine:      engine,
		Receipts:    receipts,
		JWTSecret:   testJWTSecret,
		JWTIssuer:   testIssuer,
	})
}

// call lanza la petición con el rol indicado (vacío = sin token) y devuelve status y body.
func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

func sale(menuItemID string, qty int, tendered string) map[string]any {
	return map[string]any{
		"items":    []map[string]any{{"menu_item_id": menuItemID, "quantity": qty}},
		"tendered": tendered,
	}
}

const (
	admin       = pkgjwt.RoleAdmin
	cashier     = pkgjwt.RoleCashier
	stockkeeper = pkgjwt.RoleStockkeeper
)

// ──────────────────────────────────────────────────────────────────────────────
// Rutas de soporte
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_SinToken(t *testing.T) {
	status, body := call(t, newAPI(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", decode(t, body)["status"])
}

func TestAPI_SinToken_Retorna401(t *testing.T) {
	status, _ := call(t, newAPI(t), http.MethodGet, "/api/materials", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMetrics_ExponeContadores(t *testing.T) {
	app := newAPI(t)
	status, _ := call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuFriedChicken, 1, "15000"))
	require.Equal(t, http.StatusCreated, status)

	status, body := call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	text := string(body)
	assert.Contains(t, text, "pos_sales_created_total 1")
	assert.Contains(t, text, `pos_http_requests_total{method="POST",route="/api/sales",status="201"} 1`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_DescuentaStockYCalculaCambio(t *testing.T) {
	app := newAPI(t)

	status, body := call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuFriedChicken, 5, "100000"))
	require.Equal(t, http.StatusCreated, status, string(body))
	tx := decode(t, body)
	assert.True(t, strings.HasPrefix(tx["code"].(string), "TRX"))
	assert.Equal(t, "75000", tx["total"])
	assert.Equal(t, "25000", tx["change"])
	assert.Equal(t, "completed", tx["status"])
	assert.Equal(t, testUserID, tx["actor_id"])

	status, body = call(t, app, http.MethodGet, "/api/materials/"+memory.MaterialChicken, cashier, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "15", decode(t, body)["on_hand"])
}

func TestCreateSale_StockInsuficiente_Retorna409ConFaltantes(t *testing.T) {
	app := newAPI(t)

	status, body := call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuFriedChicken, 21, "400000"))
	require.Equal(t, http.StatusConflict, status)
	resp := decode(t, body)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp["code"])

	details := resp["details"].(map[string]any)
	shortages := details["shortages"].([]any)
	require.Len(t, shortages, 1)
	first := shortages[0].(map[string]any)
	assert.Equal(t, memory.MaterialChicken, first["material_id"])
	assert.Equal(t, "21", first["required"])
	assert.Equal(t, "20", first["available"])

	_, body = call(t, app, http.MethodGet, "/api/materials/"+memory.MaterialChicken, cashier, nil)
	assert.Equal(t, "20", decode(t, body)["on_hand"], "el stock no cambia")
}

func TestCreateSale_PagoInsuficiente_Retorna409(t *testing.T) {
	status, body := call(t, newAPI(t), http.MethodPost, "/api/sales", cashier, sale(memory.MenuFriedChicken, 2, "20000"))
	require.Equal(t, http.StatusConflict, status)
	resp := decode(t, body)
	assert.Equal(t, "INSUFFICIENT_PAYMENT", resp["code"])
	assert.Equal(t, "30000", resp["details"].(map[string]any)["total"])
}

func TestCreateSale_Validacion_ListaCampos(t *testing.T) {
	app := newAPI(t)

	status, body := call(t, app, http.MethodPost, "/api/sales", cashier, map[string]any{"items": []any{}, "tendered": "1000"})
	require.Equal(t, http.StatusBadRequest, status)
	resp := decode(t, body)
	assert.Equal(t, "VALIDATION", resp["code"])
	fields := resp["fields"].([]any)
	require.NotEmpty(t, fields)
	assert.Equal(t, "items", fields[0].(map[string]any)["field"])

	status, body = call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuFriedChicken, 0, "1000"))
	require.Equal(t, http.StatusBadRequest, status)
	fields = decode(t, body)["fields"].([]any)
	assert.Equal(t, "items[0].quantity", fields[0].(map[string]any)["field"])
}

func TestCreateSale_LimitesDeCantidadYMonto_Retorna400(t *testing.T) {
	app := newAPI(t)

	status, body := call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuWater, 3000000000, "1000"))
	require.Equal(t, http.StatusBadRequest, status, string(body))
	resp := decode(t, body)
	assert.Equal(t, "VALIDATION", resp["code"])
	field := resp["fields"].([]any)[0].(map[string]any)
	assert.Equal(t, "items[0].quantity", field["field"])
	assert.Equal(t, "máximo 100000", field["reason"])

	status, body = call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuWater, 1, "100.005"))
	require.Equal(t, http.StatusBadRequest, status, string(body))
	field = decode(t, body)["fields"].([]any)[0].(map[string]any)
	assert.Equal(t, "tendered", field["field"])
}

func TestCreateSale_MenuInexistente_Retorna404(t *testing.T) {
	status, body := call(t, newAPI(t), http.MethodPost, "/api/sales", cashier, sale("menu-x", 1, "1000"))
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "MENU_ITEM_NOT_FOUND", decode(t, body)["code"])
}

func TestCreateSale_BodegueroNoVende(t *testing.T) {
	status, _ := call(t, newAPI(t), http.MethodPost, "/api/sales", stockkeeper, sale(memory.MenuFriedChicken, 1, "15000"))
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCancelSale_SoloAdminYUnaVez(t *testing.T) {
	app := newAPI(t)
	_, body := call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuFriedChicken, 5, "75000"))
	id := decode(t, body)["id"].(string)

	status, _ := call(t, app, http.MethodPost, "/api/sales/"+id+"/cancel", cashier, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodPost, "/api/sales/"+id+"/cancel", admin, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "cancelled", decode(t, body)["status"])

	_, body = call(t, app, http.MethodGet, "/api/materials/"+memory.MaterialChicken, admin, nil)
	assert.Equal(t, "20", decode(t, body)["on_hand"])

	status, body = call(t, app, http.MethodPost, "/api/sales/"+id+"/cancel", admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_CANCELLED", decode(t, body)["code"])
}

func TestListSales_FiltraPorEstado(t *testing.T) {
	app := newAPI(t)
	call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuFriedChicken, 1, "15000"))
	call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuWater, 1, "2000"))

	status, body := call(t, app, http.MethodGet, "/api/sales?status=completed&limit=10", cashier, nil)
	require.Equal(t, http.StatusOK, status)
	resp := decode(t, body)
	assert.Len(t, resp["items"].([]any), 2)
	assert.EqualValues(t, 10, resp["page"].(map[string]any)["limit"])

	status, _ = call(t, app, http.MethodGet, "/api/sales?status=pending", cashier, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodGet, "/api/sales?day=15-10-2026", cashier, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReceipt_DevuelvePDF(t *testing.T) {
	app := newAPI(t)
	_, body := call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuFriedRice, 2, "30000"))
	tx := decode(t, body)

	req := httptest.NewRequest(http.MethodGet, "/api/sales/"+tx["id"].(string)+"/receipt", nil)
	req.Header.Set("Authorization", tokenForRole(t, cashier))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "recibo-"+tx["code"].(string)+".pdf")
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	status, _ := call(t, app, http.MethodGet, "/api/sales/no-existe/receipt", cashier, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Materiales y unidades
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_ConvierteAUnidadBase(t *testing.T) {
	app := newAPI(t)

	status, body := call(t, app, http.MethodPost, "/api/materials/"+memory.MaterialFlour+"/adjustments", stockkeeper,
		map[string]any{"direction": "in", "amount": "500", "unit": "g", "unit_cost": "3600", "note": "compra"})
	require.Equal(t, http.StatusCreated, status, string(body))
	entry := decode(t, body)
	assert.Equal(t, "0.5", entry["quantity"])
	assert.Equal(t, "10", entry["quantity_before"])
	assert.Equal(t, "10.5", entry["quantity_after"])

	_, body = call(t, app, http.MethodGet, "/api/materials/"+memory.MaterialFlour, stockkeeper, nil)
	assert.Equal(t, "3219.05", decode(t, body)["unit_price"], "(10*3200 + 0.5*3600) / 10.5")

	status, _ = call(t, app, http.MethodPost, "/api/materials/"+memory.MaterialFlour+"/adjustments", cashier,
		map[string]any{"direction": "in", "amount": "1"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodPost, "/api/materials/"+memory.MaterialFlour+"/adjustments", stockkeeper,
		map[string]any{"direction": "sideways", "amount": "0"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, decode(t, body)["fields"].([]any), 2)
}

func TestHistoryYReconcile(t *testing.T) {
	app := newAPI(t)
	call(t, app, http.MethodPost, "/api/sales", cashier, sale(memory.MenuFriedChicken, 3, "45000"))

	status, body := call(t, app, http.MethodGet, "/api/materials/"+memory.MaterialChicken+"/history?direction=out", stockkeeper, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	items := decode(t, body)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "3", items[0].(map[string]any)["quantity"])

	status, _ = call(t, app, http.MethodGet, "/api/materials/"+memory.MaterialChicken+"/history?direction=up", stockkeeper, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodGet, "/api/materials/"+memory.MaterialChicken+"/reconciliation", stockkeeper, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodGet, "/api/materials/"+memory.MaterialChicken+"/reconciliation", admin, nil)
	require.Equal(t, http.StatusOK, status)
	rec := decode(t, body)
	assert.Equal(t, true, rec["consistent"])
	assert.Equal(t, "17", rec["on_hand"])
}

func TestMaterial_Inexistente_Retorna404(t *testing.T) {
	status, body := call(t, newAPI(t), http.MethodGet, "/api/materials/mat-x", cashier, nil)
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "MATERIAL_NOT_FOUND", decode(t, body)["code"])
}

func TestConversions_CrearListarYDuplicado(t *testing.T) {
	app := newAPI(t)
	path := "/api/materials/" + memory.MaterialChicken + "/conversions"

	status, body := call(t, app, http.MethodPost, path, stockkeeper,
		map[string]any{"unit_label": "Ekor", "multiplier": "8"})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "ekor", decode(t, body)["unit_label"])

	status, body = call(t, app, http.MethodPost, path, admin,
		map[string]any{"unit_label": "EKOR", "multiplier": "6"})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_CONVERSION", decode(t, body)["code"])

	status, body = call(t, app, http.MethodGet, path, cashier, nil)
	require.Equal(t, http.StatusOK, status)
	var rules []map[string]any
	require.NoError(t, json.Unmarshal(body, &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "8", rules[0]["multiplier"])
}

func TestUnits_ListarYConvertir(t *testing.T) {
	app := newAPI(t)

	status, body := call(t, app, http.MethodGet, "/api/units", cashier, nil)
	require.Equal(t, http.StatusOK, status)
	var units []map[string]any
	require.NoError(t, json.Unmarshal(body, &units))
	assert.Len(t, units, 6)

	status, body = call(t, app, http.MethodPost, "/api/units/convert", cashier,
		map[string]any{"quantity": "500", "from": "g", "to": "kg"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "0.5", decode(t, body)["result"])

	status, body = call(t, app, http.MethodPost, "/api/units/convert", cashier,
		map[string]any{"quantity": "1", "from": "g", "to": "l"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INCOMPATIBLE_DIMENSION", decode(t, body)["code"])
}

func TestAvailability(t *testing.T) {
	app := newAPI(t)

	status, body := call(t, app, http.MethodGet, "/api/menu-items/"+memory.MenuFriedChicken+"/availability?quantity=25", cashier, nil)
	require.Equal(t, http.StatusOK, status)
	av := decode(t, body)
	assert.Equal(t, false, av["available"])
	assert.Len(t, av["shortages"].([]any), 1)

	status, body = call(t, app, http.MethodGet, "/api/menu-items/"+memory.MenuWater+"/availability", cashier, nil)
	require.Equal(t, http.StatusOK, status)
	av = decode(t, body)
	assert.Equal(t, true, av["available"])
	assert.Empty(t, av["requirements"].([]any))

	status, _ = call(t, app, http.MethodGet, "/api/menu-items/"+memory.MenuWater+"/availability?quantity=0", cashier, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
