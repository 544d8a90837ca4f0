package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/audit/audittest"
	"garaadka-laundry/internal/infra/database/dbtest"
	"garaadka-laundry/internal/laundry/customer"
	"garaadka-laundry/internal/pkg/validation"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Register()

	models := append(audittest.Models(), &customer.Customer{}, &Order{}, &OrderItem{}, &Payment{})
	db := dbtest.New(t, models...)
	svc := NewService(db, NewRepository(db), customer.NewRepository(db), audittest.NewService(db), zap.NewNop())

	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set(audit.AuditUserKey, "clerk")
		c.Next()
	})
	NewController(svc, zap.NewNop()).Routes(api)
	return r, db
}

func seedCustomer(t *testing.T, db *gorm.DB, name, phone string) uint {
	t.Helper()
	c := customer.Customer{CustomerName: name, PhoneNumber: phone}
	require.NoError(t, db.Create(&c).Error)
	return c.CustomerID
}

func send(r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func createOrder(t *testing.T, r http.Handler, customerID uint, items ...map[string]any) (uint, string, float64) {
	t.Helper()
	w, body := send(r, http.MethodPost, "/api/orders", map[string]any{
		"customer_id": customerID,
		"items":       items,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(body["order_id"].(float64)), body["order_number"].(string), body["total_amount"].(float64)
}

func item(name string, qty int, price float64) map[string]any {
	return map[string]any{"item_name": name, "quantity": qty, "unit_price": price}
}

func TestCreate_TotalIsSumOfSubtotals(t *testing.T) {
	r, db := setupRouter(t)
	cid := seedCustomer(t, db, "Amina Yusuf", "+252615550101")

	id, number, total := createOrder(t, r, cid,
		item("Shirt", 2, 3.5),
		map[string]any{"item_name": "Suit", "service_type": "dry_clean", "quantity": 1, "unit_price": 12.99},
		item("Socks", 3, 0.333),
	)
	assert.Equal(t, "ORD-001", number)
	assert.InDelta(t, 20.99, total, 0.0001)

	w, got := send(r, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := got["items"].([]any)
	require.Len(t, items, 3)

	var sum float64
	for _, it := range items {
		sum += it.(map[string]any)["subtotal"].(float64)
	}
	assert.InDelta(t, got["total_amount"].(float64), sum, 0.0001)
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, "unpaid", got["payment_status"])
	assert.Equal(t, "Amina Yusuf", got["customer"].(map[string]any)["customer_name"])

	rows := audittest.Rows(t, db, "orders")
	require.Len(t, rows, 1)
	assert.Equal(t, audit.ActionCreate, rows[0].ActionType)
	assert.Equal(t, fmt.Sprint(id), rows[0].RecordID)
	assert.Contains(t, rows[0].Status, "ORD-001")
}

func TestCreate_OrderNumbersIncrement(t *testing.T) {
	r, db := setupRouter(t)
	cid := seedCustomer(t, db, "Amina Yusuf", "+252615550101")

	var last uint
	for i := 1; i <= 3; i++ {
		id, number, _ := createOrder(t, r, cid, item("Shirt", 1, 2))
		assert.Equal(t, fmt.Sprintf("ORD-%03d", i), number)
		last = id
	}

	w, _ := send(r, http.MethodDelete, fmt.Sprintf("/api/orders/%d", last), nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, number, _ := createOrder(t, r, cid, item("Shirt", 1, 2))
	assert.Equal(t, "ORD-004", number, "numbers of deleted orders are never reused")
}

func TestCreate_Rejections(t *testing.T) {
	r, db := setupRouter(t)
	cid := seedCustomer(t, db, "Amina Yusuf", "+252615550101")

	w, _ := send(r, http.MethodPost, "/api/orders", map[string]any{
		"customer_id": 999,
		"items":       []any{item("Shirt", 1, 2)},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := send(r, http.MethodPost, "/api/orders", map[string]any{
		"customer_id": cid,
		"items":       []any{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["causes"])

	w, _ = send(r, http.MethodPost, "/api/orders", map[string]any{
		"customer_id": cid,
		"items":       []any{item("Shirt", 0, 2)},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = send(r, http.MethodPost, "/api/orders", map[string]any{
		"customer_id": cid,
		"items":       []any{item("Shirt", 1, 2)},
		"due_date":    "31/12/2024",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var n int64
	require.NoError(t, db.Model(&Order{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, audittest.Rows(t, db, "orders"))
}

func TestPayments(t *testing.T) {
	r, db := setupRouter(t)
	cid := seedCustomer(t, db, "Amina Yusuf", "+252615550101")
	id, _, _ := createOrder(t, r, cid, item("Duvet", 2, 10))
	path := fmt.Sprintf("/api/orders/%d/payments", id)

	w, body := send(r, http.MethodPost, path, map[string]any{"amount": 15, "payment_method": "cash"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "partial", body["payment_status"])
	assert.InDelta(t, 5.0, body["outstanding"].(float64), 0.0001)

	w, _ = send(r, http.MethodPost, path, map[string]any{"amount": 6, "payment_method": "cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = send(r, http.MethodPost, path, map[string]any{"amount": 5, "payment_method": "cheque"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = send(r, http.MethodPost, path, map[string]any{"amount": 0, "payment_method": "cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = send(r, http.MethodPost, path, map[string]any{"amount": 5, "payment_method": "card"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "paid", body["payment_status"])

	w, body = send(r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["payments"], 2)

	w, _ = send(r, http.MethodGet, "/api/orders/999/payments", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Len(t, audittest.Rows(t, db, "payments"), 2)
}

func TestPayments_CancelledOrder(t *testing.T) {
	r, db := setupRouter(t)
	cid := seedCustomer(t, db, "Amina Yusuf", "+252615550101")
	id, _, _ := createOrder(t, r, cid, item("Duvet", 1, 10))

	w, _ := send(r, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", id), map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := send(r, http.MethodPost, fmt.Sprintf("/api/orders/%d/payments", id), map[string]any{"amount": 5, "payment_method": "cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrOrderCancelled.Error(), body["message"])
}

func TestUpdate_ReplacesItems(t *testing.T) {
	r, db := setupRouter(t)
	cid := seedCustomer(t, db, "Amina Yusuf", "+252615550101")
	id, _, _ := createOrder(t, r, cid, item("Duvet", 2, 10), item("Shirt", 1, 3))
	path := fmt.Sprintf("/api/orders/%d", id)

	w, _ := send(r, http.MethodPost, path+"/payments", map[string]any{"amount": 10, "payment_method": "mobile"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := send(r, http.MethodPut, path, map[string]any{"items": []any{item("Shirt", 1, 5)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrTotalBelowPaid.Error(), body["message"])

	w, body = send(r, http.MethodPut, path, map[string]any{
		"items": []any{item("Curtains", 3, 10)},
		"notes": "handle with care",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := body["order"].(map[string]any)
	assert.InDelta(t, 30.0, updated["total_amount"].(float64), 0.0001)
	assert.Equal(t, "partial", updated["payment_status"])
	assert.Equal(t, "handle with care", updated["notes"])
	require.Len(t, updated["items"], 1)

	var live, all int64
	require.NoError(t, db.Model(&OrderItem{}).Where("order_id = ?", id).Count(&live).Error)
	require.NoError(t, db.Unscoped().Model(&OrderItem{}).Where("order_id = ?", id).Count(&all).Error)
	assert.EqualValues(t, 1, live)
	assert.EqualValues(t, 3, all)

	w, _ = send(r, http.MethodPut, path, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = send(r, http.MethodPut, "/api/orders/999", map[string]any{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	rows := audittest.Rows(t, db, "orders")
	require.Len(t, rows, 2)
	assert.Equal(t, audit.ActionUpdate, rows[1].ActionType)
	require.NotNil(t, rows[1].OldValues)
	assert.Contains(t, *rows[1].OldValues, "Duvet")
	assert.Contains(t, *rows[1].NewValues, "Curtains")
}

func TestUpdateStatus(t *testing.T) {
	r, db := setupRouter(t)
	cid := seedCustomer(t, db, "Amina Yusuf", "+252615550101")
	id, _, _ := createOrder(t, r, cid, item("Shirt", 1, 2))

	w, body := send(r, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", id), map[string]any{"status": "ready"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["order"].(map[string]any)["status"])

	w, _ = send(r, http.MethodPatch, fmt.Sprintf("/api/orders/%d", id), map[string]any{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = send(r, http.MethodPatch, fmt.Sprintf("/api/orders/%d", id), map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	rows := audittest.Rows(t, db, "orders")
	require.Len(t, rows, 3)
	assert.Equal(t, "Order ORD-001 status changed from pending to ready", rows[1].Status)
	assert.Equal(t, "Order ORD-001 status changed from ready to delivered", rows[2].Status)
}

func TestDelete_SoftDeletesOrderAndItems(t *testing.T) {
	r, db := setupRouter(t)
	cid := seedCustomer(t, db, "Amina Yusuf", "+252615550101")
	id, _, _ := createOrder(t, r, cid, item("Shirt", 1, 2), item("Suit", 1, 8))
	path := fmt.Sprintf("/api/orders/%d", id)

	w, _ := send(r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = send(r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = send(r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var o Order
	require.NoError(t, db.Unscoped().First(&o, "order_id = ?", id).Error)
	assert.True(t, o.DeletedAt.Valid)
	require.NotNil(t, o.DeletedBy)
	assert.Equal(t, "clerk", *o.DeletedBy)

	var items []OrderItem
	require.NoError(t, db.Unscoped().Where("order_id = ?", id).Find(&items).Error)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.True(t, it.DeletedAt.Valid)
	}

	rows := audittest.Rows(t, db, "orders")
	require.Len(t, rows, 2)
	assert.Equal(t, audit.ActionDelete, rows[1].ActionType)
}

func TestListAndCustomerOrders(t *testing.T) {
	r, db := setupRouter(t)
	amina := seedCustomer(t, db, "Amina Yusuf", "+252615550101")
	omar := seedCustomer(t, db, "Omar Ali", "+252615550102")

	createOrder(t, r, amina, item("Shirt", 1, 2))
	second, _, _ := createOrder(t, r, amina, item("Suit", 1, 8))
	createOrder(t, r, omar, item("Duvet", 1, 10))

	w, _ := send(r, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", second), map[string]any{"status": "ready"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := send(r, http.MethodGet, "/api/orders?size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, body["total"])
	orders := body["orders"].([]any)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-003", orders[0].(map[string]any)["order_number"])

	w, body = send(r, http.MethodGet, "/api/orders?status=ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])

	w, body = send(r, http.MethodGet, fmt.Sprintf("/api/customers/%d/orders", amina), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["total"])

	w, _ = send(r, http.MethodGet, "/api/customers/999/orders", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = send(r, http.MethodGet, "/api/orders?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
