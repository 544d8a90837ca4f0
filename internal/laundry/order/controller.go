package order

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/pkg/rest_err"
	"garaadka-laundry/internal/pkg/validation"
)

type Controller interface {
	Routes(routes gin.IRouter)
	Create(c *gin.Context)
	Read(c *gin.Context)
	List(c *gin.Context)
	ListByCustomer(c *gin.Context)
	Update(c *gin.Context)
	UpdateStatus(c *gin.Context)
	AddPayment(c *gin.Context)
	ListPayments(c *gin.Context)
	Delete(c *gin.Context)
}

type controllerImpl struct {
	Service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) Controller {
	return &controllerImpl{
		Service: service,
		logger:  logger,
	}
}

func (ctrl *controllerImpl) Routes(routes gin.IRouter) {
	orderGroup := routes.Group("/orders")
	{
		orderGroup.GET("", ctrl.List)
		orderGroup.GET("/:id", ctrl.Read)
		orderGroup.POST("", ctrl.Create)
		orderGroup.PUT("/:id", ctrl.Update)
		orderGroup.PATCH("/:id", ctrl.UpdateStatus)
		orderGroup.PATCH("/:id/status", ctrl.UpdateStatus)
		orderGroup.DELETE("/:id", ctrl.Delete)
		orderGroup.GET("/:id/payments", ctrl.ListPayments)
		orderGroup.POST("/:id/payments", ctrl.AddPayment)
	}
	routes.GET("/customers/:id/orders", ctrl.ListByCustomer)
}

func (ctrl *controllerImpl) Create(c *gin.Context) {
	var req CreateOrderRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	created, err := ctrl.Service.Create(c.Request.Context(), audit.ActorFrom(c), req.toInput())
	if err != nil {
		ctrl.fail(c, "create order", err)
		return
	}

	c.JSON(http.StatusCreated, CreateOrderResponseDto{
		Message:     "Order created successfully",
		OrderID:     created.OrderID,
		OrderNumber: created.OrderNumber,
		TotalAmount: created.TotalAmount,
		Order:       created,
	})
}

func (ctrl *controllerImpl) Read(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	found, err := ctrl.Service.Read(c.Request.Context(), id)
	if err != nil {
		ctrl.fail(c, "read order", err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (ctrl *controllerImpl) List(c *gin.Context) {
	var req ListOrderRequestDto
	if err := c.ShouldBindQuery(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	f := Filter{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		CustomerID:    req.CustomerID,
		Search:        req.Search,
		Page:          req.Page,
		Size:          req.Size,
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Size == 0 {
		f.Size = 20
	}

	orders, total, err := ctrl.Service.List(c.Request.Context(), f)
	if err != nil {
		ctrl.fail(c, "list orders", err)
		return
	}
	ctrl.writeList(c, orders, total, f.Page, f.Size)
}

func (ctrl *controllerImpl) ListByCustomer(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req ListOrderRequestDto
	if err := c.ShouldBindQuery(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}
	page, size := req.Page, req.Size
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = 20
	}

	orders, total, err := ctrl.Service.ListByCustomer(c.Request.Context(), id, page, size)
	if err != nil {
		ctrl.fail(c, "list customer orders", err)
		return
	}
	ctrl.writeList(c, orders, total, page, size)
}

func (ctrl *controllerImpl) writeList(c *gin.Context, orders []Order, total int64, page, size int) {
	if orders == nil {
		orders = []Order{}
	}
	c.JSON(http.StatusOK, OrderListResponseDto{
		Orders: orders,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

func (ctrl *controllerImpl) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req UpdateOrderRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	updated, err := ctrl.Service.Update(c.Request.Context(), audit.ActorFrom(c), id, req.toInput())
	if err != nil {
		ctrl.fail(c, "update order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order updated successfully",
		"order":   updated,
	})
}

func (ctrl *controllerImpl) UpdateStatus(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req StatusRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	updated, err := ctrl.Service.UpdateStatus(c.Request.Context(), audit.ActorFrom(c), id, req.Status)
	if err != nil {
		ctrl.fail(c, "update order status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   updated,
	})
}

func (ctrl *controllerImpl) AddPayment(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req PaymentRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	payment, updated, err := ctrl.Service.AddPayment(c.Request.Context(), audit.ActorFrom(c), id, req.toInput())
	if err != nil {
		ctrl.fail(c, "add payment", err)
		return
	}
	c.JSON(http.StatusCreated, PaymentResponseDto{
		Message:       "Payment recorded successfully",
		Payment:       payment,
		PaidAmount:    updated.PaidAmount,
		Outstanding:   updated.Outstanding(),
		PaymentStatus: updated.PaymentStatus,
	})
}

func (ctrl *controllerImpl) ListPayments(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	payments, err := ctrl.Service.ListPayments(c.Request.Context(), id)
	if err != nil {
		ctrl.fail(c, "list payments", err)
		return
	}
	if payments == nil {
		payments = []Payment{}
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (ctrl *controllerImpl) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := ctrl.Service.Delete(c.Request.Context(), audit.ActorFrom(c), id); err != nil {
		ctrl.fail(c, "delete order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

func bindID(c *gin.Context) (uint, bool) {
	var uri OrderIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid id")
		c.JSON(restErr.Code, restErr)
		return 0, false
	}
	return uri.ID, true
}

func (ctrl *controllerImpl) fail(c *gin.Context, op string, err error) {
	var restErr *rest_err.RestErr
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCustomerNotFound):
		restErr = rest_err.NewNotFoundError(err.Error())
	case errors.Is(err, ErrNoItems),
		errors.Is(err, ErrInvalidItem),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidMethod),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrOverpayment),
		errors.Is(err, ErrTotalBelowPaid),
		errors.Is(err, ErrOrderCancelled),
		errors.Is(err, ErrNothingToUpdate):
		restErr = rest_err.NewBadRequestError(err.Error())
	case errors.Is(err, errOrderNumberTaken):
		restErr = rest_err.NewConflictValidationError("could not allocate an order number, please retry", nil)
	default:
		ctrl.logger.Error(op, zap.Error(err))
		restErr = rest_err.NewInternalServerError()
	}
	c.JSON(restErr.Code, restErr)
}
