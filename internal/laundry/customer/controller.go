package customer

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
	Update(c *gin.Context)
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
	customerGroup := routes.Group("/customers")
	{
		customerGroup.GET("", ctrl.List)
		customerGroup.GET("/:id", ctrl.Read)
		customerGroup.POST("", ctrl.Create)
		customerGroup.PUT("/:id", ctrl.Update)
		customerGroup.DELETE("/:id", ctrl.Delete)
	}
}

func (ctrl *controllerImpl) Create(c *gin.Context) {
	var req CreateCustomerRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	created, err := ctrl.Service.Create(c.Request.Context(), audit.ActorFrom(c), req.toInput())
	if err != nil {
		ctrl.fail(c, "create customer", err)
		return
	}

	c.JSON(http.StatusCreated, CreateCustomerResponseDto{
		Message:    "Customer created successfully",
		CustomerID: created.CustomerID,
		Customer:   created,
	})
}

func (ctrl *controllerImpl) Read(c *gin.Context) {
	var uri CustomerIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid customer id")
		c.JSON(restErr.Code, restErr)
		return
	}

	found, err := ctrl.Service.Read(c.Request.Context(), uri.ID)
	if err != nil {
		ctrl.fail(c, "read customer", err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (ctrl *controllerImpl) List(c *gin.Context) {
	var req ListCustomerRequestDto
	if err := c.ShouldBindQuery(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	f := Filter{Search: req.Search, Page: req.Page, Size: req.Size}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Size == 0 {
		f.Size = 20
	}

	customers, total, err := ctrl.Service.List(c.Request.Context(), f)
	if err != nil {
		ctrl.fail(c, "list customers", err)
		return
	}
	if customers == nil {
		customers = []Customer{}
	}
	c.JSON(http.StatusOK, CustomerListResponseDto{
		Customers: customers,
		Total:     total,
		Page:      f.Page,
		Size:      f.Size,
	})
}

func (ctrl *controllerImpl) Update(c *gin.Context) {
	var uri CustomerIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid customer id")
		c.JSON(restErr.Code, restErr)
		return
	}

	var req UpdateCustomerRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	updated, err := ctrl.Service.Update(c.Request.Context(), audit.ActorFrom(c), uri.ID, req.toInput())
	if err != nil {
		ctrl.fail(c, "update customer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Customer updated successfully",
		"customer": updated,
	})
}

func (ctrl *controllerImpl) Delete(c *gin.Context) {
	var uri CustomerIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid customer id")
		c.JSON(restErr.Code, restErr)
		return
	}

	if err := ctrl.Service.Delete(c.Request.Context(), audit.ActorFrom(c), uri.ID); err != nil {
		ctrl.fail(c, "delete customer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

func (ctrl *controllerImpl) fail(c *gin.Context, op string, err error) {
	var restErr *rest_err.RestErr
	switch {
	case errors.Is(err, ErrNotFound):
		restErr = rest_err.NewNotFoundError(err.Error())
	case errors.Is(err, ErrPhoneDuplicated):
		restErr = rest_err.NewConflictValidationError(err.Error(), []rest_err.Causes{
			rest_err.NewCause("phone_number", "already in use"),
		})
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidPhone), errors.Is(err, ErrNothingToUpdate):
		restErr = rest_err.NewBadRequestError(err.Error())
	default:
		ctrl.logger.Error(op, zap.Error(err))
		restErr = rest_err.NewInternalServerError()
	}
	c.JSON(restErr.Code, restErr)
}
