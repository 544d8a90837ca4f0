package cashclose

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
	Validate(c *gin.Context)
	Summary(c *gin.Context)
	Create(c *gin.Context)
	List(c *gin.Context)
	ReadByDate(c *gin.Context)
	Read(c *gin.Context)
	Update(c *gin.Context)
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
	closeGroup := routes.Group("/close-cash")
	{
		closeGroup.POST("/validate", ctrl.Validate)
		closeGroup.GET("/summary/:date", ctrl.Summary)
		closeGroup.POST("", ctrl.Create)
		closeGroup.GET("", ctrl.List)
		closeGroup.GET("/date/:date", ctrl.ReadByDate)
		closeGroup.GET("/:id", ctrl.Read)
		closeGroup.PUT("/:id", ctrl.Update)
	}
}

func (ctrl *controllerImpl) Validate(c *gin.Context) {
	var req CashCloseRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	res, err := ctrl.Service.Validate(c.Request.Context(), req.toInput(), 0)
	if err != nil {
		ctrl.fail(c, "validate cash close", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *controllerImpl) Summary(c *gin.Context) {
	var uri CloseDateUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	summary, err := ctrl.Service.Summary(c.Request.Context(), uri.Date)
	if err != nil {
		ctrl.fail(c, "cash close summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (ctrl *controllerImpl) Create(c *gin.Context) {
	var req CashCloseRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	created, err := ctrl.Service.Create(c.Request.Context(), audit.ActorFrom(c), req.toInput())
	if err != nil {
		ctrl.fail(c, "create cash close", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Cash closed successfully",
		"close_id": created.CloseID,
		"close":    created,
	})
}

func (ctrl *controllerImpl) List(c *gin.Context) {
	var req ListCashCloseRequestDto
	if err := c.ShouldBindQuery(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	closes, err := ctrl.Service.List(c.Request.Context(), req.toFilter())
	if err != nil {
		ctrl.fail(c, "list cash closes", err)
		return
	}
	if closes == nil {
		closes = []CashClose{}
	}
	c.JSON(http.StatusOK, gin.H{"closes": closes})
}

func (ctrl *controllerImpl) ReadByDate(c *gin.Context) {
	var uri CloseDateUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	found, err := ctrl.Service.ReadByDate(c.Request.Context(), uri.Date)
	if err != nil {
		ctrl.fail(c, "read cash close by date", err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (ctrl *controllerImpl) Read(c *gin.Context) {
	var uri CloseIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid cash close id")
		c.JSON(restErr.Code, restErr)
		return
	}

	found, err := ctrl.Service.Read(c.Request.Context(), uri.ID)
	if err != nil {
		ctrl.fail(c, "read cash close", err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (ctrl *controllerImpl) Update(c *gin.Context) {
	var uri CloseIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid cash close id")
		c.JSON(restErr.Code, restErr)
		return
	}

	var req UpdateCashCloseRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	updated, err := ctrl.Service.Update(c.Request.Context(), audit.ActorFrom(c), uri.ID, req.toInput())
	if err != nil {
		ctrl.fail(c, "update cash close", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Cash close updated successfully",
		"close":   updated,
	})
}

func (ctrl *controllerImpl) fail(c *gin.Context, op string, err error) {
	var (
		restErr *rest_err.RestErr
		invalid *InvalidError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		restErr = rest_err.NewNotFoundError(err.Error())
	case IsDuplicate(err):
		restErr = rest_err.NewConflictValidationError(ErrAlreadyClosed.Error(), []rest_err.Causes{
			rest_err.NewCause("close_date", "already closed"),
		})
	case errors.As(err, &invalid):
		causes := make([]rest_err.Causes, 0, len(invalid.Result.Errors))
		for _, p := range invalid.Result.Errors {
			causes = append(causes, rest_err.NewCause(p.Field, p.Message))
		}
		restErr = rest_err.NewBadRequestValidationError(invalid.Result.Message, causes)
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrNothingToUpdate):
		restErr = rest_err.NewBadRequestError(err.Error())
	default:
		ctrl.logger.Error(op, zap.Error(err))
		restErr = rest_err.NewInternalServerError()
	}
	c.JSON(restErr.Code, restErr)
}
