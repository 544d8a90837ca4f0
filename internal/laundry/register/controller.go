package register

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
	HardDelete(c *gin.Context)
	Restore(c *gin.Context)
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

// Routes mounts /register and /register-legacy. They differ only in how entries are deleted.
func (ctrl *controllerImpl) Routes(routes gin.IRouter) {
	registerGroup := routes.Group("/register")
	{
		registerGroup.GET("", ctrl.List)
		registerGroup.GET("/:id", ctrl.Read)
		registerGroup.POST("", ctrl.Create)
		registerGroup.PUT("/:id", ctrl.Update)
		registerGroup.DELETE("/:id", ctrl.Delete)
		registerGroup.POST("/:id/restore", ctrl.Restore)
	}

	legacyGroup := routes.Group("/register-legacy")
	{
		legacyGroup.GET("", ctrl.List)
		legacyGroup.GET("/:id", ctrl.Read)
		legacyGroup.POST("", ctrl.Create)
		legacyGroup.PUT("/:id", ctrl.Update)
		legacyGroup.DELETE("/:id", ctrl.HardDelete)
	}
}

func (ctrl *controllerImpl) Create(c *gin.Context) {
	var req CreateEntryRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	created, err := ctrl.Service.Create(c.Request.Context(), audit.ActorFrom(c), req.toInput())
	if err != nil {
		ctrl.fail(c, "create register entry", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Register entry created successfully",
		"register_id": created.RegisterID,
		"entry":       created,
	})
}

func (ctrl *controllerImpl) Read(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	found, err := ctrl.Service.Read(c.Request.Context(), id)
	if err != nil {
		ctrl.fail(c, "read register entry", err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (ctrl *controllerImpl) List(c *gin.Context) {
	var req ListEntryRequestDto
	if err := c.ShouldBindQuery(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	f := Filter{
		Search: req.Search,
		Status: req.Status,
		From:   parseDate(req.From),
		To:     parseDate(req.To),
		Page:   req.Page,
		Size:   req.Size,
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Size == 0 {
		f.Size = 20
	}

	entries, total, err := ctrl.Service.List(c.Request.Context(), f)
	if err != nil {
		ctrl.fail(c, "list register entries", err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	c.JSON(http.StatusOK, EntryListResponseDto{
		Entries: entries,
		Total:   total,
		Page:    f.Page,
		Size:    f.Size,
	})
}

func (ctrl *controllerImpl) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req UpdateEntryRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	updated, err := ctrl.Service.Update(c.Request.Context(), audit.ActorFrom(c), id, req.toInput())
	if err != nil {
		ctrl.fail(c, "update register entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Register entry updated successfully",
		"entry":   updated,
	})
}

func (ctrl *controllerImpl) Delete(c *gin.Context) {
	ctrl.delete(c, false)
}

func (ctrl *controllerImpl) HardDelete(c *gin.Context) {
	ctrl.delete(c, true)
}

func (ctrl *controllerImpl) delete(c *gin.Context, hard bool) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := ctrl.Service.Delete(c.Request.Context(), audit.ActorFrom(c), id, hard); err != nil {
		ctrl.fail(c, "delete register entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Register entry deleted successfully"})
}

func (ctrl *controllerImpl) Restore(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	restored, err := ctrl.Service.Restore(c.Request.Context(), audit.ActorFrom(c), id)
	if err != nil {
		ctrl.fail(c, "restore register entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Register entry restored successfully",
		"entry":   restored,
	})
}

func bindID(c *gin.Context) (uint, bool) {
	var uri EntryIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid register id")
		c.JSON(restErr.Code, restErr)
		return 0, false
	}
	return uri.ID, true
}

func (ctrl *controllerImpl) fail(c *gin.Context, op string, err error) {
	var restErr *rest_err.RestErr
	switch {
	case errors.Is(err, ErrNotFound):
		restErr = rest_err.NewNotFoundError(err.Error())
	case errors.Is(err, ErrNotDeleted):
		restErr = rest_err.NewConflictValidationError(err.Error(), nil)
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidMethod),
		errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrInvalidEntry),
		errors.Is(err, ErrPaidExceeds),
		errors.Is(err, ErrNegativeAmount),
		errors.Is(err, ErrNothingToUpdate):
		restErr = rest_err.NewBadRequestError(err.Error())
	default:
		ctrl.logger.Error(op, zap.Error(err))
		restErr = rest_err.NewInternalServerError()
	}
	c.JSON(restErr.Code, restErr)
}
