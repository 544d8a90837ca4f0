package user

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
	Routes(routes gin.IRouter, adminGuard gin.HandlerFunc)
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

func (ctrl *controllerImpl) Routes(routes gin.IRouter, adminGuard gin.HandlerFunc) {
	userGroup := routes.Group("/users", adminGuard)
	{
		userGroup.GET("", ctrl.List)
		userGroup.GET("/:id", ctrl.Read)
		userGroup.PUT("/:id", ctrl.Update)
		userGroup.DELETE("/:id", ctrl.Delete)
	}
}

func (ctrl *controllerImpl) Read(c *gin.Context) {
	var uri UserIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid user id")
		c.JSON(restErr.Code, restErr)
		return
	}

	found, err := ctrl.Service.Read(c.Request.Context(), User{ID: uri.ID})
	if err != nil {
		ctrl.fail(c, "read user", err)
		return
	}
	c.JSON(http.StatusOK, ToResponse(found))
}

func (ctrl *controllerImpl) List(c *gin.Context) {
	var req ListUserRequestDto
	if err := c.ShouldBindQuery(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	users, total, err := ctrl.Service.List(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		ctrl.fail(c, "list users", err)
		return
	}

	response := UserListResponseDto{
		Users: make([]UserResponseDto, 0, len(users)),
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}
	for _, u := range users {
		response.Users = append(response.Users, ToResponse(u))
	}
	c.JSON(http.StatusOK, response)
}

func (ctrl *controllerImpl) Update(c *gin.Context) {
	var uri UserIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid user id")
		c.JSON(restErr.Code, restErr)
		return
	}

	var req UpdateUserRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	updated, err := ctrl.Service.Update(c.Request.Context(), audit.ActorFrom(c), uri.ID, req.toInput())
	if err != nil {
		ctrl.fail(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    ToResponse(updated),
	})
}

func (ctrl *controllerImpl) Delete(c *gin.Context) {
	var uri UserIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		restErr := rest_err.NewBadRequestError("invalid user id")
		c.JSON(restErr.Code, restErr)
		return
	}

	if err := ctrl.Service.Delete(c.Request.Context(), audit.ActorFrom(c), uri.ID); err != nil {
		ctrl.fail(c, "delete user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (ctrl *controllerImpl) fail(c *gin.Context, op string, err error) {
	var restErr *rest_err.RestErr
	switch {
	case errors.Is(err, ErrNotFound):
		restErr = rest_err.NewNotFoundError(err.Error())
	case errors.Is(err, ErrUsernameDuplicated):
		restErr = rest_err.NewConflictValidationError(err.Error(), nil)
	case errors.Is(err, ErrCannotDeleteSelf):
		restErr = rest_err.NewForbiddenError(err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidPosition), errors.Is(err, ErrNothingToUpdate):
		restErr = rest_err.NewBadRequestError(err.Error())
	default:
		ctrl.logger.Error(op, zap.Error(err))
		restErr = rest_err.NewInternalServerError()
	}
	c.JSON(restErr.Code, restErr)
}
