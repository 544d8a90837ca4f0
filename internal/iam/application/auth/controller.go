package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/iam/domain/model"
	"garaadka-laundry/internal/iam/domain/user"
	"garaadka-laundry/internal/iam/middleware"
	"garaadka-laundry/internal/pkg/mailer"
	"garaadka-laundry/internal/pkg/rest_err"
	"garaadka-laundry/internal/pkg/validation"
)

type Controller interface {
	Routes(routes gin.IRouter, limiter gin.HandlerFunc)
	Login(c *gin.Context)
	Register(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
	CreateOTP(c *gin.Context)
	ResetPassword(c *gin.Context)
}

type controllerImpl struct {
	Service  Service
	mw       middleware.Middleware
	recorder audit.Recorder
	logger   *zap.Logger
}

func NewController(service Service, mw middleware.Middleware, recorder audit.Recorder, logger *zap.Logger) Controller {
	return &controllerImpl{
		Service:  service,
		mw:       mw,
		recorder: recorder,
		logger:   logger,
	}
}

// Routes registers /auth. limiter throttles the credential endpoints.
func (ctrl *controllerImpl) Routes(routes gin.IRouter, limiter gin.HandlerFunc) {
	authGroup := routes.Group("/auth")
	{
		authGroup.POST("/login", limiter, ctrl.mw.AuditUser(), ctrl.Login)
		authGroup.POST("/register", ctrl.mw.OptionalAuth(), ctrl.mw.AuditUser(), ctrl.Register)
		authGroup.POST("/logout", ctrl.mw.VerifyToken(), ctrl.mw.AuditUser(), ctrl.Logout)
		authGroup.GET("/me", ctrl.mw.VerifyToken(), ctrl.Me)
		authGroup.POST("/otp", limiter, ctrl.CreateOTP)
		authGroup.POST("/password/reset", limiter, ctrl.mw.AuditUser(), ctrl.ResetPassword)
	}
}

func (ctrl *controllerImpl) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	uLogin, err := ctrl.Service.Login(c.Request.Context(), audit.ActorFrom(c), req.Username, req.Password)
	if err != nil {
		var restErr *rest_err.RestErr
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			restErr = rest_err.NewUnauthorizedError(err.Error())
		case errors.Is(err, ErrAccountDisabled):
			restErr = rest_err.NewForbiddenError(err.Error())
		default:
			ctrl.logger.Error("login", zap.Error(err))
			restErr = rest_err.NewInternalServerError()
		}

		c.Set(audit.AuditUserKey, req.Username)
		middleware.LogAuditEvent(c, ctrl.recorder, "users", "", audit.ActionLogin,
			fmt.Sprintf("Failed login attempt for %s: %s", req.Username, restErr.Message), nil, nil)

		c.JSON(restErr.Code, restErr)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		User:    user.ToResponse(uLogin.User),
		Token:   uLogin.AccessToken.Token,
		Expire:  uLogin.AccessToken.Expiry,
	})
}

func (ctrl *controllerImpl) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	var caller *model.User
	if lUser, ok := middleware.GetAuthenticatedUser(c); ok {
		caller = &lUser.User
	}

	created, err := ctrl.Service.Register(c.Request.Context(), audit.ActorFrom(c), req, caller)
	if err != nil {
		var restErr *rest_err.RestErr
		switch {
		case errors.Is(err, user.ErrUsernameDuplicated):
			restErr = rest_err.NewConflictValidationError("Username already exists", nil)
		case errors.Is(err, ErrPositionNotAllowed):
			restErr = rest_err.NewForbiddenError(err.Error())
		case errors.Is(err, user.ErrInvalidInput), errors.Is(err, user.ErrInvalidPosition):
			restErr = rest_err.NewBadRequestError(err.Error())
		default:
			ctrl.logger.Error("register", zap.Error(err))
			restErr = rest_err.NewInternalServerError()
		}
		c.JSON(restErr.Code, restErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user.ToResponse(created),
	})
}

func (ctrl *controllerImpl) Logout(c *gin.Context) {
	lUser, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		restErr := rest_err.NewUnauthorizedError("Authentication required")
		c.JSON(restErr.Code, restErr)
		return
	}

	token := lUser.AccessToken.Token
	if err := ctrl.Service.Logout(c.Request.Context(), audit.ActorFrom(c), lUser.User, token); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			restErr := rest_err.NewUnauthorizedError("Token has been revoked")
			c.JSON(restErr.Code, restErr)
			return
		}
		ctrl.logger.Error("logout", zap.Error(err))
		restErr := rest_err.NewInternalServerError()
		c.JSON(restErr.Code, restErr)
		return
	}
	ctrl.mw.Forget(token)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (ctrl *controllerImpl) Me(c *gin.Context) {
	lUser, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		restErr := rest_err.NewUnauthorizedError("Authentication required")
		c.JSON(restErr.Code, restErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":       user.ToResponse(lUser.User),
		"session_id": lUser.AccessToken.SessionID,
		"expire":     lUser.AccessToken.Expiry,
	})
}

func (ctrl *controllerImpl) CreateOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	if err := ctrl.Service.CreateOTPCode(c.Request.Context(), req.Email); err != nil {
		var restErr *rest_err.RestErr
		switch {
		case errors.Is(err, ErrOTPCodeExist):
			restErr = rest_err.NewConflictValidationError(err.Error(), nil)
		case errors.Is(err, user.ErrNotFound):
			restErr = rest_err.NewNotFoundError(err.Error())
		case errors.Is(err, mailer.ErrMailerNotInitialized):
			restErr = rest_err.NewServiceUnavailableError("Mail delivery is not configured")
		default:
			ctrl.logger.Error("create otp", zap.Error(err))
			restErr = rest_err.NewInternalServerError()
		}
		c.JSON(restErr.Code, restErr)
		return
	}

	c.Status(http.StatusAccepted)
}

func (ctrl *controllerImpl) ResetPassword(c *gin.Context) {
	var req OTPResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	err := ctrl.Service.ChangeUserPwd(c.Request.Context(), audit.ActorFrom(c), req.OTPCode, req.Email, req.Password)
	if err != nil {
		var restErr *rest_err.RestErr
		switch {
		case errors.Is(err, ErrOTPCodeWrong):
			restErr = rest_err.NewForbiddenError(err.Error())
		case errors.Is(err, user.ErrNotFound):
			restErr = rest_err.NewNotFoundError(err.Error())
		default:
			ctrl.logger.Error("reset password", zap.Error(err))
			restErr = rest_err.NewInternalServerError()
		}
		c.JSON(restErr.Code, restErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
