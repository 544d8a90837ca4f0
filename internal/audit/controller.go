package audit

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garaadka-laundry/internal/pkg/rest_err"
	"garaadka-laundry/internal/pkg/validation"
)

type Controller interface {
	Routes(routes gin.IRouter, readGuard, adminGuard gin.HandlerFunc)
	List(c *gin.Context)
	Stats(c *gin.Context)
	RecordHistory(c *gin.Context)
	UserActivity(c *gin.Context)
	Export(c *gin.Context)
	Create(c *gin.Context)
	Cleanup(c *gin.Context)
}

type controllerImpl struct {
	Service *Service
	logger  *zap.Logger
}

func NewController(service *Service, logger *zap.Logger) Controller {
	return &controllerImpl{
		Service: service,
		logger:  logger,
	}
}

// Routes expects authentication to have run on routes already.
func (ctrl *controllerImpl) Routes(routes gin.IRouter, readGuard, adminGuard gin.HandlerFunc) {
	auditGroup := routes.Group("/audit")
	{
		auditGroup.GET("", readGuard, ctrl.List)
		auditGroup.GET("/stats", readGuard, ctrl.Stats)
		auditGroup.GET("/export", readGuard, ctrl.Export)
		auditGroup.GET("/record/:table/:id", readGuard, ctrl.RecordHistory)
		auditGroup.GET("/user/:username", readGuard, ctrl.UserActivity)
		auditGroup.POST("", readGuard, ctrl.Create)
		auditGroup.DELETE("/cleanup", adminGuard, ctrl.Cleanup)
	}
}

// List handles GET /api/audit with filters, pagination and sorting.
func (ctrl *controllerImpl) List(c *gin.Context) {
	q, restErr := bindQuery(c)
	if restErr != nil {
		c.JSON(restErr.Code, restErr)
		return
	}

	page, err := ctrl.Service.List(c.Request.Context(), q)
	if err != nil {
		ctrl.internalError(c, "list audit logs", err)
		return
	}
	c.JSON(http.StatusOK, toListResponse(page))
}

func (ctrl *controllerImpl) Stats(c *gin.Context) {
	stats, err := ctrl.Service.Stats(c.Request.Context())
	if err != nil {
		ctrl.internalError(c, "audit stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RecordHistory handles GET /api/audit/record/:table/:id.
func (ctrl *controllerImpl) RecordHistory(c *gin.Context) {
	rows, err := ctrl.Service.RecordHistory(c.Request.Context(), c.Param("table"), c.Param("id"))
	if err != nil {
		ctrl.internalError(c, "record history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"table_name": c.Param("table"),
		"record_id":  c.Param("id"),
		"history":    toResponses(rows),
	})
}

// UserActivity handles GET /api/audit/user/:username.
func (ctrl *controllerImpl) UserActivity(c *gin.Context) {
	q, restErr := bindQuery(c)
	if restErr != nil {
		c.JSON(restErr.Code, restErr)
		return
	}

	page, err := ctrl.Service.UserActivity(c.Request.Context(), c.Param("username"), q.From, q.To, q.Limit, q.Offset)
	if err != nil {
		ctrl.internalError(c, "user activity", err)
		return
	}
	c.JSON(http.StatusOK, toListResponse(page))
}

// Export handles GET /api/audit/export and streams CSV.
func (ctrl *controllerImpl) Export(c *gin.Context) {
	q, restErr := bindQuery(c)
	if restErr != nil {
		c.JSON(restErr.Code, restErr)
		return
	}

	filename := fmt.Sprintf("audit_logs_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	n, err := ctrl.Service.Export(c.Request.Context(), q, c.Writer)
	if err != nil {
		ctrl.internalError(c, "export audit logs", err)
		return
	}

	ctrl.Service.LogEvent(c.Request.Context(), Entry{
		Actor:     ActorFrom(c),
		TableName: "audit",
		Action:    ActionExport,
		Status:    fmt.Sprintf("Exported %d audit logs", n),
	})
}

// Create handles POST /api/audit.
func (ctrl *controllerImpl) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	id, err := ctrl.Service.Create(c.Request.Context(), Entry{
		Actor:     ActorFrom(c),
		TableName: req.TableName,
		RecordID:  req.RecordID,
		Action:    ActionType(strings.ToUpper(string(req.ActionType))),
		Status:    req.Status,
		OldValues: req.OldValues,
		NewValues: req.NewValues,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAction), errors.Is(err, ErrInvalidEntry):
			restErr := rest_err.NewBadRequestError(err.Error())
			c.JSON(restErr.Code, restErr)
		default:
			ctrl.internalError(c, "create audit log", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Audit log created successfully",
		"audit_id": id,
	})
}

// Cleanup handles DELETE /api/audit/cleanup?retention_days=N.
func (ctrl *controllerImpl) Cleanup(c *gin.Context) {
	var req CleanupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		restErr := validation.Translate(err)
		c.JSON(restErr.Code, restErr)
		return
	}

	deleted, err := ctrl.Service.Cleanup(c.Request.Context(), ActorFrom(c), req.RetentionDays)
	if err != nil {
		if errors.Is(err, ErrInvalidRetention) {
			restErr := rest_err.NewBadRequestError(err.Error())
			c.JSON(restErr.Code, restErr)
			return
		}
		ctrl.internalError(c, "cleanup audit logs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        fmt.Sprintf("Deleted %d audit logs older than %d days", deleted, req.RetentionDays),
		"deleted":        deleted,
		"retention_days": req.RetentionDays,
	})
}

func (ctrl *controllerImpl) internalError(c *gin.Context, op string, err error) {
	ctrl.logger.Error(op, zap.Error(err))
	restErr := rest_err.NewInternalServerError()
	c.JSON(restErr.Code, restErr)
}

func bindQuery(c *gin.Context) (Query, *rest_err.RestErr) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return Query{}, validation.Translate(err)
	}

	from, err := ParseBound(req.From, false)
	if err != nil {
		return Query{}, rest_err.NewBadRequestValidationError("Invalid request payload",
			[]rest_err.Causes{rest_err.NewCause("from", err.Error())})
	}
	to, err := ParseBound(req.To, true)
	if err != nil {
		return Query{}, rest_err.NewBadRequestValidationError("Invalid request payload",
			[]rest_err.Causes{rest_err.NewCause("to", err.Error())})
	}

	return Query{
		TableName:  req.TableName,
		ActionType: ActionType(strings.ToUpper(req.ActionType)),
		EmpID:      req.EmpID,
		RecordID:   req.RecordID,
		Search:     req.Search,
		From:       from,
		To:         to,
		Limit:      req.Limit,
		Offset:     req.Offset,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}, nil
}

// ParseBound accepts YYYY-MM-DD or RFC3339. A bare date used as an upper bound
// covers the whole day.
func ParseBound(s string, upper bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(validation.DateLayout, s); err == nil {
		if upper {
			t = t.AddDate(0, 0, 1)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errors.New("must be YYYY-MM-DD or RFC3339")
	}
	t = t.UTC()
	return &t, nil
}
