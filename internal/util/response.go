package util

import (
	"errors"
	"net/http"

	"school_assess_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Page(c *gin.Context, list interface{}, total int64, page, limit int) {
	Success(c, PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// DomainError maps engine errors onto HTTP responses. Everything in the
// domain taxonomy is recoverable and becomes a 4xx; anything else is an
// infrastructure failure and surfaces as 500.
func DomainError(c *gin.Context, err error) {
	var (
		shapeErr      *AnswerShapeError
		transitionErr *TransitionError
		dateErr       *EffectiveDateError
		gradingErr    *IncompleteGradingError
	)
	switch {
	case errors.As(err, &shapeErr):
		Error(c, http.StatusUnprocessableEntity, shapeErr.Error())
	case errors.As(err, &transitionErr):
		Error(c, http.StatusConflict, transitionErr.Error())
	case errors.As(err, &dateErr):
		Error(c, http.StatusConflict, dateErr.Error())
	case errors.As(err, &gradingErr):
		Error(c, http.StatusConflict, gradingErr.Error())
	case errors.Is(err, ErrAlreadyPublished):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownViolation), errors.Is(err, ErrReasonRequired),
		errors.Is(err, ErrNoQuestions), errors.Is(err, ErrBadDeliveryMode):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrAssessmentNotFound),
		errors.Is(err, ErrAssignmentNotFound), errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrAnswerNotFound), errors.Is(err, ErrClassNotFound),
		errors.Is(err, ErrSubjectNotFound), errors.Is(err, ErrNoTeacherAssigned),
		errors.Is(err, ErrEnrollmentNotFound):
		NotFound(c)
	default:
		LogInternalError(c, err)
	}
}
