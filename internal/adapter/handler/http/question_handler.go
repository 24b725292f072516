package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	appErrors "github.com/furukawa1020/furukawalabo1/pkg/errors"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

// QuestionHandler handles the Q&A inbox endpoints
type QuestionHandler struct {
	logger          *zap.Logger
	questionService *usecase.QuestionService
}

// NewQuestionHandler creates a new question handler instance
func NewQuestionHandler(logger *zap.Logger, questionService *usecase.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		logger:          logger,
		questionService: questionService,
	}
}

// SubmitQuestion handles POST /api/v1/questions
func (h *QuestionHandler) SubmitQuestion(c echo.Context) error {
	var req usecase.SubmitQuestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}

	question, err := h.questionService.Submit(c.Request().Context(), &req, c.RealIP())
	if err != nil {
		if appErrors.CodeOf(err) == appErrors.ErrInvalidArgument {
			return appErrors.ToHTTPError(err)
		}
		appErrors.LogError(h.logger, err, "Failed to submit question")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to submit question",
		})
	}

	return c.JSON(http.StatusCreated, question)
}

// ListAnswered handles GET /api/v1/questions. Only answered questions
// are visible to the public.
func (h *QuestionHandler) ListAnswered(c echo.Context) error {
	questions, err := h.questionService.ListByStatus(c.Request().Context(), model.QuestionStatusAnswered)
	if err != nil {
		appErrors.LogError(h.logger, err, "Failed to list questions")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to list questions",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"questions": questions})
}

// ListByStatus handles GET /api/v1/admin/questions?status=pending
func (h *QuestionHandler) ListByStatus(c echo.Context) error {
	status := model.QuestionStatus(c.QueryParam("status"))
	if status == "" {
		status = model.QuestionStatusPending
	}

	questions, err := h.questionService.ListByStatus(c.Request().Context(), status)
	if err != nil {
		if appErrors.CodeOf(err) == appErrors.ErrInvalidArgument {
			return appErrors.ToHTTPError(err)
		}
		appErrors.LogError(h.logger, err, "Failed to list questions")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to list questions",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"questions": questions})
}

// ModerateRequest is the admin moderation body
type ModerateRequest struct {
	Status model.QuestionStatus `json:"status"`
}

// Moderate handles PATCH /api/v1/admin/questions/:id
func (h *QuestionHandler) Moderate(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid question id"})
	}

	var req ModerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.questionService.Moderate(c.Request().Context(), id, req.Status); err != nil {
		if appErrors.Is(err, domainErrors.ErrQuestionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "question not found"})
		}
		if appErrors.CodeOf(err) == appErrors.ErrInvalidArgument {
			return appErrors.ToHTTPError(err)
		}
		appErrors.LogError(h.logger, err, "Failed to moderate question",
			zap.Int64("question_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to moderate question",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
