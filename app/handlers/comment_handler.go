// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/middleware"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CommentHandlerInterface defines the contract for comment handlers
type CommentHandlerInterface interface {
	CreateComment(c fiber.Ctx) error
	DeleteComment(c fiber.Ctx) error
}

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentFlow businessflow.CommentFlow
	validator   *validator.Validate
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentFlow businessflow.CommentFlow) *CommentHandler {
	return &CommentHandler{
		commentFlow: commentFlow,
		validator:   validator.New(),
	}
}

func (h *CommentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CommentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateComment attaches a new comment to a post
// @Summary Create Comment
// @Description Add a comment to a post
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.CreateCommentRequest true "Comment data"
// @Success 201 {object} dto.APIResponse{data=dto.CommentDTO} "Comment created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /api/v1/posts/{id}/comments [post]
func (h *CommentHandler) CreateComment(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	postID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid post ID", "INVALID_POST_ID", nil)
	}

	var req dto.CreateCommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.commentFlow.CreateComment(ctx, postID, userID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsPostNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Post not found", "POST_NOT_FOUND", nil)
		}

		log.Println("Create comment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create comment", "CREATE_COMMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Comment created", result)
}

// DeleteComment removes a comment and detaches it from its post
// @Summary Delete Comment
// @Description Delete a comment. Only the author or an admin may delete. The containing post's comment counter is decremented.
// @Tags Comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteCommentResponse} "Comment deleted"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /api/v1/comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	commentID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid comment ID", "INVALID_COMMENT_ID", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.commentFlow.DeleteComment(ctx, commentID, userID, middleware.IsAdminRequest(c), clientMetadata(c))
	if err != nil {
		if businessflow.IsCommentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", "COMMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "You may only delete your own comments", "ACCESS_DENIED", nil)
		}

		log.Println("Delete comment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete comment", "DELETE_COMMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Comment deleted", result)
}
