// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strconv"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/middleware"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// PostHandlerInterface defines the contract for post handlers
type PostHandlerInterface interface {
	CreatePost(c fiber.Ctx) error
	GetPost(c fiber.Ctx) error
	ListPosts(c fiber.Ctx) error
	UpdatePost(c fiber.Ctx) error
	DeletePost(c fiber.Ctx) error
}

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postFlow  businessflow.PostFlow
	validator *validator.Validate
}

// NewPostHandler creates a new post handler
func NewPostHandler(postFlow businessflow.PostFlow) *PostHandler {
	return &PostHandler{
		postFlow:  postFlow,
		validator: validator.New(),
	}
}

func (h *PostHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PostHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatePost creates a new post owned by the authenticated user
// @Summary Create Post
// @Description Create a new post
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post data"
// @Success 201 {object} dto.APIResponse{data=dto.PostDTO} "Post created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/posts [post]
func (h *PostHandler) CreatePost(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreatePostRequest
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

	result, err := h.postFlow.CreatePost(ctx, userID, &req, clientMetadata(c))
	if err != nil {
		log.Println("Create post failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create post", "CREATE_POST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Post created", result)
}

// GetPost returns a single post with its comments
// @Summary Get Post
// @Description Retrieve a post together with its comments
// @Tags Posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostWithCommentsDTO} "Post"
// @Failure 400 {object} dto.APIResponse "Invalid post ID"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /api/v1/posts/{id} [get]
func (h *PostHandler) GetPost(c fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid post ID", "INVALID_POST_ID", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.postFlow.GetPost(ctx, postID)
	if err != nil {
		if businessflow.IsPostNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Post not found", "POST_NOT_FOUND", nil)
		}

		log.Println("Get post failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load post", "GET_POST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Post loaded", result)
}

// ListPosts returns a page of posts, newest first
// @Summary List Posts
// @Description List posts ordered by creation time, optionally filtered by author
// @Tags Posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param author_id query int false "Filter by author"
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Posts"
// @Failure 400 {object} dto.APIResponse "Invalid pagination"
// @Router /api/v1/posts [get]
func (h *PostHandler) ListPosts(c fiber.Ctx) error {
	page, pageSize := parsePagination(c)

	var authorID *uint
	if authorStr := c.Query("author_id"); authorStr != "" {
		parsed, err := strconv.ParseUint(authorStr, 10, 32)
		if err != nil || parsed == 0 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid author ID", "INVALID_AUTHOR_ID", nil)
		}
		id := uint(parsed)
		authorID = &id
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.postFlow.ListPosts(ctx, authorID, page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List posts failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list posts", "LIST_POSTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Posts loaded", result)
}

// UpdatePost edits a post owned by the authenticated user
// @Summary Update Post
// @Description Update a post's title, content, or attachment. Only the author or an admin may update.
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.UpdatePostRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.PostDTO} "Post updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /api/v1/posts/{id} [put]
func (h *PostHandler) UpdatePost(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	postID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid post ID", "INVALID_POST_ID", nil)
	}

	var req dto.UpdatePostRequest
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

	result, err := h.postFlow.UpdatePost(ctx, postID, userID, middleware.IsAdminRequest(c), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsPostNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Post not found", "POST_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "You may only edit your own posts", "ACCESS_DENIED", nil)
		}

		log.Println("Update post failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update post", "UPDATE_POST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Post updated", result)
}

// DeletePost removes a post and all of its comments
// @Summary Delete Post
// @Description Delete a post together with every comment attached to it. Only the author or an admin may delete.
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeletePostResponse} "Post deleted"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /api/v1/posts/{id} [delete]
func (h *PostHandler) DeletePost(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	postID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid post ID", "INVALID_POST_ID", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.postFlow.DeletePost(ctx, postID, userID, middleware.IsAdminRequest(c), clientMetadata(c))
	if err != nil {
		if businessflow.IsPostNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Post not found", "POST_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "You may only delete your own posts", "ACCESS_DENIED", nil)
		}

		log.Println("Delete post failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete post", "DELETE_POST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Post deleted", result)
}
