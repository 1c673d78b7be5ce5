// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/application/usecase/category"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
	"github.com/media-shelf/backend/internal/integration/entrypoint/dto"
	"github.com/media-shelf/backend/internal/integration/entrypoint/middleware"
)

// CategoryController handles category tree endpoints.
type CategoryController struct {
	listUseCase   *category.ListCategoriesUseCase
	treeUseCase   *category.GetCategoryTreeUseCase
	pathUseCase   *category.GetCategoryPathUseCase
	pathsUseCase  *category.GetCategoryPathsUseCase
	createUseCase *category.CreateCategoryUseCase
	updateUseCase *category.UpdateCategoryUseCase
	deleteUseCase *category.DeleteCategoryUseCase
}

// NewCategoryController creates a new category controller instance.
func NewCategoryController(
	listUseCase *category.ListCategoriesUseCase,
	treeUseCase *category.GetCategoryTreeUseCase,
	pathUseCase *category.GetCategoryPathUseCase,
	pathsUseCase *category.GetCategoryPathsUseCase,
	createUseCase *category.CreateCategoryUseCase,
	updateUseCase *category.UpdateCategoryUseCase,
	deleteUseCase *category.DeleteCategoryUseCase,
) *CategoryController {
	return &CategoryController{
		listUseCase:   listUseCase,
		treeUseCase:   treeUseCase,
		pathUseCase:   pathUseCase,
		pathsUseCase:  pathsUseCase,
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// List handles GET /categories requests.
func (c *CategoryController) List(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), category.ListCategoriesInput{OwnerID: ownerID})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryListResponse(output.Categories))
}

// Children handles GET /categories/children requests. Without parent_id it lists the roots.
func (c *CategoryController) Children(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	input := category.ListChildrenInput{OwnerID: ownerID}
	if raw := ctx.Query("parent_id"); raw != "" {
		parentID, ok := parseCategoryID(ctx, raw)
		if !ok {
			return
		}
		input.ParentID = &parentID
	}

	output, err := c.listUseCase.Children(ctx.Request.Context(), input)
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryListResponse(output.Categories))
}

// Tree handles GET /categories/tree requests.
func (c *CategoryController) Tree(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	output, err := c.treeUseCase.Execute(ctx.Request.Context(), category.GetCategoryTreeInput{OwnerID: ownerID})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryTreeResponse(output.Roots))
}

// Path handles GET /categories/:id/path requests.
func (c *CategoryController) Path(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	categoryID, ok := parseCategoryID(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	output, err := c.pathUseCase.Execute(ctx.Request.Context(), category.GetCategoryPathInput{
		OwnerID:    ownerID,
		CategoryID: categoryID,
	})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryPathResponse(output.Categories))
}

// Paths handles POST /categories/paths requests.
func (c *CategoryController) Paths(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	var req dto.CategoryPathsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidBody(ctx, err)
		return
	}

	output, err := c.pathsUseCase.Execute(ctx.Request.Context(), category.GetCategoryPathsInput{
		OwnerID:     ownerID,
		CategoryIDs: req.IDs,
	})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryPathsResponse(output.Categories))
}

// Create handles POST /categories requests.
func (c *CategoryController) Create(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidBody(ctx, err)
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), category.CreateCategoryInput{
		OwnerID:  ownerID,
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToCategoryResponse(output.Category))
}

// Update handles PATCH /categories/:id requests.
func (c *CategoryController) Update(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	categoryID, ok := parseCategoryID(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidBody(ctx, err)
		return
	}

	input := category.UpdateCategoryInput{
		CategoryID: categoryID,
		OwnerID:    ownerID,
		Name:       req.Name,
	}
	if req.ParentID.Set {
		input.Parent = &category.ParentChange{ParentID: req.ParentID.Value}
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryResponse(output.Category))
}

// Delete handles DELETE /categories/:id requests.
func (c *CategoryController) Delete(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	categoryID, ok := parseCategoryID(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	_, err := c.deleteUseCase.Execute(ctx.Request.Context(), category.DeleteCategoryInput{
		CategoryID: categoryID,
		OwnerID:    ownerID,
	})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// handleCategoryError handles category errors and returns appropriate HTTP responses.
func (c *CategoryController) handleCategoryError(ctx *gin.Context, err error) {
	var catErr *domainerror.CategoryError
	if errors.As(err, &catErr) {
		ctx.JSON(statusForCategoryError(catErr.Kind()), dto.ErrorResponse{
			Error: catErr.Message,
			Code:  string(catErr.Code),
		})
		return
	}

	slog.Error("Category request failed",
		"method", ctx.Request.Method,
		"path", ctx.FullPath(),
		"error", err,
	)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// statusForCategoryError maps category error kinds to HTTP status codes.
func statusForCategoryError(kind domainerror.CategoryErrorKind) int {
	switch kind {
	case domainerror.CategoryErrorKindNotFound:
		return http.StatusNotFound
	case domainerror.CategoryErrorKindForbidden:
		return http.StatusForbidden
	case domainerror.CategoryErrorKindInvalidOperation:
		return http.StatusConflict
	case domainerror.CategoryErrorKindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func requireOwner(ctx *gin.Context) (uuid.UUID, bool) {
	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return uuid.Nil, false
	}
	return ownerID, true
}

func parseCategoryID(ctx *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid category ID format",
			Code:  string(domainerror.ErrCodeInvalidCategoryID),
		})
		return uuid.Nil, false
	}
	return id, true
}

func invalidBody(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Invalid request body",
		Code:    string(domainerror.ErrCodeMissingCategoryFields),
		Details: err.Error(),
	})
}
