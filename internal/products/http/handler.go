package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"stock-inventory/internal/products"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type ProductService interface {
	CreateProduct(ctx context.Context, in products.Input) (products.Product, error)
	GetProduct(ctx context.Context, id int64) (products.Product, error)
	UpdateProduct(ctx context.Context, id int64, in products.Input) (products.Product, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (products.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, q products.Query, page, limit int) ([]products.Product, int64, error)
	AllProducts(ctx context.Context) ([]products.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type Handler struct {
	service ProductService
}

func NewHandler(svc ProductService) *Handler {
	return &Handler{service: svc}
}

type productRequest struct {
	Name        string  `json:"name" binding:"required" example:"USB-C cable"`
	Category    string  `json:"category" example:"Accessories"`
	Description string  `json:"description" example:"1m braided cable"`
	Quantity    int     `json:"quantity" example:"12"`
	MinQty      int     `json:"min_qty" example:"5"`
	Price       float64 `json:"price" example:"9.99"`
}

func (r productRequest) input() products.Input {
	return products.Input{
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Quantity:    r.Quantity,
		MinQty:      r.MinQty,
		Price:       r.Price,
	}
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required" example:"4"`
}

type errorResponse struct {
	Error string `json:"error" example:"product not found"`
}

type listProductsResponse struct {
	Items      []products.Product `json:"items"`
	Pagination paginationMeta     `json:"pagination"`
}

type paginationMeta struct {
	Page  int   `json:"page" example:"1"`
	Limit int   `json:"limit" example:"10"`
	Total int64 `json:"total" example:"42"`
}

type categoriesResponse struct {
	Items []string `json:"items"`
}

// CreateProduct godoc
// @Summary      Create a new product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      productRequest  true  "Product data"
// @Success      201   {object}  products.Product
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		writeServiceError(c, err, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  products.Product
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "failed to get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct godoc
// @Summary      Replace a product's fields
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Product ID"
// @Param        body  body      productRequest  true  "Product data"
// @Success      200   {object}  products.Product
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		writeServiceError(c, err, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateQuantity godoc
// @Summary      Set the stock count of a product
// @Description  Negative values are stored as zero.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Product ID"
// @Param        body  body      quantityRequest  true  "New quantity"
// @Success      200   {object}  products.Product
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /products/{id}/quantity [patch]
func (h *Handler) UpdateQuantity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.service.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		writeServiceError(c, err, "failed to update quantity")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary      Delete a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		writeServiceError(c, err, "failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProducts godoc
// @Summary      List products with search, filter, sort and pagination
// @Tags         products
// @Produce      json
// @Param        page      query     int     false  "Page number"     default(1)
// @Param        limit     query     int     false  "Items per page"  default(10)
// @Param        search    query     string  false  "Matches name, description or category"
// @Param        category  query     string  false  "Exact category"
// @Param        sort      query     string  false  "name, quantity, price or low_stock"  default(name)
// @Success      200       {object}  listProductsResponse
// @Failure      500       {object}  errorResponse
// @Router       /products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	page := parseQueryInt(c.Query("page"), defaultPage)
	limit := parseQueryInt(c.Query("limit"), defaultLimit)
	q := products.Query{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     products.ParseSort(c.Query("sort")),
	}

	items, total, err := h.service.ListProducts(c.Request.Context(), q, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to get products"})
		return
	}

	c.JSON(http.StatusOK, listProductsResponse{
		Items: items,
		Pagination: paginationMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// ListCategories godoc
// @Summary      List distinct product categories
// @Tags         products
// @Produce      json
// @Success      200  {object}  categoriesResponse
// @Failure      500  {object}  errorResponse
// @Router       /products/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to get categories"})
		return
	}

	c.JSON(http.StatusOK, categoriesResponse{Items: categories})
}

func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, products.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: products.ErrNotFound.Error()})
	case errors.Is(err, products.ErrInvalidName),
		errors.Is(err, products.ErrInvalidQuantity),
		errors.Is(err, products.ErrInvalidMinQty),
		errors.Is(err, products.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return 0, false
	}
	return id, true
}

func parseQueryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
