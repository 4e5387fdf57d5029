package handler

import (
	"errors"
	"net/http"

	"github.com/ajitseee/sweetshop/internal/apierror"
	"github.com/ajitseee/sweetshop/internal/dto"
	"github.com/ajitseee/sweetshop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SweetsHandler struct{ svc service.SweetService }

func NewSweetsHandler(svc service.SweetService) *SweetsHandler {
	return &SweetsHandler{svc: svc}
}

// Create godoc
// @Summary Create a sweet (admin)
// @Tags sweets
// @Accept json
// @Produce json
// @Param body body dto.CreateSweetRequest true "Sweet"
// @Success 201 {object} dto.SweetResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /api/sweets [post]
func (h *SweetsHandler) Create(c *gin.Context) {
	var req dto.CreateSweetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List every sweet
// @Tags sweets
// @Produce json
// @Success 200 {array} dto.SweetResponse
// @Router /api/sweets [get]
func (h *SweetsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search godoc
// @Summary Search sweets by name, category and price range
// @Tags sweets
// @Produce json
// @Param name query string false "Name contains (case-insensitive)"
// @Param category query string false "Category contains (case-insensitive)"
// @Param minPrice query number false "Minimum price (inclusive)"
// @Param maxPrice query number false "Maximum price (inclusive)"
// @Success 200 {array} dto.SweetResponse
// @Router /api/sweets/search [get]
func (h *SweetsHandler) Search(c *gin.Context) {
	var filter dto.SweetFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	var ok bool
	if filter.MinPrice, ok = priceQuery(c, "minPrice"); !ok {
		return
	}
	if filter.MaxPrice, ok = priceQuery(c, "maxPrice"); !ok {
		return
	}

	resp, err := h.svc.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// priceQuery parses an optional decimal query parameter. An empty value means unset.
func priceQuery(c *gin.Context, key string) (*decimal.Decimal, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewValidation([]apierror.FieldError{
			{Field: key, Message: key + " must be a number"},
		}))
		return nil, false
	}
	return &d, true
}

// Get godoc
// @Summary Fetch a single sweet
// @Tags sweets
// @Produce json
// @Param id path string true "Sweet ID"
// @Success 200 {object} dto.SweetResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/sweets/{id} [get]
func (h *SweetsHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Partially update a sweet (admin)
// @Tags sweets
// @Accept json
// @Produce json
// @Param id path string true "Sweet ID"
// @Param body body dto.UpdateSweetRequest true "Fields to change"
// @Success 200 {object} dto.SweetResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/sweets/{id} [put]
func (h *SweetsHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateSweetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete a sweet (admin)
// @Tags sweets
// @Produce json
// @Param id path string true "Sweet ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/sweets/{id} [delete]
func (h *SweetsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Sweet deleted successfully"})
}

// Purchase godoc
// @Summary Buy units of a sweet
// @Tags sweets
// @Accept json
// @Produce json
// @Param id path string true "Sweet ID"
// @Param body body dto.PurchaseRequest false "Units to buy (default 1)"
// @Success 200 {object} dto.SweetResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/sweets/{id}/purchase [post]
func (h *SweetsHandler) Purchase(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.PurchaseRequest
	if !bindOptional(c, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	resp, err := h.svc.Purchase(c.Request.Context(), id, qty)
	if err != nil {
		stockError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Restock godoc
// @Summary Add units to a sweet (admin)
// @Tags sweets
// @Accept json
// @Produce json
// @Param id path string true "Sweet ID"
// @Param body body dto.RestockRequest true "Units to add"
// @Success 200 {object} dto.SweetResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/sweets/{id}/restock [post]
func (h *SweetsHandler) Restock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Quantity must be a positive number"))
		return
	}

	resp, err := h.svc.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		stockError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// stockError answers 400 for a missing sweet on the stock endpoints, which is
// what the shop client expects from purchase and restock.
func stockError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusBadRequest, apierror.New("Sweet not found"))
		return
	}
	respondError(c, err)
}
