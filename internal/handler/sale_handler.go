package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/service"
)

type SaleHandler struct {
	sales  *service.SalesService
	logger *zap.Logger
}

func NewSaleHandler(sales *service.SalesService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		sales:  sales,
		logger: logger,
	}
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	sales, err := h.sales.ListSales(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	sale, err := h.sales.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) UpdateSaleStatus(c *gin.Context) {
	var req domain.UpdateSaleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.sales.UpdateSaleStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
