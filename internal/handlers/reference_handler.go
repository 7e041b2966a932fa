package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akylbek/transvoucher-go/internal/interfaces"
)

type ReferenceHandler struct {
	currencies  interfaces.CurrencyLister
	networks    interfaces.NetworkLister
	commodities interfaces.CommodityLister
}

func NewReferenceHandler(currencies interfaces.CurrencyLister, networks interfaces.NetworkLister, commodities interfaces.CommodityLister) *ReferenceHandler {
	return &ReferenceHandler{
		currencies:  currencies,
		networks:    networks,
		commodities: commodities,
	}
}

func (h *ReferenceHandler) ListCurrencies(c *gin.Context) {
	items, err := h.currencies.All(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *ReferenceHandler) ListNetworks(c *gin.Context) {
	items, err := h.networks.All(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *ReferenceHandler) ListCommodities(c *gin.Context) {
	items, err := h.commodities.All(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
