package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akylbek/transvoucher-go/internal/interfaces"
	"github.com/akylbek/transvoucher-go/internal/repository"
)

type LedgerHandler struct {
	repo interfaces.LedgerRepository
}

func NewLedgerHandler(repo interfaces.LedgerRepository) *LedgerHandler {
	return &LedgerHandler{repo: repo}
}

func (h *LedgerHandler) GetBalance(c *gin.Context) {
	currency := strings.ToUpper(c.Param("currency"))

	balance, err := h.repo.GetBalance(c.Request.Context(), currency)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No settled payments in " + currency})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch balance"})
		return
	}

	c.JSON(http.StatusOK, balance)
}
