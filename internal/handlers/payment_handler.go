package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/akylbek/transvoucher-go/apierror"
	"github.com/akylbek/transvoucher-go/internal/interfaces"
	"github.com/akylbek/transvoucher-go/internal/middleware"
	"github.com/akylbek/transvoucher-go/internal/telemetry"
	"github.com/akylbek/transvoucher-go/models"
	"github.com/akylbek/transvoucher-go/validator"
)

const maxBodyBytes = 1 << 20

type PaymentHandler struct {
	payments       interfaces.PaymentGateway
	store          interfaces.IdempotencyStore
	idempotencyTTL time.Duration
}

func NewPaymentHandler(payments interfaces.PaymentGateway, store interfaces.IdempotencyStore, idempotencyTTL time.Duration) *PaymentHandler {
	return &PaymentHandler{
		payments:       payments,
		store:          store,
		idempotencyTTL: idempotencyTTL,
	}
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	ctx := c.Request.Context()
	span := trace.SpanFromContext(ctx)

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
		return
	}

	var shape map[string]any
	if err := json.Unmarshal(raw, &shape); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON object"})
		return
	}
	if err := validator.CheckCustomFields(shape["custom_fields"]); err != nil {
		writeError(c, err)
		return
	}

	var req models.CreatePaymentParams
	if err := json.Unmarshal(raw, &req); err != nil {
		telemetry.Logger.Warn("Invalid payment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	telemetry.Logger.Info("Creating payment",
		zap.String("amount", req.Amount.String()),
		zap.String("currency", req.Currency),
		zap.Any("request", telemetry.MaskJSON(shape)),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	payment, err := h.payments.Create(ctx, req)
	if err != nil {
		telemetry.Logger.Warn("Payment creation failed",
			zap.String("error_type", string(apierror.KindOf(err))),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}

	if key := c.GetString("idempotency_key"); key != "" {
		if body, err := json.Marshal(payment); err == nil {
			if err := h.store.Set(ctx, middleware.IdempotencyKey(key), body, h.idempotencyTTL); err != nil {
				telemetry.Logger.Warn("Failed to cache idempotent response",
					zap.String("idempotency_key", key),
					zap.Error(err),
				)
			}
		}
	}

	telemetry.Logger.Info("Payment created successfully",
		zap.String("transaction_id", payment.Key()),
	)

	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.payments.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) GetPaymentLink(c *gin.Context) {
	payment, err := h.payments.PaymentLinkStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var params models.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.payments.List(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PaymentHandler) GetConversionRate(c *gin.Context) {
	rate, err := h.payments.GetConversionRate(c.Request.Context(),
		c.Param("network"),
		c.Param("commodity"),
		c.Param("fiat"),
		c.Query("payment_method"),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}
