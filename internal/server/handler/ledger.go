package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sealchain/sealchain/internal/ledger"
	"go.uber.org/zap"
)

// LedgerHandler exposes the ledger's read-only views and the single-writer
// append boundary over HTTP.
type LedgerHandler struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(l *ledger.Ledger, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: l, logger: logger}
}

// Register mounts the ledger routes on the given router group.
func (h *LedgerHandler) Register(rg *gin.RouterGroup) {
	l := rg.Group("/ledger")
	{
		l.GET("", h.Overview)
		l.GET("/verify", h.Verify)
		l.GET("/records", h.ListRecords)
		l.GET("/records/:idx", h.GetRecord)
		l.GET("/payloads", h.ListPayloads)
		l.POST("/records", h.Append)
	}
}

// appendRequest is the body of POST /ledger/records.
type appendRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// Overview handles GET /ledger — chain length, tip digest and difficulty.
func (h *LedgerHandler) Overview(c *gin.Context) {
	tip := h.ledger.Tip()
	c.JSON(http.StatusOK, gin.H{
		"records":    h.ledger.Len(),
		"tip":        tip.Digest,
		"difficulty": h.ledger.Difficulty(),
	})
}

// Verify handles GET /ledger/verify — walks the full chain and reports
// integrity. A broken chain is a normal diagnostic result, not a 5xx.
func (h *LedgerHandler) Verify(c *gin.Context) {
	err := h.ledger.Verify(c.Request.Context())
	RecordVerification(err == nil)
	if err != nil {
		h.logger.Warn("ledger integrity check failed", zap.Error(err))

		var verr *ledger.VerifyError
		if errors.As(err, &verr) {
			c.JSON(http.StatusOK, gin.H{
				"valid": false,
				"index": verr.Index,
				"check": verr.Reason,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// ListRecords handles GET /ledger/records — the full ordered chain.
func (h *LedgerHandler) ListRecords(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"records": h.ledger.Records()})
}

// GetRecord handles GET /ledger/records/:idx — a single record.
func (h *LedgerHandler) GetRecord(c *gin.Context) {
	idx, err := strconv.ParseUint(c.Param("idx"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idx must be a non-negative integer"})
		return
	}

	rec, err := h.ledger.Get(idx)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListPayloads handles GET /ledger/payloads — the payload-only projection.
func (h *LedgerHandler) ListPayloads(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"payloads": h.ledger.Payloads()})
}

// Append handles POST /ledger/records — seals and appends one payload.
// The call blocks until proof-of-work completes.
func (h *LedgerHandler) Append(c *gin.Context) {
	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload is required"})
		return
	}

	rec, err := h.ledger.Append(c.Request.Context(), req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ledger.ErrSealExhausted):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			h.logger.Error("ledger append", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to append record"})
		}
		return
	}

	RecordAppend(rec.Nonce + 1)
	h.logger.Info("record appended",
		zap.Uint64("index", rec.Index),
		zap.String("digest", rec.Digest),
	)
	c.JSON(http.StatusCreated, rec)
}
