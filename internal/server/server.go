// Package server exposes the word and file transforms over HTTP.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/japinder12/wordcipher-go/internal/logging"
	"github.com/japinder12/wordcipher-go/pkg/wordcipher"
)

const maxUpload = 32 << 20

type Handler struct {
	audit *logging.AuditLogger
}

func NewHandler(audit *logging.AuditLogger) *Handler {
	if audit == nil {
		audit = logging.Discard()
	}
	return &Handler{audit: audit.WithComponent("server")}
}

// NewRouter wires the API routes. allowOrigins feeds the CORS policy; an
// empty list disables CORS headers altogether.
func NewRouter(h *Handler, allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestID())

	if len(allowOrigins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = allowOrigins
		config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		config.ExposeHeaders = []string{"X-Request-ID", "X-Verify-Total", "X-Verify-Verified", "X-Verify-Failed", "Content-Disposition"}
		router.Use(cors.New(config))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)

		words := api.Group("/words")
		{
			words.POST("/encrypt", h.EncryptWord)
			words.POST("/decrypt", h.DecryptWord)
		}

		files := api.Group("/files")
		{
			files.POST("/encrypt", h.EncryptFile)
			files.POST("/decrypt", h.DecryptFile)
		}
	}
	return router
}

func (h *Handler) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		start := time.Now()

		c.Next()

		outcome := logging.OutcomeOK
		if c.Writer.Status() >= http.StatusBadRequest {
			outcome = logging.OutcomeRejected
		}
		_ = h.audit.Emit(logging.AuditEvent{
			RequestID: id,
			EventType: logging.EventHTTPRequest,
			Outcome:   outcome,
			Metadata: map[string]any{
				"method":      c.Request.Method,
				"path":        c.FullPath(),
				"status":      c.Writer.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
			},
		})
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "wordcipher API is running",
	})
}

func (h *Handler) EncryptWord(c *gin.Context) {
	var req EncryptWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	rec, err := wordcipher.EncryptWord(req.Word, req.Passphrase)
	if err != nil {
		h.failCipher(c, logging.EventWordEncrypt, err)
		return
	}
	h.emit(c, logging.EventWordEncrypt, logging.OutcomeOK, map[string]any{"runes": len([]rune(req.Word))})
	c.JSON(http.StatusOK, EncryptWordResponse{Ciphertext: rec.Ciphertext, Tag: rec.Tag})
}

func (h *Handler) DecryptWord(c *gin.Context) {
	var req DecryptWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	plain, verified, err := wordcipher.DecryptWord(req.Ciphertext, req.Passphrase, req.Tag)
	if err != nil {
		h.failCipher(c, logging.EventWordDecrypt, err)
		return
	}
	h.emit(c, logging.EventWordDecrypt, logging.OutcomeOK, map[string]any{"verified": verified})
	c.JSON(http.StatusOK, DecryptWordResponse{Plaintext: plain, Verified: verified})
}

func (h *Handler) EncryptFile(c *gin.Context) {
	name, data, pass, ok := readUpload(c)
	if !ok {
		return
	}
	var out bytes.Buffer
	if err := wordcipher.EncryptStream(bytes.NewReader(data), &out, pass); err != nil {
		h.failCipher(c, logging.EventFileEncrypt, err)
		return
	}
	h.emit(c, logging.EventFileEncrypt, logging.OutcomeOK, map[string]any{"bytes": len(data)})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.enc", name))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", out.Bytes())
}

func (h *Handler) DecryptFile(c *gin.Context) {
	name, data, pass, ok := readUpload(c)
	if !ok {
		return
	}
	var out bytes.Buffer
	counts, err := wordcipher.DecryptStream(bytes.NewReader(data), &out, pass)
	if err != nil {
		h.failCipher(c, logging.EventFileDecrypt, err)
		return
	}
	outcome := logging.OutcomeOK
	if counts.Failed > 0 {
		outcome = logging.OutcomeFailed
	}
	h.emit(c, logging.EventFileDecrypt, outcome, map[string]any{
		"total":    counts.Total,
		"verified": counts.Verified,
		"failed":   counts.Failed,
	})

	c.Header("X-Verify-Total", strconv.Itoa(counts.Total))
	c.Header("X-Verify-Verified", strconv.Itoa(counts.Verified))
	c.Header("X-Verify-Failed", strconv.Itoa(counts.Failed))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.txt", name))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", out.Bytes())
}

func readUpload(c *gin.Context) (name string, data []byte, pass string, ok bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)
	pass = c.PostForm("passphrase")
	if pass == "" {
		fail(c, http.StatusBadRequest, "Passphrase is required")
		return "", nil, "", false
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "File is required")
		return "", nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, fmt.Sprintf("Failed to open upload: %v", err))
		return "", nil, "", false
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		fail(c, http.StatusInternalServerError, fmt.Sprintf("Failed to read upload: %v", err))
		return "", nil, "", false
	}
	name = strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
	if name == "" || name == "." {
		name = "upload"
	}
	return name, buf.Bytes(), pass, true
}

func (h *Handler) failCipher(c *gin.Context, event logging.EventType, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wordcipher.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, wordcipher.ErrFormat):
		status = http.StatusUnprocessableEntity
	}
	h.emit(c, event, logging.OutcomeRejected, nil)
	fail(c, status, err.Error())
}

func (h *Handler) emit(c *gin.Context, event logging.EventType, outcome logging.Outcome, meta map[string]any) {
	_ = h.audit.Emit(logging.AuditEvent{
		RequestID: c.GetString("request_id"),
		EventType: event,
		Outcome:   outcome,
		Metadata:  meta,
	})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Message: msg})
}
