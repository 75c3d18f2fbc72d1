package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/cccd-inspector-go/internal/config"
	apperrors "github.com/anime-shed/cccd-inspector-go/internal/errors"
	"github.com/anime-shed/cccd-inspector-go/internal/logger"
	"github.com/anime-shed/cccd-inspector-go/internal/service"
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

const version = "1.0.0"

// Handler serves the REST surface.
type Handler struct {
	ocr service.OCRService
	kyc service.KYCService
	cfg *config.Config
}

// NewHandler builds the router. A nil gatherer leaves /metrics unregistered.
func NewHandler(ocr service.OCRService, kyc service.KYCService, cfg *config.Config, gatherer prometheus.Gatherer) http.Handler {
	h := &Handler{ocr: ocr, kyc: kyc, cfg: cfg}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	v1.POST("/quality", h.quality)
	v1.POST("/ocr", h.scan)
	v1.POST("/kyc/verify", h.verifyKYC)
	v1.GET("/kyc/:wallet", h.kycStatus)

	return r
}

func (h *Handler) quality(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var in service.ImageInput
	if isMultipart(c) {
		data, err := readFormFile(c, "image")
		if err != nil {
			respondError(c, err)
			return
		}
		in.Data = data
	} else {
		var req models.QualityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("invalid request format", err))
			return
		}
		in.Ref = req.URL
	}

	report, err := h.ocr.Quality(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) scan(c *gin.Context) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.PipelineTimeout)
	defer cancel()

	in, err := bindScan(c)
	if err != nil {
		respondError(c, err)
		return
	}

	// query parameter takes precedence over the body
	if q := c.Query("number_only"); q != "" {
		in.NumberOnly = q == "true" || q == "1"
	}

	resp, err := h.ocr.Scan(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"request_id":         c.GetString(requestIDKey),
		"number_only":        in.NumberOnly,
		"cached":             resp.Cached,
		"format_valid":       resp.FormatValid,
		"confidence":         resp.ConfidenceScore,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	}).Info("OCR request completed")

	c.JSON(http.StatusOK, resp)
}

func bindScan(c *gin.Context) (service.ScanInput, error) {
	var in service.ScanInput
	if !isMultipart(c) {
		var req models.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return in, apperrors.NewValidationError("invalid request format", err)
		}
		in.Front.Ref = req.FrontURL
		in.Back.Ref = req.BackURL
		in.NumberOnly = req.NumberOnly
		in.ExpectedText = req.ExpectedText
		in.Region = req.Region
		return in, nil
	}

	front, err := readFormFile(c, "front")
	if err != nil {
		return in, err
	}
	in.Front.Data = front
	if _, err := c.FormFile("back"); err == nil {
		if in.Back.Data, err = readFormFile(c, "back"); err != nil {
			return in, err
		}
	}
	if v := c.PostForm("number_only"); v != "" {
		in.NumberOnly, _ = strconv.ParseBool(v)
	}
	in.ExpectedText = c.PostForm("expected_text")
	if v := c.PostForm("region"); v != "" {
		var region models.Region
		if err := json.Unmarshal([]byte(v), &region); err != nil {
			return in, apperrors.NewValidationError("invalid region", err)
		}
		in.Region = &region
	}
	return in, nil
}

func (h *Handler) verifyKYC(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.KYCVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError("invalid request format", err))
		return
	}
	decision, err := h.kyc.Verify(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

func (h *Handler) kycStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	status, err := h.kyc.Status(ctx, c.Param("wallet"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func isMultipart(c *gin.Context) bool {
	return c.ContentType() == "multipart/form-data"
}

func readFormFile(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("missing %s image", field), err)
	}
	return readUpload(header)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable upload", err)
	}
	return data, nil
}
