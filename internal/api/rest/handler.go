package rest

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "aqua-vision/internal/application"
	"aqua-vision/internal/domain/entity"
	"aqua-vision/internal/logger"
)

// imageField имя поля multipart-формы с фото пробы
const imageField = "image"

// SampleProcessor анализ пробы (реализуется app.AnalysisService).
type SampleProcessor interface {
	ProcessSample(ctx context.Context, photo []byte) (*app.AnalysisOutput, error)
}

// AnalyzeResponse ответ POST /analyze.
type AnalyzeResponse struct {
	BubbleCount     int                 `json:"bubble_count"`
	AlgaeCount      int                 `json:"algae_count"`
	TotalImpurities int                 `json:"total_impurities"`
	PPM             float64             `json:"ppm"`
	Drinkability    entity.Drinkability `json:"drinkability"`
	ProcessedImage  string              `json:"processed_image"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler собирает gin-роутер HTTP API.
func NewHandler(processor SampleProcessor, maxUploadBytes int64) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors(), requestSizeLimiter(maxUploadBytes))

	r.GET("/health", healthCheck)
	r.POST("/analyze", analyzeSample(processor))

	return r
}

func analyzeSample(p SampleProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile(imageField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(c, http.StatusRequestEntityTooLarge, "Image is too large")
				return
			}
			respondError(c, http.StatusBadRequest, "No image file provided")
			return
		}

		file, err := header.Open()
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer file.Close()

		photo, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		logger.WithFields(logrus.Fields{
			"filename": header.Filename,
			"bytes":    len(photo),
		}).Debug("Received sample image")

		out, err := p.ProcessSample(c.Request.Context(), photo)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		c.JSON(http.StatusOK, AnalyzeResponse{
			BubbleCount:     out.Report.BubbleCount,
			AlgaeCount:      out.Report.AlgaeCount,
			TotalImpurities: out.Report.TotalImpurities,
			PPM:             out.Report.PPM,
			Drinkability:    out.Report.Drinkability,
			ProcessedImage:  base64.StdEncoding.EncodeToString(out.Image),
		})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func respondError(c *gin.Context, code int, message string) {
	logger.WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"ip":          c.ClientIP(),
	}).Error(message)

	c.AbortWithStatusJSON(code, ErrorResponse{Error: message})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	}
}

// cors разрешает запросы из браузерного фронтенда.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
