package app

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"aqua-vision/internal/domain/entity"
	"aqua-vision/internal/domain/port"
	"aqua-vision/internal/logger"
)

// EncodeOptions формат, в котором отдаётся размеченное изображение.
type EncodeOptions struct {
	Format      string // jpeg или png
	JPEGQuality int
}

type AnalysisService struct {
	users    *UserService
	analyzer port.ImpurityAnalyzer
	format   imaging.Format
	quality  int
}

// AnalysisOutput содержит отчёт по пробе и закодированную картинку с разметкой.
type AnalysisOutput struct {
	Report      entity.ImpurityReport
	ROI         entity.ROI
	Image       []byte
	ContentType string
	Duration    time.Duration
}

// NewAnalysisService создаёт сервис анализа проб.
func NewAnalysisService(users *UserService, analyzer port.ImpurityAnalyzer, opts EncodeOptions) (*AnalysisService, error) {
	format, err := imaging.FormatFromExtension(opts.Format)
	if err != nil {
		return nil, fmt.Errorf("output format %q: %w", opts.Format, err)
	}
	if format != imaging.JPEG && format != imaging.PNG {
		return nil, fmt.Errorf("output format %q is not supported", opts.Format)
	}
	if opts.JPEGQuality == 0 {
		opts.JPEGQuality = 90
	}

	return &AnalysisService{
		users:    users,
		analyzer: analyzer,
		format:   format,
		quality:  opts.JPEGQuality,
	}, nil
}

// ProcessSample анализирует пробу. Входные байты не изменяются,
// поэтому повторный вызов на тех же данных даёт тот же отчёт.
func (s *AnalysisService) ProcessSample(ctx context.Context, photo []byte) (*AnalysisOutput, error) {
	if s.analyzer == nil {
		return nil, entity.ErrAnalyzerNotConfigured
	}

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, photo)
	if err != nil {
		logger.WithError(err).WithField("bytes", len(photo)).Error("Sample analysis failed")
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, result.Annotated, s.format, imaging.JPEGQuality(s.quality)); err != nil {
		return nil, fmt.Errorf("encode annotated image: %w", err)
	}

	out := &AnalysisOutput{
		Report:      result.Report,
		ROI:         result.ROI,
		Image:       buf.Bytes(),
		ContentType: contentType(s.format),
		Duration:    time.Since(start),
	}

	logger.WithFields(logrus.Fields{
		"roi_width":          result.ROI.Width,
		"roi_height":         result.ROI.Height,
		"bubble_count":       result.Report.BubbleCount,
		"algae_count":        result.Report.AlgaeCount,
		"ppm":                result.Report.PPM,
		"drinkability":       result.Report.Drinkability,
		"processing_time_ms": out.Duration.Milliseconds(),
	}).Info("Sample analysis completed")

	return out, nil
}

// AcceptSample обрабатывает фото пробы от пользователя бота:
// на время анализа пользователь в состоянии processing, затем возвращается в меню.
func (s *AnalysisService) AcceptSample(ctx context.Context, userID, chatID int64, photo []byte) (*AnalysisOutput, error) {
	if _, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		return nil, err
	}

	out, err := s.ProcessSample(ctx, photo)

	if _, stateErr := s.users.SetState(ctx, userID, chatID, entity.StateMainMenu); stateErr != nil && err == nil {
		return nil, stateErr
	}

	return out, err
}

func contentType(f imaging.Format) string {
	if f == imaging.PNG {
		return "image/png"
	}
	return "image/jpeg"
}
