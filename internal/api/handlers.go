package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/domain"
	"github.com/lab-report-explainer/internal/feedback"
	"github.com/lab-report-explainer/internal/middleware"
	"github.com/lab-report-explainer/internal/service"
)

// allowedUploadTypes maps accepted content types to the extractor file type
var allowedUploadTypes = map[string]string{
	"application/pdf": "pdf",
	"image/jpeg":      "jpeg",
	"image/jpg":       "jpg",
	"image/png":       "png",
}

const (
	defaultFeedbackPage = 50
	maxFeedbackPage     = 500
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"version":    s.components.Version,
		"components": s.components,
	})
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":   domain.DefaultLanguage,
		"languages": domain.SupportedLanguages,
	})
}

func (s *Server) handleTests(c *gin.Context) {
	refs := s.reports.References()
	c.JSON(http.StatusOK, gin.H{
		"count": len(refs),
		"tests": refs,
	})
}

func (s *Server) handleAnalyzeDocument(c *gin.Context) {
	if !s.reports.HasExtractor() {
		s.abortWithError(c, http.StatusServiceUnavailable, domain.ErrExtractionFailed,
			"Document analysis is not available. Submit the report text instead.", "")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.abortWithError(c, http.StatusBadRequest, domain.ErrPayloadTooLarge, domain.MsgFileTooLarge, "")
			return
		}
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, domain.MsgNoFile, "")
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	fileType, ok := allowedUploadTypes[contentType]
	if !ok {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, domain.MsgInvalidFileType, contentType)
		return
	}
	if fh.Size > s.configManager.GetServerConfig().MaxUploadBytes {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrPayloadTooLarge, domain.MsgFileTooLarge, "")
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, domain.MsgNoFile, err.Error())
		return
	}
	defer f.Close()

	document, err := io.ReadAll(f)
	if err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, domain.MsgNoFile, err.Error())
		return
	}

	result, err := s.reports.AnalyzeDocument(c.Request.Context(), document, fileType, c.PostForm("language"))
	if err != nil {
		s.analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAnalyzeText(c *gin.Context) {
	var req domain.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Request body must be a JSON object.", err.Error())
		return
	}

	result, err := s.reports.AnalyzeText(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		s.analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) analysisError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		s.abortWithError(c, http.StatusBadRequest, domain.ErrUnsupportedLanguage, ve.Message, ve.Field)
	case errors.Is(err, service.ErrExtractionUnavailable):
		s.abortWithError(c, http.StatusServiceUnavailable, domain.ErrExtractionFailed, domain.MsgExtractionFailed, "")
	default:
		s.logger.WithFields(logrus.Fields{
			"correlation_id": middleware.GetCorrelationID(c),
			"error":          err,
		}).Error("Analysis error")
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrInternalServer, domain.MsgAnalysisFailed, "")
	}
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req domain.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, domain.MsgNoTexts, err.Error())
		return
	}

	translations, err := s.reports.TranslateTexts(c.Request.Context(), req.Texts, req.TargetLanguage)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			code := domain.ErrValidation
			if ve.Field == "language" {
				code = domain.ErrUnsupportedLanguage
			}
			s.abortWithError(c, http.StatusBadRequest, code, ve.Message, ve.Field)
			return
		}
		s.logger.WithError(err).Error("Translation error")
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrInternalServer, domain.MsgTranslationFailed, "")
		return
	}

	c.JSON(http.StatusOK, domain.TranslateResponse{Translations: translations})
}

func (s *Server) requireFeedback(c *gin.Context) {
	if s.feedback == nil {
		s.abortWithError(c, http.StatusServiceUnavailable, domain.ErrFeedback, "Feedback collection is disabled.", "")
		return
	}
	c.Next()
}

func (s *Server) handleSubmitFeedback(c *gin.Context) {
	var fb feedback.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid feedback payload.", err.Error())
		return
	}
	fb.ID = 0
	if ref, ok := s.reports.Resolve(fb.TestName); ok {
		fb.TestName = ref.Name
	}

	if err := s.feedback.Save(c.Request.Context(), &fb); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			s.abortWithError(c, http.StatusBadRequest, domain.ErrValidation, ve.Message, ve.Field)
			return
		}
		s.logger.WithError(err).Error("Failed to save feedback")
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrFeedback, "Failed to save feedback.", "")
		return
	}

	c.JSON(http.StatusCreated, fb)
}

func (s *Server) handleListFeedback(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultFeedbackPage)
	if err != nil || limit <= 0 || limit > maxFeedbackPage {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput,
			fmt.Sprintf("limit must be between 1 and %d", maxFeedbackPage), "")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "offset must be a non-negative integer", "")
		return
	}

	ctx := c.Request.Context()
	entries, err := s.feedback.List(ctx, limit, offset)
	if err != nil {
		s.feedbackError(c, err)
		return
	}
	total, err := s.feedback.Count(ctx)
	if err != nil {
		s.feedbackError(c, err)
		return
	}
	if entries == nil {
		entries = []*feedback.Feedback{}
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (s *Server) handleFeedbackSummary(c *gin.Context) {
	summary, err := s.feedback.Summary(c.Request.Context())
	if err != nil {
		s.feedbackError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": summary})
}

func (s *Server) handleExportFeedback(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="feedback-export.json"`)
	c.Status(http.StatusOK)

	if err := s.feedback.ExportJSON(c.Request.Context(), c.Writer); err != nil {
		// headers are already sent
		s.logger.WithError(err).Error("Feedback export failed")
		_ = c.Error(err)
	}
}

func (s *Server) feedbackError(c *gin.Context, err error) {
	s.logger.WithError(err).Error("Feedback store error")
	s.abortWithError(c, http.StatusInternalServerError, domain.ErrFeedback, "Feedback store error.", "")
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
