package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/domain"
	"github.com/lab-report-explainer/pkg/labparse"
)

// ErrExtractionUnavailable is returned when a document is analyzed but no
// text extractor is configured
var ErrExtractionUnavailable = errors.New("text extraction is not configured")

// ReportService runs the analyze and translate operations: extraction,
// parsing, explanation and optional translation of the explanations.
type ReportService struct {
	refs       domain.ReferenceLookup
	parser     *labparse.Parser
	engine     *ExplanationEngine
	extractor  domain.TextExtractor
	translator domain.Translator
	cfg        domain.AnalysisConfig
	logger     *logrus.Logger
}

// ReportServiceOption configures optional collaborators
type ReportServiceOption func(*ReportService)

// WithExtractor sets the document text extractor
func WithExtractor(extractor domain.TextExtractor) ReportServiceOption {
	return func(s *ReportService) {
		s.extractor = extractor
	}
}

// WithTranslator sets the translator. Without one explanations stay in English.
func WithTranslator(translator domain.Translator) ReportServiceOption {
	return func(s *ReportService) {
		if translator != nil {
			s.translator = translator
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) ReportServiceOption {
	return func(s *ReportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewReportService creates the report service over the given dictionary
func NewReportService(refs domain.ReferenceLookup, cfg domain.AnalysisConfig, opts ...ReportServiceOption) *ReportService {
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 10
	}
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = 200
	}

	s := &ReportService{
		refs:       refs,
		parser:     labparse.NewParser(refs),
		engine:     NewExplanationEngine(NewStatusClassifier(cfg.BorderlineMargin), NewExplanationGenerator(refs)),
		translator: IdentityTranslator{},
		cfg:        cfg,
		logger:     logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeText runs the pipeline on already extracted text. Text that is too
// short yields a result carrying the extraction failure message rather than
// an error. The only error is an unsupported language.
func (s *ReportService) AnalyzeText(ctx context.Context, text, language string) (*domain.AnalysisResult, error) {
	lang, err := validateLanguage(language)
	if err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		Tests:      []domain.ExplainedTest{},
		Language:   lang,
		AnalyzedAt: time.Now().UTC(),
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < s.cfg.MinTextLength {
		s.logger.WithField("text_length", len(text)).Info("Report text too short to analyze")
		result.Error = domain.MsgExtractionFailed
		return result, nil
	}

	parsed := s.parser.Parse(text)
	result.Tests = s.engine.GenerateExplanations(parsed)
	result.RawTextPreview = preview(text, s.cfg.PreviewLength)

	if lang != domain.DefaultLanguage && len(result.Tests) > 0 {
		s.translateExplanations(ctx, result.Tests, lang)
	}

	s.logger.WithFields(logrus.Fields{
		"tests_found": len(result.Tests),
		"language":    lang,
	}).Info("Report analyzed")

	return result, nil
}

// AnalyzeDocument extracts text from an uploaded document, then analyzes it.
// Extraction errors are logged and reported as an extraction failure result.
func (s *ReportService) AnalyzeDocument(ctx context.Context, document []byte, fileType, language string) (*domain.AnalysisResult, error) {
	if _, err := validateLanguage(language); err != nil {
		return nil, err
	}
	if s.extractor == nil {
		return nil, ErrExtractionUnavailable
	}

	text, err := s.extractor.Extract(ctx, document, fileType)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"file_type": fileType,
			"size":      len(document),
			"error":     err,
		}).Warn("Text extraction failed")
		text = ""
	}

	return s.AnalyzeText(ctx, text, language)
}

// TranslateTexts translates texts into language, returning them unchanged
// for English.
func (s *ReportService) TranslateTexts(ctx context.Context, texts []string, language string) ([]string, error) {
	if len(texts) == 0 {
		return nil, domain.NewValidationError("texts", domain.MsgNoTexts, nil)
	}
	if strings.TrimSpace(language) == "" {
		return nil, domain.NewValidationError("targetLanguage", domain.MsgNoTargetLanguage, language)
	}
	lang, err := validateLanguage(language)
	if err != nil {
		return nil, err
	}
	return s.translator.Translate(ctx, texts, lang), nil
}

// References lists the dictionary in order
func (s *ReportService) References() []domain.TestReference {
	return s.refs.All()
}

// Resolve maps a test name or alias to its dictionary entry
func (s *ReportService) Resolve(nameOrAlias string) (domain.TestReference, bool) {
	return s.refs.Resolve(nameOrAlias)
}

// HasExtractor reports whether document analysis is available
func (s *ReportService) HasExtractor() bool {
	return s.extractor != nil
}

func (s *ReportService) translateExplanations(ctx context.Context, tests []domain.ExplainedTest, lang string) {
	texts := make([]string, len(tests))
	for i, t := range tests {
		texts[i] = t.Explanation
	}

	translated := s.translator.Translate(ctx, texts, lang)
	if len(translated) != len(tests) {
		s.logger.WithFields(logrus.Fields{
			"expected": len(tests),
			"got":      len(translated),
		}).Error("Translator returned a mismatched batch, keeping English")
		return
	}

	for i := range tests {
		if translated[i] != tests[i].Explanation {
			tests[i].OriginalExplanation = tests[i].Explanation
			tests[i].Explanation = translated[i]
		}
	}
}

func validateLanguage(language string) (string, error) {
	lang := domain.NormalizeLanguage(language)
	if _, ok := domain.LookupLanguage(lang); !ok {
		return "", domain.NewValidationError("language", fmt.Sprintf("unsupported language %q", language), language)
	}
	return lang, nil
}

func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}
