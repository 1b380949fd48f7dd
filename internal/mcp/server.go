// Package mcp exposes the report pipeline as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/domain"
	"github.com/lab-report-explainer/internal/feedback"
	"github.com/lab-report-explainer/internal/service"
)

// Tool names
const (
	ToolAnalyzeReport       = "analyze_report"
	ToolTranslateTexts      = "translate_texts"
	ToolListReferenceTests  = "list_reference_tests"
	ToolSubmitParseFeedback = "submit_parse_feedback"
)

// Server is the MCP server for the lab report explainer
type Server struct {
	config    domain.MCPConfig
	reports   *service.ReportService
	feedback  feedback.Store
	mcpServer *mcp.Server
	tools     []string
	logger    *logrus.Logger
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server)

// WithFeedbackStore enables the submit_parse_feedback tool
func WithFeedbackStore(store feedback.Store) ServerOption {
	return func(s *Server) {
		s.feedback = store
	}
}

// WithLogger sets a custom logger. Over stdio it must not write to stdout.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates the MCP server and registers its tools
func NewServer(cfg domain.MCPConfig, reports *service.ReportService, opts ...ServerOption) (*Server, error) {
	if reports == nil {
		return nil, fmt.Errorf("report service is required")
	}
	if cfg.ServerName == "" {
		cfg.ServerName = "lab-report-explainer"
	}
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}

	s := &Server{
		config:  cfg,
		reports: reports,
		logger:  logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	s.registerTools()

	s.logger.WithField("tools", s.tools).Info("MCP server initialized")
	return s, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: ToolAnalyzeReport,
		Description: "Analyze the text of a medical lab report. Finds known tests, reads each value and reference range, " +
			"classifies it as normal, low, high or borderline and returns a plain-language explanation, " +
			"optionally translated.",
	}, s.handleAnalyzeReport)
	s.tools = append(s.tools, ToolAnalyzeReport)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolTranslateTexts,
		Description: "Translate a list of strings into a supported language. Strings that cannot be translated are returned unchanged.",
	}, s.handleTranslateTexts)
	s.tools = append(s.tools, ToolTranslateTexts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolListReferenceTests,
		Description: "List the lab tests the explainer recognizes with their aliases, units and default normal ranges.",
	}, s.handleListReferenceTests)
	s.tools = append(s.tools, ToolListReferenceTests)

	if s.feedback != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        ToolSubmitParseFeedback,
			Description: "Record whether a value was read correctly from a report, with the correct value when it was not.",
		}, s.handleSubmitParseFeedback)
		s.tools = append(s.tools, ToolSubmitParseFeedback)
	}
}

// Tools returns the names of the registered tools
func (s *Server) Tools() []string {
	out := make([]string, len(s.tools))
	copy(out, s.tools)
	return out
}

// Start serves MCP over stdio until ctx is cancelled or stdin closes
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithFields(logrus.Fields{
		"name":    s.config.ServerName,
		"version": s.config.ServerVersion,
	}).Info("Starting MCP server on stdio")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
