// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes paste tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/pastebin/internal/apperr"
	"github.com/starford/pastebin/internal/document"
	"github.com/starford/pastebin/internal/models"
	"github.com/starford/pastebin/internal/recent"
)

const usageURI = "pastebin://usage"

// Links builds share URLs for created pastes.
type Links interface {
	ShareURL(key string) string
	RawURL(key string) string
}

// History is the recent-pastes log the tools read and append to.
type History interface {
	recent.Recorder
	List(ctx context.Context, limit int) ([]models.RecentEntry, error)
}

// Server wraps the MCP server with paste tools.
type Server struct {
	mcp     *server.MCPServer
	remote  document.Remote
	links   Links
	history History
	logger  *slog.Logger
}

// New creates a new MCP server with all paste tools registered.
// history may be nil, in which case list_recent reports an empty list.
func New(remote document.Remote, links Links, history History, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{remote: remote, links: links, history: history, logger: logger}

	s.mcp = server.NewMCPServer(
		"Pastebin",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_paste",
		mcp.WithDescription("Publish text as a new immutable paste and return its key and share URL. "+
			"Pastes can never be edited; publish again to change the text."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to publish")),
	), s.createPaste)

	s.mcp.AddTool(mcp.NewTool("read_paste",
		mcp.WithDescription("Read the content of a paste by key."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Paste key as returned by create_paste")),
	), s.readPaste)

	s.mcp.AddTool(mcp.NewTool("list_recent",
		mcp.WithDescription("List pastes recently created or read on this machine, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 20)")),
	), s.listRecent)

	s.mcp.AddResource(
		mcp.NewResource(usageURI, "Paste Usage",
			mcp.WithResourceDescription("How pastes behave: immutability, keys and limits."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readUsageResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type createdPaste struct {
	Key      string `json:"key"`
	ShareURL string `json:"shareUrl"`
	RawURL   string `json:"rawUrl"`
}

func (s *Server) createPaste(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("create_paste: content is blank"), nil
	}
	res, err := document.New(s.remote).Save(ctx, content)
	if err != nil {
		return s.toolError("create_paste", err), nil
	}
	s.record(ctx, res, models.ActionSaved)

	out, _ := json.MarshalIndent(createdPaste{
		Key:      res.Key,
		ShareURL: s.links.ShareURL(res.Key),
		RawURL:   s.links.RawURL(res.Key),
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPaste(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := document.New(s.remote).Load(ctx, key)
	if err != nil {
		return s.toolError("read_paste", err), nil
	}
	s.record(ctx, res, models.ActionLoaded)
	return mcp.NewToolResultText(res.Content), nil
}

func (s *Server) listRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	entries := []models.RecentEntry{}
	if s.history != nil {
		list, err := s.history.List(ctx, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if list != nil {
			entries = list
		}
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readUsageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      usageURI,
			MIMEType: "text/markdown",
			Text:     PasteUsage,
		},
	}, nil
}

func (s *Server) record(ctx context.Context, res document.Result, action string) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordPaste(ctx, res.Key, action, res.Content); err != nil {
		s.logger.Warn("mcp: record failed", slog.String("key", res.Key), slog.String("error", err.Error()))
	}
}

func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	if !apperr.UserFacing(err) && !errors.Is(err, apperr.ErrAlreadyLocked) {
		s.logger.Error("mcp: "+tool+" failed", slog.String("error", err.Error()))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", tool, apperr.Notice(err)))
}
