package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/martinsuchenak/thingprobe/internal/api"
	"github.com/martinsuchenak/thingprobe/internal/log"
	"github.com/martinsuchenak/thingprobe/internal/model"
	"github.com/martinsuchenak/thingprobe/internal/probe"
	"github.com/martinsuchenak/thingprobe/pkg/device"
	"github.com/paularlott/mcp"
)

const serverVersion = "1.0.0"

// Server exposes the probe as MCP tools
type Server struct {
	mcpServer   *mcp.Server
	newFetcher  device.FetcherFactory
	bearerToken string
}

// NewServer creates a new MCP server
func NewServer(newFetcher device.FetcherFactory, bearerToken string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("thingprobe", serverVersion),
		newFetcher:  newFetcher,
		bearerToken: bearerToken,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.RegisterTool(
		mcp.NewTool("thing_base_test", "Fetch the thing description served at http://host:port/ and check that it answers 200 with an id and a title",
			mcp.String("host", "Device IP or hostname", mcp.Required()),
			mcp.String("port", "Device port", mcp.Required()),
		),
		s.handleBaseTest,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("thing_describe", "Fetch the thing description served at http://host:port/ and summarise its id, title, types, links and properties",
			mcp.String("host", "Device IP or hostname", mcp.Required()),
			mcp.String("port", "Device port", mcp.Required()),
		),
		s.handleDescribe,
	)
}

// HandleRequest checks the bearer token, if any, and hands over to MCP
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !api.ValidBearer(auth, s.bearerToken) {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

func (s *Server) target(req *mcp.ToolRequest) (model.Target, error) {
	host, err := req.String("host")
	if err != nil {
		return model.Target{}, mcp.NewToolErrorInvalidParams("host is required: " + err.Error())
	}
	port, err := req.String("port")
	if err != nil {
		return model.Target{}, mcp.NewToolErrorInvalidParams("port is required: " + err.Error())
	}
	return model.Target{Host: host, Port: port}, nil
}

func (s *Server) handleBaseTest(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	target, err := s.target(req)
	if err != nil {
		return nil, err
	}

	rep := probe.Report(ctx, s.newFetcher(target))
	log.Info("MCP base test", "run_id", rep.RunID, "url", rep.URL, "ok", rep.OK)
	return mcp.NewToolResponseText(formatReport(rep)), nil
}

func (s *Server) handleDescribe(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	target, err := s.target(req)
	if err != nil {
		return nil, err
	}

	f := s.newFetcher(target)
	desc, err := f.FetchBase(ctx)
	if err != nil {
		log.Warn("MCP describe failed", "url", f.BaseURL(), "error", err)
		return nil, mcp.NewToolErrorInternal("fetching thing description: " + err.Error())
	}

	return mcp.NewToolResponseText(probe.Summary(desc)), nil
}

func formatReport(rep model.Report) string {
	var b strings.Builder
	if rep.OK {
		b.WriteString("BASE_TEST ok\n")
	} else {
		b.WriteString("BASE_TEST Failed\n")
	}
	fmt.Fprintf(&b, "URL:    %s\n", rep.URL)
	if rep.StatusCode != 0 {
		fmt.Fprintf(&b, "Status: %d\n", rep.StatusCode)
	}
	if rep.Record != nil {
		fmt.Fprintf(&b, "ID:     %s\n", rep.Record.ID())
		fmt.Fprintf(&b, "Title:  %s\n", rep.Record.Title())
	}
	if rep.Error != "" {
		fmt.Fprintf(&b, "Error:  %s\n", rep.Error)
	}
	fmt.Fprintf(&b, "Run:    %s\n", rep.RunID)
	return b.String()
}

// GetHTTPHandler returns the HTTP handler for the MCP server
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information
func (s *Server) LogStartup() {
	log.Info("MCP Server initialized", "version", serverVersion)
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}
