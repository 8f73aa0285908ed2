// Package mcp exposes the attendance reports as MCP tools over stdio.
package mcp

import (
	"context"

	"office-attendance/internal/config"
	"office-attendance/internal/service"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server holds the state for the MCP server.
type Server struct {
	cfg *config.AppConfig
	svc *service.AttendanceService
	mcp *sdk.Server
}

// NewServer creates a new MCP server with every attendance tool registered.
func NewServer(cfg *config.AppConfig, svc *service.AttendanceService, version string) (*Server, error) {
	s := &Server{
		cfg: cfg,
		svc: svc,
		mcp: sdk.NewServer(&sdk.Implementation{Name: "office-attendance", Version: version}, nil),
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the stdio loop until the client disconnects or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	log.Info().Msg("MCP server listening on stdio")
	return s.mcp.Run(ctx, &sdk.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}
