// Package mcp serves the document store and the bookings table as MCP
// tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/guidepro/guidepro/internal/booking"
	"github.com/guidepro/guidepro/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Searcher finds document chunks. *rag.Store satisfies it.
type Searcher interface {
	Len() int
	Search(ctx context.Context, text string, topK int) ([]vectordb.SearchResult, error)
}

// Server wraps an MCP server exposing GuidePro tools.
type Server struct {
	documents Searcher
	bookings  booking.Repository
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(documents Searcher, bookings booking.Repository) *Server {
	s := &Server{
		documents: documents,
		bookings:  bookings,
	}

	s.mcp = server.NewMCPServer(
		"guidepro",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(listBookingsTool, s.handleListBookings)
	s.mcp.AddTool(listHotelsTool, s.handleListHotels)
}

// Serve starts the MCP server on stdio. Stdout carries protocol messages,
// so all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
