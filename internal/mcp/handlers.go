package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/guidepro/guidepro/internal/assistant"
	"github.com/guidepro/guidepro/internal/booking"
	"github.com/guidepro/guidepro/internal/vectordb"
)

func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	topK := request.GetInt("top_k", 3)
	if topK <= 0 {
		topK = 3
	}

	if s.documents.Len() == 0 {
		return mcp.NewToolResultText("No documents have been uploaded yet. Run `guidepro ingest` to add some."), nil
	}

	results, err := s.documents.Search(ctx, query, topK)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return mcp.NewToolResultText(vectordb.FormatResults(results)), nil
}

func (s *Server) handleListBookings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	recs, err := s.bookings.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing bookings failed: %v", err)), nil
	}
	if len(recs) == 0 {
		return mcp.NewToolResultText("No bookings yet."), nil
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return mcp.NewToolResultText(formatBookings(recs)), nil
}

func (s *Server) handleListHotels(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	for _, h := range assistant.Hotels() {
		fmt.Fprintf(&sb, "%s (%s), rated %.1f, $%d per night\n", h.Name, h.Location, h.Rating, h.PricePerNight)
		fmt.Fprintf(&sb, "  Amenities: %s\n", strings.Join(h.Amenities, ", "))
		fmt.Fprintf(&sb, "  %s\n\n", h.Description)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatBookings renders bookings one per block for agent consumption.
func formatBookings(recs []booking.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d booking(s):\n", len(recs))
	for _, r := range recs {
		fmt.Fprintf(&sb, "\n%s: %s <%s>\n", r.Reference(), r.Name, r.Email)
		fmt.Fprintf(&sb, "  %s, %s to %s, %d guest(s)\n",
			r.Hotel, r.CheckIn.Format(booking.DateLayout), r.CheckOut.Format(booking.DateLayout), r.Guests)
	}
	return sb.String()
}
