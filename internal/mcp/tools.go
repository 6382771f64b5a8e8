package mcp

import "github.com/mark3labs/mcp-go/mcp"

var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Search the uploaded travel documents (hotel policies, FAQs, guides) semantically. Returns the most similar passages."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("top_k",
		mcp.Description("Maximum number of passages to return (default 3)"),
	),
)

var listBookingsTool = mcp.NewTool("list_bookings",
	mcp.WithDescription("List confirmed hotel bookings, most recent first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of bookings to return (default 20)"),
	),
)

var listHotelsTool = mcp.NewTool("list_hotels",
	mcp.WithDescription("List the hotels in the GuidePro catalog with location, rating, price and amenities."),
)
