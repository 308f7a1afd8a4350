// Package mcp provides the stdio MCP server exposing customer tools to agents.
package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/stratocrm/internal/buildinfo"
	"github.com/go-ports/stratocrm/internal/models"
	"github.com/go-ports/stratocrm/internal/service"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

const createDescription = `Create a customer record. Name, email and phone are all required; surrounding whitespace is trimmed. Returns the assigned six-digit account number.`

const lookupDescription = `Look up a customer by account number. Returns the full record including notes, oldest first.`

const noteDescription = `Append a note to an existing customer record. Notes are never edited or removed once added.`

const searchDescription = `Search customers by name, email, phone or note text ` +
	`(case-insensitive substring match). Returns a summary per match; ` +
	`use customer_lookup for the full record.`

const emailDescription = `Send a plain-text email through the configured SMTP server. Recipient, subject and body are required.`

// NewServer creates and registers all customer tools on a new MCP server.
// It is separate from Serve so tests can drive the server in-process.
func NewServer(svc *service.Service) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("stratocrm", buildinfo.Version)
	registerTools(s, svc)
	return s
}

// Serve starts the stdio MCP server, blocking until stdin closes.
func Serve(_ context.Context, svc *service.Service) error {
	return mcpserver.ServeStdio(NewServer(svc))
}

func registerTools(s *mcpserver.MCPServer, svc *service.Service) {
	s.AddTool(mcp.NewTool("customer_create",
		mcp.WithDescription(createDescription),
		mcp.WithString("name", mcp.Description("Customer name."), mcp.Required()),
		mcp.WithString("email", mcp.Description("Customer email address."), mcp.Required()),
		mcp.WithString("phone", mcp.Description("Customer phone number."), mcp.Required()),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreate(svc, req)
	})

	s.AddTool(mcp.NewTool("customer_lookup",
		mcp.WithDescription(lookupDescription),
		mcp.WithString("account_number", mcp.Description("Six-digit account number, e.g. 000001."), mcp.Required()),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleLookup(svc, req)
	})

	s.AddTool(mcp.NewTool("customer_add_note",
		mcp.WithDescription(noteDescription),
		mcp.WithString("account_number", mcp.Description("Account number of the customer."), mcp.Required()),
		mcp.WithString("note", mcp.Description("Note text."), mcp.Required()),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddNote(svc, req)
	})

	s.AddTool(mcp.NewTool("customer_search",
		mcp.WithDescription(searchDescription),
		mcp.WithString("query", mcp.Description("Search terms."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Max results (default 10)")),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearch(svc, req)
	})

	s.AddTool(mcp.NewTool("email_send",
		mcp.WithDescription(emailDescription),
		mcp.WithString("to", mcp.Description("Recipient address."), mcp.Required()),
		mcp.WithString("subject", mcp.Description("Subject line."), mcp.Required()),
		mcp.WithString("body", mcp.Description("Plain-text body."), mcp.Required()),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleEmail(ctx, svc, req)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handleCreate(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	acct, err := svc.CreateCustomer(
		req.GetString("name", ""),
		req.GetString("email", ""),
		req.GetString("phone", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"account_number": acct})
}

func handleLookup(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := svc.LookupCustomer(strings.TrimSpace(req.GetString("account_number", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

func handleAddNote(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	acct := strings.TrimSpace(req.GetString("account_number", ""))
	if err := svc.AddNote(acct, req.GetString("note", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := svc.LookupCustomer(acct)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"account_number": acct,
		"note_count":     len(c.Notes),
	})
}

func handleSearch(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(req.GetInt("limit", defaultSearchLimit))
	results, err := svc.SearchCustomers(req.GetString("query", ""), limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	clean := make([]map[string]any, 0, len(results))
	for _, r := range results {
		clean = append(clean, map[string]any{
			"account_number": r.AccountNumber,
			"name":           r.Name,
			"email":          r.Email,
			"phone":          r.Phone,
			"note_count":     r.NoteCount,
		})
	}
	return jsonResult(clean)
}

func handleEmail(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg := models.Email{
		To:      req.GetString("to", ""),
		Subject: req.GetString("subject", ""),
		Body:    req.GetString("body", ""),
	}
	if err := svc.SendEmail(ctx, msg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"sent": true, "to": strings.TrimSpace(msg.To)})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultSearchLimit
	case n > maxSearchLimit:
		return maxSearchLimit
	default:
		return n
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
