package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/webboost/config"
	"github.com/use-agent/webboost/models"
)

// apiClient talks to a running webboost API.
type apiClient struct {
	baseURL string
	subject string
	http    *http.Client
}

func main() {
	apiURL := os.Getenv("WEBBOOST_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	c := &apiClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		subject: os.Getenv("WEBBOOST_SUBJECT"),
		// Covers the server's 60s request deadline plus a first-use
		// portable browser download.
		http: &http.Client{Timeout: 180 * time.Second},
	}

	s := server.NewMCPServer(
		"webboost",
		config.Version,
		server.WithToolCapabilities(false),
	)
	registerTools(s, c)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func registerTools(s *server.MCPServer, c *apiClient) {
	auditURLTool := mcp.NewTool("audit_url",
		mcp.WithDescription("Load a web page in a headless mobile browser and report its ad density (percent of page height covered by ads), whether it has Recipe schema markup, and its rendered word count."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute http(s) URL of the page to audit"),
		),
	)
	s.AddTool(auditURLTool, handleAuditURL(c))

	listAuditsTool := mcp.NewTool("list_audits",
		mcp.WithDescription("List the most recent stored audits for the configured subject, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of audits to return (server caps this, default 20)"),
		),
	)
	s.AddTool(listAuditsTool, handleListAudits(c))
}

// do sends req with the subject header and returns the body.
func (c *apiClient) do(req *http.Request) (int, []byte, error) {
	if c.subject != "" {
		req.Header.Set("X-Auth-Subject", c.subject)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func handleAuditURL(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		body, err := json.Marshal(models.AuditRequest{URL: target})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/analyze", strings.NewReader(string(body)))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")

		status, respBody, err := c.do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp models.AuditResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response (HTTP %d): %v", status, err)), nil
		}

		if !resp.Success || resp.Data == nil {
			msg := resp.Error
			if msg == "" {
				msg = "audit failed"
			}
			return mcp.NewToolResultError(fmt.Sprintf("[HTTP %d] %s", status, msg)), nil
		}

		return mcp.NewToolResultText(formatMetrics(target, *resp.Data)), nil
	}
}

func handleListAudits(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := url.Values{}
		if limit := request.GetInt("limit", 0); limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}

		endpoint := c.baseURL + "/api/v1/audits"
		if len(q) > 0 {
			endpoint += "?" + q.Encode()
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}

		status, respBody, err := c.do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp models.HistoryResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response (HTTP %d): %v", status, err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(fmt.Sprintf("[HTTP %d] %s", status, resp.Error)), nil
		}

		if len(resp.Audits) == 0 {
			return mcp.NewToolResultText("No audits stored yet."), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%d audit(s), newest first:\n\n", len(resp.Audits))
		for _, a := range resp.Audits {
			ts := time.UnixMilli(a.Timestamp).UTC().Format(time.RFC3339)
			fmt.Fprintf(&b, "- %s  %s\n  ad density %d%%, recipe schema %t, %d words\n",
				ts, a.URL, a.MobileAdDensity, a.HasSchema, a.WordCount)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func formatMetrics(target string, m models.PageMetrics) string {
	return fmt.Sprintf("Audit: %s\n\nMobile ad density: %d%%\nRecipe schema: %t\nWord count: %d",
		target, m.MobileAdDensity, m.HasSchema, m.WordCount)
}
