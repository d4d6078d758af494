package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"golang-quote-agent/internal/agent/service"
	"golang-quote-agent/pkg/logger"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleScrapeStock implements the scrape_stock tool
func handleScrapeStock(agentSvc service.AgentService, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return textResult("Error: symbol parameter is required"), nil
		}

		result := agentSvc.Scrape(ctx, symbol)
		if !result.Success {
			log.Warn("Scrape failed", logger.StringField("symbol", symbol))
			return textResult(fmt.Sprintf("Scrape failed: %s", result.ErrorMessage)), nil
		}
		return textResult(formatQuote(result.Data)), nil
	}
}

// handleGetStockPrice implements the get_stock_price tool
func handleGetStockPrice(agentSvc service.AgentService, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return textResult("Error: symbol parameter is required"), nil
		}

		result := agentSvc.Scrape(ctx, symbol)
		if !result.Success {
			return textResult(fmt.Sprintf("Scrape failed: %s", result.ErrorMessage)), nil
		}
		return textResult(formatPriceLine(result.Data)), nil
	}
}

// handleGetHistoricalData implements the get_historical_data tool
func handleGetHistoricalData(agentSvc service.AgentService, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return textResult("Error: symbol parameter is required"), nil
		}
		period := request.GetString("period", "1y")
		interval := request.GetString("interval", "1d")

		data, err := agentSvc.GetHistoricalData(ctx, symbol, period, interval)
		if err != nil {
			log.Warn("History fetch failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
			return textResult(fmt.Sprintf("History error: %v", err)), nil
		}
		return textResult(formatHistory(data)), nil
	}
}

// handleAnalyzeStock implements the analyze_stock tool
func handleAnalyzeStock(agentSvc service.AgentService, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return textResult("Error: symbol parameter is required"), nil
		}
		period := request.GetString("period", "1y")

		report, err := agentSvc.Analyze(ctx, symbol, period)
		if err != nil {
			log.Warn("Analysis failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
			return textResult(fmt.Sprintf("Analysis error: %v", err)), nil
		}
		return textResult(formatReport(report)), nil
	}
}

// handleCompareStocks implements the compare_stocks tool
func handleCompareStocks(agentSvc service.AgentService, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbols := request.GetStringSlice("symbols", nil)
		if len(symbols) < 2 {
			return textResult("Error: at least two symbols are required"), nil
		}
		if len(symbols) > 10 {
			symbols = symbols[:10]
		}

		results := make(map[string]string, len(symbols))
		quotes := make([]string, 0, len(symbols))
		for _, symbol := range symbols {
			result := agentSvc.Scrape(ctx, symbol)
			if !result.Success {
				results[symbol] = result.ErrorMessage
				continue
			}
			quotes = append(quotes, formatCompareRow(result.Data))
		}
		return textResult(formatComparison(quotes, results)), nil
	}
}

// handleHealthStatus implements the health_status tool
func handleHealthStatus(agentSvc service.AgentService, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hours := request.GetInt("hours", 24)
		status := agentSvc.HealthStatus()
		summary := agentSvc.ErrorSummary(hours, 5)
		return textResult(formatHealth(status, summary)), nil
	}
}
