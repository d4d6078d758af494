package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createScrapeStockTool returns the scrape_stock tool definition
func createScrapeStockTool() mcp.Tool {
	return mcp.NewTool("scrape_stock",
		mcp.WithDescription("Scrape the full current quote for a stock symbol: price block, trading metrics, financial ratios and company info"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, 1-5 letters (e.g. AAPL)"),
		),
	)
}

// createGetStockPriceTool returns the get_stock_price tool definition
func createGetStockPriceTool() mcp.Tool {
	return mcp.NewTool("get_stock_price",
		mcp.WithDescription("Get just the current price and daily change for a stock symbol"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, 1-5 letters (e.g. AAPL)"),
		),
	)
}

// createGetHistoricalDataTool returns the get_historical_data tool definition
func createGetHistoricalDataTool() mcp.Tool {
	return mcp.NewTool("get_historical_data",
		mcp.WithDescription("Get the historical OHLCV price series for a stock symbol"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, 1-5 letters (e.g. AAPL)"),
		),
		mcp.WithString("period",
			mcp.Description("Lookback period: 1mo, 3mo, 6mo, 1y, 2y, 5y, max (default: 1y)"),
		),
		mcp.WithString("interval",
			mcp.Description("Bar interval: 1d, 1wk, 1mo (default: 1d)"),
		),
	)
}

// createAnalyzeStockTool returns the analyze_stock tool definition
func createAnalyzeStockTool() mcp.Tool {
	return mcp.NewTool("analyze_stock",
		mcp.WithDescription("Run the full analysis pipeline for a stock: scrape the quote, compute technical indicators and chart patterns, fetch headlines and run AI analysis when configured"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, 1-5 letters (e.g. AAPL)"),
		),
		mcp.WithString("period",
			mcp.Description("History period for the indicator window (default: 1y)"),
		),
	)
}

// createCompareStocksTool returns the compare_stocks tool definition
func createCompareStocksTool() mcp.Tool {
	return mcp.NewTool("compare_stocks",
		mcp.WithDescription("Compare the current quotes of several stock symbols side by side"),
		mcp.WithArray("symbols",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Ticker symbols to compare, 2-10 entries"),
		),
	)
}

// createHealthStatusTool returns the health_status tool definition
func createHealthStatusTool() mcp.Tool {
	return mcp.NewTool("health_status",
		mcp.WithDescription("Get the scraper health status: success rate, request metrics and recent error summary"),
		mcp.WithNumber("hours",
			mcp.Description("Error summary lookback window in hours (default: 24)"),
		),
	)
}
