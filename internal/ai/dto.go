package ai

// GeminiAPIRequest is the generateContent request body.
type GeminiAPIRequest struct {
	Contents []Content `json:"contents"`
}

// Content is one message in a Gemini request or response.
type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

// Part is one text fragment of a content block.
type Part struct {
	Text string `json:"text"`
}

// GeminiAPIResponse is the generateContent response body.
type GeminiAPIResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// analysisPayload is the JSON shape the model is asked to return.
type analysisPayload struct {
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
	ConfidenceScore *float64 `json:"confidence_score"`
}
