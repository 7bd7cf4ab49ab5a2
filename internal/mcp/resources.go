package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/trirpi/imessage-analysis/internal/config"
)

// registerTuningResource exposes the active analysis knobs so clients can see
// which thresholds produced the numbers they are reading.
func registerTuningResource(s *server.MCPServer, tuning config.Tuning) {
	resource := mcp.NewResource(
		"imsg://config/tuning",
		"Analysis Tuning",
		mcp.WithResourceDescription("Active analysis thresholds: response window, double-text window, thread gap, joke repeat minimums, big-day fence multiplier, argument score threshold."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		payload := map[string]any{
			"response_window_hours":      tuning.ResponseWindow.Hours(),
			"double_text_window_minutes": tuning.DoubleTextWindow.Minutes(),
			"thread_gap_minutes":         tuning.ThreadGap.Minutes(),
			"inside_joke_min_repeats":    tuning.JokeMinRepeats,
			"topic_min_repeats":          tuning.TopicMinRepeats,
			"big_day_iqr_multiplier":     tuning.IQRMultiplier,
			"argument_score_threshold":   tuning.ArgumentThreshold,
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
