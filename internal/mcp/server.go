// Package mcp provides a Model Context Protocol server over conversation
// analysis results.
//
// Each tool takes a contact identifier, runs the analysis pipeline against
// the local Messages database, and returns one result table as JSON. Results
// are cached per contact for the life of the server, so follow-up tool calls
// are cheap. Supports stdio transport.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/trirpi/imessage-analysis/internal/analyze"
	"github.com/trirpi/imessage-analysis/internal/config"
	"github.com/trirpi/imessage-analysis/internal/detect"
	"github.com/trirpi/imessage-analysis/internal/feature"
	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/store"
)

// ServerConfig holds the dependencies for the MCP server.
type ServerConfig struct {
	Store     store.Store
	Extractor *feature.Extractor
	Tuning    config.Tuning
	Version   string
	Log       zerolog.Logger
}

// session is one contact's fully computed analysis.
type session struct {
	Result    *analyze.Result
	BigDays   []detect.BigDay
	Arguments []detect.ArgumentThread
	Activity  detect.ActivitySplit
}

// analyzer runs and caches the pipeline per contact. Tool handlers are
// dispatched concurrently by mcp-go; the mutex keeps the cache and the
// single SQLite connection serialized.
type analyzer struct {
	mu       sync.Mutex
	cfg      ServerConfig
	sessions map[string]*session
}

// NewServer creates a configured MCP server with all analysis tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"imessage-analysis",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	a := &analyzer{cfg: cfg, sessions: make(map[string]*session)}

	registerSummaryTool(s, a)
	registerResponseTool(s, a)
	registerSentimentTool(s, a)
	registerEmojiTool(s, a)
	registerTopicsTool(s, a)
	registerMilestonesTool(s, a)
	registerDetectorsTool(s, a)

	registerTuningResource(s, cfg.Tuning)

	return s
}

func (a *analyzer) session(ctx context.Context, contact string) (*session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if sess, ok := a.sessions[contact]; ok {
		return sess, nil
	}

	handles, err := a.cfg.Store.ResolveHandles(ctx, contact)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(handles))
	for i, h := range handles {
		ids[i] = h.ID
	}

	raw, err := a.cfg.Store.FetchRaw(ctx, ids)
	if err != nil {
		return nil, err
	}
	series, counts := msg.Normalize(raw)
	a.cfg.Log.Debug().
		Int("input", counts.Input).
		Int("reactions", counts.Reactions).
		Int("retained", counts.Retained).
		Str("contact", contact).
		Msg("normalized messages")

	if failed := a.cfg.Extractor.AnnotateWithModel(ctx, series); failed > 0 {
		a.cfg.Log.Warn().Int("messages", failed).Msg("model scoring incomplete, lexicon scores kept")
	}

	result, err := analyze.Run(series, analyzeOptions(a.cfg.Tuning))
	if err != nil {
		return nil, err
	}

	sess := &session{
		Result:    result,
		BigDays:   detect.BigDays(series, a.cfg.Tuning.IQRMultiplier),
		Arguments: detect.Arguments(series, a.cfg.Tuning.ThreadGap, a.cfg.Tuning.ArgumentThreshold),
		Activity:  detect.SplitActivity(series),
	}
	a.sessions[contact] = sess
	return sess, nil
}

func analyzeOptions(t config.Tuning) analyze.Options {
	return analyze.Options{
		ResponseWindow:   t.ResponseWindow,
		DoubleTextWindow: t.DoubleTextWindow,
		ThreadGap:        t.ThreadGap,
		JokeMinRepeats:   t.JokeMinRepeats,
		TopicMinRepeats:  t.TopicMinRepeats,
	}
}

// contactTool builds a read-only tool with the shared contact parameter.
func contactTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("contact",
			mcp.Required(),
			mcp.Description("Phone number or iCloud address of the contact"),
		),
	)
}

// handle wraps a session-based tool handler with contact extraction and JSON
// encoding.
func handle(a *analyzer, pick func(*session) any) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		contact, err := req.RequireString("contact")
		if err != nil {
			return mcp.NewToolResultError("contact is required"), nil
		}

		sess, err := a.session(ctx, contact)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis error: %v", err)), nil
		}

		data, err := json.MarshalIndent(pick(sess), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding error: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func registerSummaryTool(s *server.MCPServer, a *analyzer) {
	tool := contactTool("imsg_summary",
		"Message and word totals for a contact: per-side counts, date span, active days, double texts, and conversation enders.")
	s.AddTool(tool, handle(a, func(sess *session) any {
		return map[string]any{
			"totals":       sess.Result.Totals,
			"double_texts": sess.Result.DoubleTexts,
			"enders":       sess.Result.Enders,
			"streaks":      sess.Result.Streaks,
		}
	}))
}

func registerResponseTool(s *server.MCPServer, a *analyzer) {
	tool := contactTool("imsg_response_times",
		"Median reply latency per month, overall and for your own replies only, plus weekly word-share ratios.")
	s.AddTool(tool, handle(a, func(sess *session) any {
		return map[string]any{
			"monthly_all":   sess.Result.ResponseAll,
			"monthly_self":  sess.Result.ResponseSelf,
			"weekly_ratios": sess.Result.WeeklyRatios,
		}
	}))
}

func registerSentimentTool(s *server.MCPServer, a *analyzer) {
	tool := contactTool("imsg_sentiment",
		"Weekly mean sentiment with a centered four-week rolling mean, overall and split by sender.")
	s.AddTool(tool, handle(a, func(sess *session) any {
		return map[string]any{
			"weekly": sess.Result.WeeklySentiment,
			"self":   sess.Result.WeeklySentimentSelf,
			"other":  sess.Result.WeeklySentimentOther,
		}
	}))
}

func registerEmojiTool(s *server.MCPServer, a *analyzer) {
	tool := contactTool("imsg_emoji_stats",
		"Emoji usage: combined and per-side counts, exclusive and shared emoji with usage split, monthly trend of the top emojis, and weekly emoji density.")
	s.AddTool(tool, handle(a, func(sess *session) any {
		return map[string]any{
			"stats":          sess.Result.Emoji,
			"trend":          sess.Result.EmojiTrend,
			"weekly_density": sess.Result.WeeklyEmojiDensity,
		}
	}))
}

func registerTopicsTool(s *server.MCPServer, a *analyzer) {
	tool := contactTool("imsg_topics",
		"Topic mentions per month (travel, work, food, recurring inside-joke words), the mined recurring words, and the weekly compliment/logistics mix.")
	s.AddTool(tool, handle(a, func(sess *session) any {
		return map[string]any{
			"by_month":        sess.Result.TopicsByMonth,
			"recurring_words": sess.Result.InsideJokes,
			"weekly_type_mix": sess.Result.WeeklyTypeMix,
		}
	}))
}

func registerMilestonesTool(s *server.MCPServer, a *analyzer) {
	tool := contactTool("imsg_milestones",
		"First appearances of notable phrases (love you, hearts, pet names) with timestamp and sender.")
	s.AddTool(tool, handle(a, func(sess *session) any {
		return sess.Result.Milestones
	}))
}

func registerDetectorsTool(s *server.MCPServer, a *analyzer) {
	tool := contactTool("imsg_detectors",
		"Heuristic detectors: outlier-volume big days, threads with an argument-like fingerprint, and quiet weeks suggesting time apart.")
	s.AddTool(tool, handle(a, func(sess *session) any {
		return map[string]any{
			"big_days":  sess.BigDays,
			"arguments": sess.Arguments,
			"activity":  sess.Activity,
		}
	}))
}
