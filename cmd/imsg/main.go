package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/trirpi/imessage-analysis/internal/analyze"
	"github.com/trirpi/imessage-analysis/internal/config"
	"github.com/trirpi/imessage-analysis/internal/detect"
	"github.com/trirpi/imessage-analysis/internal/feature"
	"github.com/trirpi/imessage-analysis/internal/mcp"
	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/report"
	"github.com/trirpi/imessage-analysis/internal/store"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "analyze":
		if err := runAnalyze(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "report":
		if err := runReport(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "config":
		if err := runConfig(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("imsg %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// cliFlags holds the flags shared by report and mcp.
type cliFlags struct {
	configPath        string
	dbPath            string
	sentimentEndpoint string
	sentimentModel    string
	verbose           bool
	contacts          []string
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			i++
			if i >= len(args) {
				return "", fmt.Errorf("flag %s needs a value", arg)
			}
			return args[i], nil
		}

		var err error
		switch {
		case arg == "--verbose":
			f.verbose = true
		case arg == "--config":
			f.configPath, err = next()
		case arg == "--db":
			f.dbPath, err = next()
		case arg == "--sentiment-endpoint":
			f.sentimentEndpoint, err = next()
		case arg == "--sentiment-model":
			f.sentimentModel, err = next()
		case strings.HasPrefix(arg, "-"):
			return f, fmt.Errorf("unknown flag: %s", arg)
		default:
			f.contacts = append(f.contacts, arg)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

func resolve(f cliFlags) (config.ResolvedConfig, error) {
	return config.ResolveConfig(config.ResolveOptions{
		ConfigPath:           f.configPath,
		CLIDBPath:            f.dbPath,
		CLISentimentEndpoint: f.sentimentEndpoint,
		CLISentimentModel:    f.sentimentModel,
	})
}

func newExtractor(cfg config.ResolvedConfig, log zerolog.Logger) *feature.Extractor {
	fc := feature.Config{}
	if cfg.SentimentEndpoint.Value != "" {
		scorer, err := feature.NewHTTPScorer(feature.ScorerConfig{
			Endpoint: cfg.SentimentEndpoint.Value,
			Model:    cfg.SentimentModel.Value,
			APIKey:   cfg.SentimentAPIKey.Value,
		})
		if err != nil {
			log.Warn().Err(err).Msg("sentiment model misconfigured, using lexicon only")
		} else {
			fc.Scorer = scorer
			log.Debug().Str("model", scorer.Name()).Msg("using sentiment model")
		}
	}
	return feature.NewExtractor(fc)
}

// pipelineOut is everything one full analysis run produces.
type pipelineOut struct {
	Contact   string                  `json:"contact"`
	Counts    msg.Counts              `json:"normalization"`
	Result    *analyze.Result         `json:"result"`
	BigDays   []detect.BigDay         `json:"big_days"`
	Arguments []detect.ArgumentThread `json:"arguments"`
	Activity  detect.ActivitySplit    `json:"activity"`
}

func runPipeline(f cliFlags, usage string) (*pipelineOut, error) {
	if len(f.contacts) != 1 {
		return nil, errors.New(usage)
	}
	contact := f.contacts[0]

	log := newLogger(f.verbose)
	cfg, err := resolve(f)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath.Value, log)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ctx := context.Background()
	handles, err := st.ResolveHandles(ctx, contact)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(handles))
	for i, h := range handles {
		ids[i] = h.ID
	}

	raw, err := st.FetchRaw(ctx, ids)
	if err != nil {
		return nil, err
	}

	series, counts := msg.Normalize(raw)
	log.Debug().
		Int("input", counts.Input).
		Int("invalid", counts.Invalid).
		Int("reactions", counts.Reactions).
		Int("retained", counts.Retained).
		Msg("normalized messages")

	extractor := newExtractor(cfg, log)
	if failed := extractor.AnnotateWithModel(ctx, series); failed > 0 {
		log.Warn().Int("messages", failed).Msg("model scoring incomplete, lexicon scores kept")
	}

	tu := cfg.Tuning
	result, err := analyze.Run(series, analyze.Options{
		ResponseWindow:   tu.ResponseWindow,
		DoubleTextWindow: tu.DoubleTextWindow,
		ThreadGap:        tu.ThreadGap,
		JokeMinRepeats:   tu.JokeMinRepeats,
		TopicMinRepeats:  tu.TopicMinRepeats,
	})
	if err != nil {
		if errors.Is(err, msg.ErrNoMessages) {
			return nil, fmt.Errorf("no messages found for %s", contact)
		}
		return nil, err
	}

	return &pipelineOut{
		Contact:   contact,
		Counts:    counts,
		Result:    result,
		BigDays:   detect.BigDays(series, tu.IQRMultiplier),
		Arguments: detect.Arguments(series, tu.ThreadGap, tu.ArgumentThreshold),
		Activity:  detect.SplitActivity(series),
	}, nil
}

func runReport(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	out, err := runPipeline(f, "usage: imsg report <contact> [--db <path>] [--config <path>]")
	if err != nil {
		return err
	}

	report.Render(os.Stdout, report.Report{
		Contact:   out.Contact,
		Result:    out.Result,
		BigDays:   out.BigDays,
		Arguments: out.Arguments,
		Activity:  out.Activity,
	})
	return nil
}

func runAnalyze(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	out, err := runPipeline(f, "usage: imsg analyze <contact> [--db <path>] [--config <path>]")
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runMCP(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	log := newLogger(f.verbose)
	cfg, err := resolve(f)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath.Value, log)
	if err != nil {
		return err
	}
	defer st.Close()

	s := mcp.NewServer(mcp.ServerConfig{
		Store:     st,
		Extractor: newExtractor(cfg, log),
		Tuning:    cfg.Tuning,
		Version:   version,
		Log:       log,
	})
	log.Debug().Msg("serving MCP over stdio")
	return mcpserver.ServeStdio(s)
}

func runConfig(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := resolve(f)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printUsage() {
	fmt.Printf(`imsg %s — two-party iMessage conversation analytics

Usage:
  imsg <command> [arguments]

Commands:
  analyze <contact>   Analyze a contact's history and print every table as JSON
  report <contact>    Analyze a contact's history and print the full report
  mcp                 Serve analysis results over MCP (stdio)
  config              Print the resolved configuration with provenance
  version             Print version

Flags:
  --db <path>               Path to chat.db (default: ~/Library/Messages/chat.db)
  --config <path>           Config file (default: ~/.imsg/config.yaml)
  --sentiment-endpoint <u>  Optional HTTP sentiment model endpoint
  --sentiment-model <m>     Model name for the sentiment endpoint
  --verbose                 Debug logging
  -h, --help                Show this help message
  -v, --version             Print version
`, version)
}
