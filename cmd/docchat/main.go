package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"docchat/internal/chat"
	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/helper"
	"docchat/internal/index"
	"docchat/internal/llm"
	"docchat/internal/session"
	"docchat/internal/tui"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	cfgPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to the document file")
	query := flag.String("query", "", "One-shot text question (skips the TUI)")
	imagePage := flag.Int("image-page", 0, "Page of the image to ask about (one-shot)")
	imageIndex := flag.Int("image-index", 0, "In-page index of the image to ask about (one-shot)")
	ask := flag.String("ask", "", "One-shot question about the selected image")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *filePath == "" {
		log.Fatal().Msg("Please provide a document file using the -file flag")
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Msg("Error loading config")
		}
		cfg = config.DefaultConfig()
		log.Debug().Msg("No config file found, using defaults")
	}

	log.Debug().Interface("config", cfg).Msg("Loaded config")
	if *debug {
		helper.PrettyPrint(cfg)
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	answerer, err := llm.NewClient(&cfg.AnswerLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing text answering client")
	}

	vision, err := llm.NewClient(&cfg.VisionLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing vision client")
	}

	var pg *bun.DB
	if cfg.Index.Backend == "postgres" {
		pg, err = index.ConnectPostgres(&cfg.Index)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to postgres")
		}
		defer pg.Close()
	}

	ctx := context.Background()

	s := session.New()
	builder := session.NewBuilder(embedder, cfg, pg)
	if err := builder.ProcessDocument(ctx, s, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Error processing document")
	}

	orch := chat.New(answerer, vision, cfg.RAG.RetrievalK)

	switch {
	case *query != "":
		answer, err := orch.TextTurn(ctx, s, *query)
		if err != nil {
			log.Fatal().Err(err).Msg("Error running text turn")
		}
		fmt.Printf("%s\n", answer)
	case *ask != "":
		if err := orch.SelectImage(s, *imagePage, *imageIndex); err != nil {
			log.Fatal().Err(err).Msg("Error selecting image")
		}
		answer, err := orch.ImageTurn(ctx, s, *ask)
		if err != nil {
			log.Fatal().Err(err).Msg("Error running image turn")
		}
		fmt.Printf("%s\n", answer)
	default:
		p := tea.NewProgram(tui.New(orch, s), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			log.Fatal().Err(err).Msg("Error running TUI")
		}
	}
}
