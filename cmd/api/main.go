package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GasparGW/chinfield-rag-demo/internal/agent"
	"github.com/GasparGW/chinfield-rag-demo/internal/config"
	"github.com/GasparGW/chinfield-rag-demo/internal/handoff"
	"github.com/GasparGW/chinfield-rag-demo/internal/middleware"
	"github.com/GasparGW/chinfield-rag-demo/internal/setup"
	setuplogger "github.com/GasparGW/chinfield-rag-demo/internal/setup/logger"
)

const version = "2.0.0"

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Chinfield Assistant API",
			Description: "Asistente técnico veterinario de Laboratorio Chinfield",
			Version:     version,
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "chat", Description: "Chat operations"}},
	}
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting Chinfield Assistant API")

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := setuplogger.New(cfg.LogLevel)

	pipeline := setup.NewPipeline(cfg, &logger)
	defer pipeline.Close()

	policy := handoff.NewPolicy(cfg.ConfidenceThreshold)
	handler := agent.NewHandler(pipeline, policy, version)

	container := restful.NewContainer()

	// Add filters
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)

	// Register API
	agent.RegisterRoutes(container, handler)

	openAPIConfig := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/api/openapi.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(openAPIConfig))

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("address", addr).Str("provider", cfg.Provider).Msg("Starting server")

	server := http.Server{
		Addr:         addr,
		Handler:      corsHandler.Handler(container),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
