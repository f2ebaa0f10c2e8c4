package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/rs/zerolog"

	"github.com/ShayCichocki/teamplan/internal/api"
	"github.com/ShayCichocki/teamplan/internal/config"
	"github.com/ShayCichocki/teamplan/internal/decompose"
)

// newProvider builds the Claude provider, or returns nil when the provider
// is disabled or no credentials are available. A nil provider makes the
// planner use template decomposition.
func newProvider(cfg *config.Config, logger zerolog.Logger) (decompose.Provider, *api.Client, error) {
	if !cfg.Provider.Enabled {
		logger.Debug().Msg("provider disabled by config")
		return nil, nil, nil
	}

	source := config.GetAPIKeySource(cfg)
	if source == config.KeySourceNone {
		logger.Info().Msg("no Anthropic credentials configured, using template decomposition")
		return nil, nil, nil
	}

	var key string
	if source != config.KeySourceBedrock {
		key, _ = config.GetAPIKey(cfg)
	}
	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        key,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create API client: %w", err)
	}
	logger.Debug().
		Str("model", string(client.Model())).
		Str("credentials", string(source)).
		Msg("using Claude provider")

	provider := api.NewProvider(client, api.ProviderConfig{
		MaxTokens:         cfg.Anthropic.MaxTokens,
		RequestsPerMinute: cfg.Anthropic.RequestsPerMinute,
		Logger:            logger.With().Str("component", "api").Logger(),
	})
	return provider, client, nil
}
