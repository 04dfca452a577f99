package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parthkaria14/GenAdvisor/internal/market"
)

func TestLoadAppConfigDefaults(t *testing.T) {
	orig := *globalFlags
	t.Cleanup(func() { *globalFlags = orig })

	globalFlags.HomeDir = t.TempDir() // no config.yaml present
	globalFlags.ConfigFile = ""
	globalFlags.LogLevel = ""
	globalFlags.Verbose = false

	cfg, err := loadAppConfig()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, globalFlags.HomeDir, cfg.Core.HomeDir)
}

func TestLoadAppConfigFlagOverrides(t *testing.T) {
	orig := *globalFlags
	t.Cleanup(func() { *globalFlags = orig })

	globalFlags.HomeDir = t.TempDir()
	globalFlags.ConfigFile = ""
	globalFlags.Verbose = true

	cfg, err := loadAppConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestNewsDocuments(t *testing.T) {
	snap := market.NewSnapshot()
	published := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	snap.News = []market.NewsItem{
		{Title: "Reliance wins contract", Description: "Exploration deal", Source: "moneycontrol.com", PublishedAt: published},
		{}, // nothing to index
		{Title: "ONGC output rises", Content: "Crude production up 4%"},
	}

	docs := newsDocuments(snap)
	require.Len(t, docs, 2)

	assert.Equal(t, "news-0", docs[0].ID)
	assert.Equal(t, "Reliance wins contract\nExploration deal", docs[0].Content)
	assert.Equal(t, "news", docs[0].Metadata.DocType)
	assert.Equal(t, "moneycontrol.com", docs[0].Metadata.Source)
	assert.Equal(t, published, docs[0].Metadata.IngestedAt)

	assert.Equal(t, "news-2", docs[1].ID)
	assert.Contains(t, docs[1].Content, "Crude production")
}

func TestGetOutputFormat(t *testing.T) {
	f := &GlobalFlags{OutputFormat: "json"}
	assert.Equal(t, FormatJSON, f.GetOutputFormat())

	f.OutputFormat = "text"
	assert.Equal(t, FormatText, f.GetOutputFormat())

	f.OutputFormat = "yaml" // unknown falls back to text
	assert.Equal(t, FormatText, f.GetOutputFormat())
}
