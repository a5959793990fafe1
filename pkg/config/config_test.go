package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{Path: "./data/dataset.json", StoreDir: "./data/vector_store"},
		RAG: RAGConfig{
			SearchResults:       3,
			ConfidenceThreshold: 0.65,
			MultiTopicThreshold: 0.85,
			ResultsPerTopic:     3,
			SimilarityThreshold: 0.85,
		},
		Proximity: ProximityConfig{MaxDistanceKm: 20},
		Responses: ResponsesConfig{
			NoInformation: "I don't have information about that.",
			NotSure:       "I'm not sure about that.",
		},
		Offline: OfflineConfig{
			Message:  "Offline. {fact}",
			Fallback: "Known: {fact}",
		},
		Topics: []TopicConfig{
			{Name: "beaches", Keywords: []string{"beach"}},
		},
		Places: []PlaceConfig{
			{Name: "Virac", Lat: 13.5847, Lng: 124.2322, Type: "town"},
		},
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "missing dataset path",
			mutate:  func(c *Config) { c.Dataset.Path = "" },
			wantMsg: "dataset.path",
		},
		{
			name:    "no topics",
			mutate:  func(c *Config) { c.Topics = nil },
			wantMsg: "topic",
		},
		{
			name:    "topic without keywords",
			mutate:  func(c *Config) { c.Topics[0].Keywords = nil },
			wantMsg: "keywords",
		},
		{
			name:    "no places",
			mutate:  func(c *Config) { c.Places = nil },
			wantMsg: "place",
		},
		{
			name: "duplicate place",
			mutate: func(c *Config) {
				c.Places = append(c.Places, c.Places[0])
			},
			wantMsg: "duplicate",
		},
		{
			name:    "latitude out of range",
			mutate:  func(c *Config) { c.Places[0].Lat = 91 },
			wantMsg: "latitude",
		},
		{
			name:    "longitude out of range",
			mutate:  func(c *Config) { c.Places[0].Lng = -181 },
			wantMsg: "longitude",
		},
		{
			name:    "zero search results",
			mutate:  func(c *Config) { c.RAG.SearchResults = 0 },
			wantMsg: "searchResults",
		},
		{
			name:    "similarity threshold above one",
			mutate:  func(c *Config) { c.RAG.SimilarityThreshold = 1.5 },
			wantMsg: "similarityThreshold",
		},
		{
			name:    "no-information reply missing marker",
			mutate:  func(c *Config) { c.Responses.NoInformation = "sorry" },
			wantMsg: "noInformation",
		},
		{
			name:    "not-sure reply missing marker",
			mutate:  func(c *Config) { c.Responses.NotSure = "sorry" },
			wantMsg: "notSure",
		},
		{
			name:    "offline message missing placeholder",
			mutate:  func(c *Config) { c.Offline.Message = "offline" },
			wantMsg: "{fact}",
		},
		{
			name:    "prompt template missing placeholders",
			mutate:  func(c *Config) { c.LLM.PromptTemplate = "just the question" },
			wantMsg: "promptTemplate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestPlaceByName(t *testing.T) {
	cfg := validConfig()
	if _, ok := cfg.PlaceByName("Virac"); !ok {
		t.Error("PlaceByName should find a configured place")
	}
	if _, ok := cfg.PlaceByName("Atlantis"); ok {
		t.Error("PlaceByName should not find an unknown place")
	}
}
