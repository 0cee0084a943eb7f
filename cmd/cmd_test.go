package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Yates-Labs/lehua/internal/config"
	"github.com/Yates-Labs/lehua/internal/intent"
	"github.com/Yates-Labs/lehua/internal/story"
)

func TestOutputTable(t *testing.T) {
	g, err := story.Default()
	if err != nil {
		t.Fatalf("story.Default() error = %v", err)
	}

	var buf bytes.Buffer
	if err := outputTable(&buf, g); err != nil {
		t.Fatalf("outputTable() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"SCENE", "intro ▶", "scene_3 ◆", "negotiation", "(ending)",
		"1 → scene_2_ridge", "* → scene_1_more_info",
		"10 scenes, 6 decisions, 3 endings",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestHandleExport(t *testing.T) {
	g, err := story.Default()
	if err != nil {
		t.Fatalf("story.Default() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := handleExport(g, path); err != nil {
		t.Fatalf("handleExport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var export story.GraphExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
}

func TestLoadGraph_StoryFlag(t *testing.T) {
	defer func() { storyFile = "" }()

	storyFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := loadGraph(); err == nil {
		t.Error("loadGraph() expected error for missing story file")
	}

	storyFile = ""
	g, err := loadGraph()
	if err != nil {
		t.Fatalf("loadGraph() error = %v", err)
	}
	if g.Entry != "intro" {
		t.Errorf("Entry = %q, want intro", g.Entry)
	}
}

func TestBuildClassifier(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantNil bool
	}{
		{"none", config.Config{Classifier: config.ClassifierNone, OpenAIAPIKey: "sk-test"}, true},
		{"openai without key", config.Config{Classifier: config.ClassifierOpenAI}, true},
		{"openai", config.Config{Classifier: config.ClassifierOpenAI, OpenAIAPIKey: "sk-test", Model: "gpt-3.5-turbo"}, false},
		{"ollama", config.Config{Classifier: config.ClassifierOllama, OllamaHost: "http://localhost:11434", OllamaModel: "llama3"}, false},
		{"embedding", config.Config{Classifier: config.ClassifierEmbedding, OpenAIAPIKey: "sk-test", EmbeddingModel: "text-embedding-3-small"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls, err := buildClassifier(&tt.cfg)
			if err != nil {
				t.Fatalf("buildClassifier() error = %v", err)
			}
			if (cls == nil) != tt.wantNil {
				t.Errorf("buildClassifier() = %v, wantNil %v", cls, tt.wantNil)
			}
		})
	}

	cls, _ := buildClassifier(&config.Config{
		Classifier:             config.ClassifierEmbedding,
		OpenAIAPIKey:           "sk-test",
		EmbeddingModel:         "m",
		EmbeddingMinSimilarity: 0.35,
	})
	emb, ok := cls.(*intent.EmbeddingClassifier)
	if !ok {
		t.Fatalf("embedding backend built %T", cls)
	}
	if emb.MinSimilarity != 0.35 {
		t.Errorf("MinSimilarity = %g, want 0.35", emb.MinSimilarity)
	}
}

func TestLoadPlayConfig_FlagsOverrideBadClassifier(t *testing.T) {
	defer func() { numericOnly, classifier = false, "" }()
	t.Setenv("LEHUA_CLASSIFIER", "gpt4")

	numericOnly, classifier = false, ""
	if _, err := loadPlayConfig(); !errors.Is(err, config.ErrInvalidClassifier) {
		t.Errorf("loadPlayConfig() error = %v, want ErrInvalidClassifier", err)
	}

	numericOnly = true
	cfg, err := loadPlayConfig()
	if err != nil {
		t.Fatalf("loadPlayConfig() with --numeric error = %v", err)
	}
	if cfg.Classifier != config.ClassifierNone {
		t.Errorf("Classifier = %q, want %q", cfg.Classifier, config.ClassifierNone)
	}

	numericOnly, classifier = false, " Ollama "
	cfg, err = loadPlayConfig()
	if err != nil {
		t.Fatalf("loadPlayConfig() with --classifier error = %v", err)
	}
	if cfg.Classifier != config.ClassifierOllama {
		t.Errorf("Classifier = %q, want %q", cfg.Classifier, config.ClassifierOllama)
	}
}

func TestModeNotices(t *testing.T) {
	tests := []struct {
		name     string
		freeText bool
		cfg      config.Config
		buildErr error
		want     string
		reject   string
	}{
		{"free text", true, config.Config{Classifier: config.ClassifierOpenAI}, nil, "natural language", ""},
		{"switched off", false, config.Config{Classifier: config.ClassifierNone}, nil, "Free-text input is off", ""},
		{"missing key", false, config.Config{Classifier: config.ClassifierEmbedding}, nil, "OPENAI_API_KEY", ""},
		{"no ollama host", false, config.Config{Classifier: config.ClassifierOllama}, nil, "OLLAMA_HOST", "OPENAI_API_KEY"},
		{
			"ollama failed to start", false,
			config.Config{Classifier: config.ClassifierOllama, OllamaHost: "::bad"},
			errors.New("invalid host"),
			"ollama classifier could not be started (invalid host)", "credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(modeNotices(tt.freeText, &tt.cfg, tt.buildErr), "\n")
			if !strings.Contains(got, tt.want) {
				t.Errorf("modeNotices() = %q, want it to mention %q", got, tt.want)
			}
			if tt.reject != "" && strings.Contains(got, tt.reject) {
				t.Errorf("modeNotices() = %q, should not mention %q", got, tt.reject)
			}
		})
	}
}
