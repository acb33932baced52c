package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sreevatsan/storysmith/internal/types"
)

func newTestHub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{BaseURL: "http://localhost"}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestPullPrompt(t *testing.T) {
	client := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/prompts/story-outline" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("include_model") != "true" {
			t.Error("expected include_model=true")
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("X-API-Key = %q", got)
		}

		json.NewEncoder(w).Encode(Prompt{
			Name: "story-outline",
			Messages: []MessageTemplate{
				{Role: "system", Content: "You write story outlines."},
				{Role: "user", Content: "Genre: {genre}. Context: {context}."},
			},
			Model: &ModelConfig{Model: "gpt-4o-mini", Temperature: 0.7},
		})
	})

	prompt, err := client.PullPrompt(context.Background(), "story-outline", true)
	if err != nil {
		t.Fatalf("PullPrompt: %v", err)
	}
	if prompt.Name != "story-outline" || len(prompt.Messages) != 2 {
		t.Errorf("prompt = %+v", prompt)
	}
	if prompt.Model == nil || prompt.Model.Model != "gpt-4o-mini" {
		t.Errorf("model config = %+v", prompt.Model)
	}
}

func TestPullPromptNotFound(t *testing.T) {
	client := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.PullPrompt(context.Background(), "missing", false)
	if !errors.Is(err, types.ErrPromptNotFound) {
		t.Errorf("error = %v, want ErrPromptNotFound", err)
	}
}

func TestCreateDatasetAndExamples(t *testing.T) {
	client := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/datasets":
			var dataset Dataset
			json.NewDecoder(r.Body).Decode(&dataset)
			if dataset.Name != "Movie Ratings Dataset" {
				t.Errorf("dataset name = %q", dataset.Name)
			}
			dataset.ID = "ds_123"
			json.NewEncoder(w).Encode(dataset)

		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/datasets/ds_123/examples":
			var body struct {
				Examples []Example `json:"examples"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if len(body.Examples) != 2 {
				t.Errorf("uploaded %d examples, want 2", len(body.Examples))
			}
			w.WriteHeader(http.StatusCreated)

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	})

	dataset, err := client.CreateDataset(context.Background(), "Movie Ratings Dataset", "ratings")
	if err != nil {
		t.Fatalf("CreateDataset: %v", err)
	}
	if dataset.ID != "ds_123" {
		t.Errorf("dataset ID = %q", dataset.ID)
	}

	examples := []Example{
		{Inputs: map[string]string{"movie_description": "ring quest", "decade": "2000s"}},
		{Inputs: map[string]string{"movie_description": "archaeologist with a whip", "decade": "1980s"}},
	}
	if err := client.CreateExamples(context.Background(), dataset.ID, examples); err != nil {
		t.Fatalf("CreateExamples: %v", err)
	}
}

func TestListExamples(t *testing.T) {
	client := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/datasets/story%20input/examples" && r.URL.Path != "/api/v1/datasets/story input/examples" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"examples": []Example{
				{ID: "ex_1", Inputs: map[string]string{"genre": "horror"}},
				{ID: "ex_2", Inputs: map[string]string{"genre": "fantasy"}},
			},
		})
	})

	examples, err := client.ListExamples(context.Background(), "story input")
	if err != nil {
		t.Fatalf("ListExamples: %v", err)
	}
	if len(examples) != 2 || examples[0].ID != "ex_1" {
		t.Errorf("examples = %+v", examples)
	}
}

func TestCreateRun(t *testing.T) {
	client := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/runs" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var run Run
		json.NewDecoder(r.Body).Decode(&run)
		if run.Experiment == "" || run.Output == "" {
			t.Errorf("run = %+v", run)
		}
		w.WriteHeader(http.StatusCreated)
	})

	err := client.CreateRun(context.Background(), Run{
		Experiment: "story-outline-evaluation-abc12345",
		Inputs:     map[string]string{"genre": "horror"},
		Output:     "an outline",
	})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	client := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	if _, err := client.ListExamples(context.Background(), "any"); err == nil {
		t.Error("expected error for 500 response")
	}
}
