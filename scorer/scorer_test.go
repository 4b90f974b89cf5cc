package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emergency-alert-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/score", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Kind    string `json:"kind"`
			Content string `json:"content"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text", req.Kind)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"severity": 72,
			"tags":     []string{"structural", "urban"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	result, err := c.Score(context.Background(), models.ReportKindText, "bridge crack widening")
	require.NoError(t, err)
	assert.Equal(t, 72, result.Severity)
	assert.Equal(t, []string{"structural", "urban"}, result.Tags)
	assert.False(t, result.Fallback)
}

func TestScore_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "model unavailable"})
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	_, err := c.Score(context.Background(), models.ReportKindText, "x")
	assert.Error(t, err)
}

func TestScore_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	_, err := c.Score(context.Background(), models.ReportKindText, "x")
	assert.Error(t, err)
}

func TestScore_SeverityOutOfRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"severity": 250})
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	_, err := c.Score(context.Background(), models.ReportKindText, "x")
	assert.Error(t, err)
}

func TestScore_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := NewClient(server.URL, 20*time.Millisecond)
	_, err := c.Score(context.Background(), models.ReportKindText, "x")
	assert.Error(t, err)
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewClient("", time.Second).Enabled())
	assert.True(t, NewClient("http://localhost:9090", time.Second).Enabled())
}
