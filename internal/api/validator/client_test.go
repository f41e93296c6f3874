package validator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepulse/glitchradar/models"
)

func TestValidate(t *testing.T) {
	var received models.ValidationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/validate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(models.ValidationResult{
			Accepted:   true,
			Confidence: 88,
			Reasoning:  "price is 99% below reference with stable history",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	result, err := c.Validate(context.Background(), models.ValidationRequest{
		Title:          "4K TV",
		Retailer:       "example",
		CurrentPrice:   19.99,
		ReferencePrice: 1999,
		Detection: models.DetectResult{
			IsAnomaly:   true,
			AnomalyType: models.AnomalyDecimalError,
			Confidence:  95,
		},
	})

	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, 88.0, result.Confidence)
	assert.Equal(t, models.AnomalyDecimalError, received.Detection.AnomalyType)
}

func TestValidateRetriesOnServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(models.ValidationResult{Accepted: false, Confidence: 20})
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	result, err := c.Validate(context.Background(), models.ValidationRequest{})

	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestValidateBadResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	_, err := c.Validate(context.Background(), models.ValidationRequest{})

	assert.Error(t, err)
}
