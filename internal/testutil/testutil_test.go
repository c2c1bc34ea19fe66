package testutil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamples(t *testing.T) {
	seq := Samples(4)
	require.Len(t, seq, 4)
	assert.Equal(t, 0.0, seq[0].Angle)
	assert.Equal(t, 270.0, seq[3].Angle)
	assert.Equal(t, 4.0, seq[3].Distance)
	assert.Equal(t, "AUTO", seq[2].Mode)

	assert.Empty(t, Samples(0))
}

func TestSource(t *testing.T) {
	src := NewSource(Samples(2))
	seq, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, seq, 2)

	seq[0].Distance = 99
	again, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, again[0].Distance, "fetch must return a copy")

	boom := errors.New("boom")
	src.Set(nil, boom)
	_, err = src.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, src.Calls())
}

func TestAssertStatusCode(t *testing.T) {
	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
}

func TestNewJSONRequestAndDecode(t *testing.T) {
	req := NewJSONRequest(t, http.MethodPatch, "/api/view", map[string]int{"window_size": 3})
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	rec := httptest.NewRecorder()
	_, _ = rec.WriteString(`{"window_size":3}`)
	var got map[string]int
	DecodeJSON(t, rec, &got)
	assert.Equal(t, 3, got["window_size"])
}
