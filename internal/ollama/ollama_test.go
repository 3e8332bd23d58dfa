// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/usbai/internal/classify"
	"github.com/jeranaias/usbai/internal/genparams"
	"github.com/jeranaias/usbai/internal/model"
)

func testClient(url string) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: url})
}

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, testClient(srv.URL).CheckRunning(context.Background()))
}

func TestCheckRunningDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := testClient(srv.URL).CheckRunning(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotRunning(err))
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(ListModelsResponse{
			Models: []ModelInfo{{Name: "gemma-3-1b-it"}, {Name: "tinyllama"}},
		})
	}))
	defer srv.Close()

	models, err := testClient(srv.URL).ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gemma-3-1b-it", models[0].Name)
}

func TestGenerateModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), &GenerateRequest{Model: "nope", Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, IsModelNotFound(err))
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(OllamaError{Error: "model requires more memory"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), &GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, ErrTypeInvalidResponse, clientErr.Type)
	assert.Contains(t, clientErr.Message, "more memory")
}

func testProfile() model.Profile {
	return model.Profile{Name: "gemma-3-1b-it", Family: model.FamilyGemma, ContextLength: 8192}
}

func TestBackendRoundTrip(t *testing.T) {
	var gotReq GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(GenerateResponse{Response: "Paris is the capital.", Done: true})
	}))
	defer srv.Close()

	b := NewBackend(testClient(srv.URL), testProfile())
	ctx := context.Background()

	const promptText = "<start_of_turn>user\nWhat is the capital of France?<end_of_turn>\n<start_of_turn>model\n"
	tokens, err := b.Tokenize(ctx, promptText, 512)
	require.NoError(t, err)

	// The encoding is lossless: the server sees the exact prompt.
	decoded, err := b.Decode(ctx, tokens)
	require.NoError(t, err)
	assert.Equal(t, promptText, decoded)

	out, err := b.Generate(ctx, tokens, genparams.Select(classify.KindFactual))
	require.NoError(t, err)
	assert.Equal(t, promptText, gotReq.Prompt)
	assert.Equal(t, "gemma-3-1b-it", gotReq.Model)
	assert.True(t, gotReq.Raw)

	text, err := b.Decode(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital.", text)
}

func TestBackendTruncation(t *testing.T) {
	b := NewBackend(testClient("http://127.0.0.1:1"), testProfile())

	tokens, err := b.Tokenize(context.Background(), "one two three four five", 3)
	require.NoError(t, err)
	assert.Len(t, tokens, 3)

	// "one", " ", "two" survive the cut.
	text, err := b.Decode(context.Background(), tokens)
	require.NoError(t, err)
	assert.Equal(t, "one two", text)
}

func TestBackendUnknownToken(t *testing.T) {
	b := NewBackend(testClient("http://127.0.0.1:1"), testProfile())
	_, err := b.Decode(context.Background(), []int{42})
	assert.Error(t, err)
}

func TestOptionsFromSampling(t *testing.T) {
	p := genparams.Select(classify.KindFactual)
	opts := optionsFrom(p, 4096)

	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.5, *opts.Temperature, 1e-9)
	require.NotNil(t, opts.TopP)
	require.NotNil(t, opts.TopK)
	assert.Equal(t, 4096, opts.NumCtx)
	assert.Equal(t, p.MaxNewTokens, opts.NumPredict)
}

func TestOptionsFromGreedy(t *testing.T) {
	p := genparams.Select(classify.KindMath)
	opts := optionsFrom(p, 2048)

	// Greedy decoding pins temperature to zero and leaves the other
	// sampling knobs out of the request entirely.
	require.NotNil(t, opts.Temperature)
	assert.Zero(t, *opts.Temperature)
	assert.Nil(t, opts.TopP)
	assert.Nil(t, opts.TopK)

	data, err := json.Marshal(opts)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "top_p")
	assert.NotContains(t, string(data), "top_k")
}

func TestSplitRuns(t *testing.T) {
	assert.Nil(t, splitRuns(""))
	assert.Equal(t, []string{"abc"}, splitRuns("abc"))
	assert.Equal(t, []string{"a", " \t", "b", "\n"}, splitRuns("a \tb\n"))
	assert.Equal(t, []string{"  ", "x"}, splitRuns("  x"))
}
