// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("pytorch")
	require.NoError(t, err)
	assert.Equal(t, FormatPyTorch, f)

	_, err = ParseFormat("tensorflow")
	assert.Error(t, err)
}

func TestConvertWritesUAMFLayout(t *testing.T) {
	src := filepath.Join(t.TempDir(), "model.safetensors")
	require.NoError(t, os.WriteFile(src, []byte("raw"), 0o644))

	out := t.TempDir()
	dir, err := NewConverter(out).Convert(src, "tiny-test", FormatHuggingFace)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "tiny-test"), dir)

	for _, name := range []string{"config.json", "metadata.json", "weights.bin", "tokenizer.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, "tiny-test", meta.ModelInfo.Name)
	assert.Equal(t, "huggingface", meta.ModelInfo.SourceFormat)

	// Checksum matches the written weights.
	weights, err := os.ReadFile(filepath.Join(dir, "weights.bin"))
	require.NoError(t, err)
	sum := sha256.Sum256(weights)
	assert.Equal(t, hex.EncodeToString(sum[:]), meta.Security.Checksum)
}

func TestConvertRejectsMissingSource(t *testing.T) {
	_, err := NewConverter(t.TempDir()).Convert("/no/such/path", "m", FormatONNX)
	assert.Error(t, err)
}

func TestConvertRejectsBadFormat(t *testing.T) {
	src := filepath.Join(t.TempDir(), "m.onnx")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	_, err := NewConverter(t.TempDir()).Convert(src, "m", Format("gguf"))
	assert.Error(t, err)
}
