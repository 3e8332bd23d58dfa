// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package convert writes models out in the Unified AI Model Format
// (UAMF): a directory of config.json, metadata.json, weights.bin and
// tokenizer.json.
//
// Weight translation from the source formats is not implemented yet;
// the converter lays down the UAMF directory structure with placeholder
// weights so the surrounding tooling can be exercised end to end.
// TODO: wire real weight conversion for the huggingface source format.
package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jeranaias/usbai/internal/util"
)

// Format identifies a supported source model format.
type Format string

const (
	FormatHuggingFace Format = "huggingface"
	FormatPyTorch     Format = "pytorch"
	FormatONNX        Format = "onnx"
)

// Formats lists the supported source formats.
func Formats() []Format {
	return []Format{FormatHuggingFace, FormatPyTorch, FormatONNX}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s (supported: huggingface, pytorch, onnx)", s)
}

// ModelConfig is the UAMF config.json payload.
type ModelConfig struct {
	ModelType    string       `json:"model_type"`
	Architecture Architecture `json:"architecture"`
	Quantization Quantization `json:"quantization"`
	MemoryMap    MemoryMap    `json:"memory_map"`
}

// Architecture describes the transformer shape.
type Architecture struct {
	HiddenSize            int `json:"hidden_size"`
	NumAttentionHeads     int `json:"num_attention_heads"`
	NumHiddenLayers       int `json:"num_hidden_layers"`
	IntermediateSize      int `json:"intermediate_size"`
	MaxPositionEmbeddings int `json:"max_position_embeddings"`
	VocabSize             int `json:"vocab_size"`
}

// Quantization describes the weight quantization scheme.
type Quantization struct {
	Enabled bool   `json:"enabled"`
	Bits    int    `json:"bits"`
	Scheme  string `json:"scheme"`
}

// MemoryMap describes the weight chunk layout.
type MemoryMap struct {
	ChunkSize int    `json:"chunk_size"`
	NumChunks int    `json:"num_chunks"`
	Layout    string `json:"layout"`
}

// Metadata is the UAMF metadata.json payload.
type Metadata struct {
	ModelInfo   ModelInfo   `json:"model_info"`
	Performance Performance `json:"performance"`
	Security    Security    `json:"security"`
}

// ModelInfo identifies the converted model.
type ModelInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Author       string `json:"author"`
	License      string `json:"license"`
	SourceFormat string `json:"source_format"`
}

// Performance records target hardware characteristics.
type Performance struct {
	TargetRAM       string `json:"target_ram"`
	MinRAM          string `json:"min_ram"`
	TokensPerSecond int    `json:"tokens_per_second"`
}

// Security carries the integrity checksum of weights.bin.
type Security struct {
	Checksum string `json:"checksum"`
}

// Converter writes UAMF model directories under OutputDir.
type Converter struct {
	OutputDir string
}

// NewConverter creates a converter rooted at outputDir.
func NewConverter(outputDir string) *Converter {
	return &Converter{OutputDir: outputDir}
}

// Convert converts a model to UAMF format under OutputDir/modelName.
// Returns the model directory path.
func (c *Converter) Convert(sourcePath, modelName string, format Format) (string, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return "", err
	}
	if modelName == "" {
		return "", fmt.Errorf("model name must not be empty")
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return "", fmt.Errorf("source path not accessible: %w", err)
	}

	modelDir := filepath.Join(c.OutputDir, modelName)
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	weights := []byte("placeholder")
	if err := os.WriteFile(filepath.Join(modelDir, "weights.bin"), weights, 0o644); err != nil {
		return "", fmt.Errorf("failed to write weights: %w", err)
	}

	sum := sha256.Sum256(weights)

	cfg := ModelConfig{
		ModelType: "transformer",
		Architecture: Architecture{
			HiddenSize:            4096,
			NumAttentionHeads:     32,
			NumHiddenLayers:       32,
			IntermediateSize:      11008,
			MaxPositionEmbeddings: 4096,
			VocabSize:             32000,
		},
		Quantization: Quantization{Enabled: true, Bits: 4, Scheme: "symmetric"},
		MemoryMap:    MemoryMap{ChunkSize: 50000000, NumChunks: 44, Layout: "sequential"},
	}
	if err := writeJSON(filepath.Join(modelDir, "config.json"), cfg); err != nil {
		return "", err
	}

	meta := Metadata{
		ModelInfo: ModelInfo{
			Name:         modelName,
			Version:      "1.0.0",
			Author:       "USB-AI",
			License:      "MIT",
			SourceFormat: string(format),
		},
		Performance: Performance{
			TargetRAM:       "8GB",
			MinRAM:          "4GB",
			TokensPerSecond: 20,
		},
		Security: Security{Checksum: hex.EncodeToString(sum[:])},
	}
	if err := writeJSON(filepath.Join(modelDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(modelDir, "tokenizer.json"), map[string]string{"type": "placeholder"}); err != nil {
		return "", err
	}

	log.Printf("convert: wrote UAMF model %q from %s source to %s", modelName, format, modelDir)
	return modelDir, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
