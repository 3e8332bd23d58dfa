// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model resolves model names to static profiles.
//
// The set of supported model families is closed: a profile is looked up once
// at engine construction via case-insensitive substring matching, and the
// resulting Profile is treated as read-only for the life of the engine. No
// runtime discovery, no dynamic loading by name.
package model

import "strings"

// Family identifies a supported model family.
type Family int

const (
	// FamilyGeneric is the conservative fallback for unknown models.
	FamilyGeneric Family = iota
	FamilyGemma
	FamilyLlama
	FamilyPhi
	FamilyDeepSeek
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyGemma:
		return "gemma"
	case FamilyLlama:
		return "llama"
	case FamilyPhi:
		return "phi"
	case FamilyDeepSeek:
		return "deepseek"
	default:
		return "generic"
	}
}

// Profile holds the static metadata for a resolved model.
type Profile struct {
	// Name is the model name the profile was resolved from.
	Name string
	// Family selects the prompt formatting and extraction implementation.
	Family Family
	// ContextLength is the model's context window cap in tokens.
	ContextLength int
	// IsChat indicates the model expects chat-turn formatting.
	IsChat bool
}

// DefaultContextLength is the conservative cap used for unknown models.
const DefaultContextLength = 2048

// familyEntry pairs a name substring with its profile template.
type familyEntry struct {
	substr        string
	family        Family
	contextLength int
}

// familyTable is checked in order; the first substring match wins.
var familyTable = []familyEntry{
	{substr: "gemma", family: FamilyGemma, contextLength: 8192},
	{substr: "llama", family: FamilyLlama, contextLength: 4096},
	{substr: "phi", family: FamilyPhi, contextLength: 2048},
	{substr: "deepseek", family: FamilyDeepSeek, contextLength: 4096},
}

// Resolve maps a model name to its Profile. Unmatched names fall back to a
// generic chat profile with a conservative context length.
func Resolve(name string) Profile {
	lower := strings.ToLower(name)
	for _, e := range familyTable {
		if strings.Contains(lower, e.substr) {
			return Profile{
				Name:          name,
				Family:        e.family,
				ContextLength: e.contextLength,
				IsChat:        true,
			}
		}
	}
	return Profile{
		Name:          name,
		Family:        FamilyGeneric,
		ContextLength: DefaultContextLength,
		IsChat:        true,
	}
}

// Known returns the model families with dedicated formatting support.
func Known() []Family {
	return []Family{FamilyGemma, FamilyLlama, FamilyPhi, FamilyDeepSeek, FamilyGeneric}
}
