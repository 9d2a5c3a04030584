// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package a2akit

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Part kinds for the part union.
const (
	PartKindText = "text"
	PartKindData = "data"
	PartKindFile = "file"
)

// Part represents one segment of message or artifact content. It is a
// discriminated union of TextPart, DataPart, and FilePart, tagged by the
// "kind" field.
type Part interface {
	GetKind() string
	GetMetadata() map[string]any
}

// TextPart represents a plain text segment.
type TextPart struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// GetKind returns the part kind.
func (p *TextPart) GetKind() string { return p.Kind }

// GetMetadata returns the part metadata.
func (p *TextPart) GetMetadata() map[string]any { return p.Metadata }

// DataPart represents a structured data segment.
type DataPart struct {
	Kind     string         `json:"kind"`
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// GetKind returns the part kind.
func (p *DataPart) GetKind() string { return p.Kind }

// GetMetadata returns the part metadata.
func (p *DataPart) GetMetadata() map[string]any { return p.Metadata }

// FileContent carries file content either by URI or as base64 bytes.
// Exactly one of URI and Bytes is expected to be set.
type FileContent struct {
	Name     string `json:"name,omitzero"`
	MimeType string `json:"mimeType,omitzero"`
	URI      string `json:"uri,omitzero"`
	Bytes    string `json:"bytes,omitzero"`
}

// FilePart represents a file segment.
type FilePart struct {
	Kind     string         `json:"kind"`
	File     FileContent    `json:"file"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// GetKind returns the part kind.
func (p *FilePart) GetKind() string { return p.Kind }

// GetMetadata returns the part metadata.
func (p *FilePart) GetMetadata() map[string]any { return p.Metadata }

var (
	_ Part = (*TextPart)(nil)
	_ Part = (*DataPart)(nil)
	_ Part = (*FilePart)(nil)
)

// PartList is an ordered sequence of parts with union-aware JSON decoding.
// Marshaling uses each part's concrete type; unmarshaling discriminates on
// the "kind" field.
type PartList []Part

// UnmarshalJSON implements the part union decoding.
func (pl *PartList) UnmarshalJSON(data []byte) error {
	var raw []jsontext.Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal parts: %w", err)
	}

	parts := make(PartList, 0, len(raw))
	for i, rv := range raw {
		var kind struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(rv, &kind); err != nil {
			return fmt.Errorf("failed to unmarshal part %d kind: %w", i, err)
		}

		var part Part
		switch kind.Kind {
		case PartKindText:
			part = new(TextPart)
		case PartKindData:
			part = new(DataPart)
		case PartKindFile:
			part = new(FilePart)
		default:
			return fmt.Errorf("unknown part kind at index %d: %q", i, kind.Kind)
		}
		if err := json.Unmarshal(rv, part); err != nil {
			return fmt.Errorf("failed to unmarshal %s part at index %d: %w", kind.Kind, i, err)
		}
		parts = append(parts, part)
	}

	*pl = parts
	return nil
}

// NewTextPart creates a text part.
func NewTextPart(text string) *TextPart {
	return &TextPart{Kind: PartKindText, Text: text}
}

// NewDataPart creates a structured data part.
func NewDataPart(data map[string]any) *DataPart {
	return &DataPart{Kind: PartKindData, Data: data}
}

// NewFilePart creates a file part.
func NewFilePart(file FileContent) *FilePart {
	return &FilePart{Kind: PartKindFile, File: file}
}
