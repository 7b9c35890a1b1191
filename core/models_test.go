package core

import (
	"testing"
)

func TestDocument_ChunkTexts(t *testing.T) {
	doc := &Document{
		Title: "manual",
		Chunks: []*Chunk{
			{Content: "first", Seq: 0},
			{Content: "second", Seq: 1},
			{Content: "third", Seq: 2},
		},
	}

	texts := doc.ChunkTexts()
	if len(texts) != 3 {
		t.Fatalf("ChunkTexts() returned %d texts, want 3", len(texts))
	}
	want := []string{"first", "second", "third"}
	for i, text := range texts {
		if text != want[i] {
			t.Errorf("ChunkTexts()[%d] = %q, want %q", i, text, want[i])
		}
	}
}

func TestDocument_ChunkTexts_Empty(t *testing.T) {
	doc := &Document{Title: "empty"}
	if texts := doc.ChunkTexts(); len(texts) != 0 {
		t.Errorf("ChunkTexts() on empty document returned %d texts", len(texts))
	}
}

func TestDocument_StampChunks(t *testing.T) {
	doc := &Document{
		Id:     ID("doc-123"),
		Title:  "manual",
		Labels: []string{"docs", "internal"},
		Chunks: []*Chunk{
			{Content: "first", Seq: 0},
			{Content: "second", Seq: 1},
		},
	}

	doc.StampChunks()

	for i, chunk := range doc.Chunks {
		if chunk.DocId != doc.Id {
			t.Errorf("chunk %d DocId = %q, want %q", i, chunk.DocId, doc.Id)
		}
		if chunk.Title != doc.Title {
			t.Errorf("chunk %d Title = %q, want %q", i, chunk.Title, doc.Title)
		}
		if len(chunk.Labels) != len(doc.Labels) {
			t.Errorf("chunk %d has %d labels, want %d", i, len(chunk.Labels), len(doc.Labels))
		}
	}
}
