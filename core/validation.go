// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Every chunk must pass ValidateChunk
//   - Chunk sequence indices must be unique within the document
//
// NOT validated (populated later in the pipeline):
//   - Id (empty until the store assigns one)
//   - Chunk vectors and projections (empty until vectorized)
func ValidateDocument(document *Document) error {
	if document == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if document.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	seen := make(map[int]struct{}, len(document.Chunks))
	for _, chunk := range document.Chunks {
		if err := ValidateChunk(chunk); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		if _, ok := seen[chunk.Seq]; ok {
			return fmt.Errorf("%w: %w: index %d", ErrInvalidDocument, ErrDuplicateSequence, chunk.Seq)
		}
		seen[chunk.Seq] = struct{}{}
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Seq < 0 {
		return fmt.Errorf("%w: negative sequence index %d", ErrInvalidChunk, chunk.Seq)
	}

	return nil
}
