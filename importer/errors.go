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


package importer

import (
	"fmt"

	"github.com/poiesic/docport/core"
)

// ConsistencyError reports a chunk count mismatch discovered by the
// post-import verification.
type ConsistencyError struct {
	DocID    core.ID
	Expected int
	Actual   int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("document %s: expected %d chunks in store, found %d", e.DocID, e.Expected, e.Actual)
}

// ItemError reports a per-item failure from a bulk chunk insert.
type ItemError struct {
	SubBatch int // 0-based sub-batch index
	Item     int // 0-based position within the sub-batch
	Err      error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("sub-batch %d item %d: %v", e.SubBatch+1, e.Item, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
