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


package store

import (
	"encoding/json"
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
)

// vectorSer handles the embedding payload. Vectors dominate record size, so
// they are stored as raw float32 words rather than JSON.
var vectorSer = ord.NewSliceSer[float32](raw.Float32)

// MarshalRecord serializes a record to bytes: a JSON-encoded property map
// followed by the raw vector.
func MarshalRecord(record *Record) ([]byte, error) {
	props, err := json.Marshal(record.Properties)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	payload := string(props)
	buf := make([]byte, ord.String.Size(payload)+vectorSer.Size(record.Vector))
	n := ord.String.Marshal(payload, buf)
	vectorSer.Marshal(record.Vector, buf[n:])
	return buf, nil
}

// UnmarshalRecord deserializes a record from bytes.
func UnmarshalRecord(data []byte) (*Record, error) {
	payload, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	vector, _, err := vectorSer.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	record := &Record{Vector: vector}
	if err := json.Unmarshal([]byte(payload), &record.Properties); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return record, nil
}
