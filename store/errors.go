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
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrNotReady indicates the store connection failed its health check.
	ErrNotReady = errors.New("store is not ready")

	// ErrConnection indicates a lost or unusable store connection.
	ErrConnection = errors.New("store connection error")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrCollectionNotFound indicates an operation against a collection
	// that was never created.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)

// connectionMarkers are the substrings that identify a connection-level
// failure in an error message from a backend or driver.
var connectionMarkers = []string{
	"closed",
	"connection",
	"timeout",
	"network",
	"unreachable",
}

// IsConnectionError reports whether err looks like a lost-connection
// failure that a reconnect could fix. It matches the ErrConnection and
// ErrStorageClosed sentinels directly and falls back to message inspection
// for errors from backend drivers.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnection) || errors.Is(err, ErrStorageClosed) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range connectionMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
