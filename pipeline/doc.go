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


// Package pipeline turns ordered chunk texts into ordered embedding vectors.
//
// It splits the input into batches sized by the provider profile, runs the
// batches on a bounded worker pool with per-batch retry, and aggregates the
// per-batch outcomes under a failure-rate threshold. Critical provider
// errors (auth, quota, rate limit) abort the whole call; smaller failure
// rates degrade to partial results.
package pipeline
