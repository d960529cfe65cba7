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

import "errors"

// Domain validation errors
var (
	// ErrInvalidLogRecord indicates a LogRecord failed validation.
	ErrInvalidLogRecord = errors.New("invalid log record")

	// ErrEmptyID indicates the Id field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidSource indicates an invalid LogSource value.
	ErrInvalidSource = errors.New("invalid log source")

	// ErrInvalidTagCategory indicates an invalid TagCategory value.
	ErrInvalidTagCategory = errors.New("invalid tag category")
)
