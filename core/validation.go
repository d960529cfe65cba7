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

import (
	"fmt"
	"time"
)

// ValidateLogRecord validates a LogRecord according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Content must not be empty
//   - Source must be valid (manual or external-commit)
//   - Timestamp must not be in the future
//   - All tag categories must be valid
//
// NOT validated (populated during ingestion):
//   - Tags may be empty until tag extraction runs
//   - Summary may be empty
func ValidateLogRecord(record *LogRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidLogRecord)
	}

	if record.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidLogRecord, ErrEmptyID)
	}

	if record.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidLogRecord, ErrEmptyContent)
	}

	if err := ValidateLogSource(record.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLogRecord, err)
	}

	if !IsValidTimestamp(record.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidLogRecord, ErrInvalidTimestamp)
	}

	for _, tag := range record.Tags {
		if err := ValidateTagCategory(tag.Category); err != nil {
			return fmt.Errorf("%w: tag %q: %w", ErrInvalidLogRecord, tag.Name, err)
		}
	}

	return nil
}

// ValidateLogSource validates that a LogSource has a valid value.
func ValidateLogSource(source LogSource) error {
	if source != SourceManual && source != SourceCommit {
		return fmt.Errorf("%w: value %d", ErrInvalidSource, source)
	}
	return nil
}

// ValidateTagCategory validates that a TagCategory has a valid value.
func ValidateTagCategory(category TagCategory) error {
	if category < CategoryLanguage || category > CategoryOther {
		return fmt.Errorf("%w: value %d", ErrInvalidTagCategory, category)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
