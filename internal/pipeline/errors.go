/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package pipeline

import (
	"fmt"
)

// ErrEmptyInput reports a table with zero rows or zero columns. The run
// aborts before any stage executes.
type ErrEmptyInput struct {
	Msg string
}

// ErrInvalidConfig reports a configuration value outside its valid domain.
// Rejected before the pipeline starts.
type ErrInvalidConfig struct {
	Field string
	Msg   string
}

// ErrStage reports an internal inconsistency between stages. It is a defect,
// never an expected data-quality condition.
type ErrStage struct {
	Stage string
	Msg   string
	Err   error
}

func (e *ErrEmptyInput) Error() string {
	return fmt.Sprintf("empty input: %s", e.Msg)
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Msg)
}

func (e *ErrStage) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stage %s failed: %s: %v", e.Stage, e.Msg, e.Err)
	}
	return fmt.Sprintf("stage %s failed: %s", e.Stage, e.Msg)
}

func (e *ErrStage) Unwrap() error {
	return e.Err
}
