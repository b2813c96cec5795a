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
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadContextFiles reads the content of the specified context files and combines them into a single string.
func ReadContextFiles(filePaths string) (string, error) {
	if filePaths == "" {
		return "", nil // No context files provided
	}

	paths := strings.Split(filePaths, ",")
	var combinedContext strings.Builder
	for _, path := range paths {
		path = strings.TrimSpace(path)
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read context file '%s': %w", path, err)
		}
		combinedContext.WriteString("\n-- Context from file: " + path + " --\n")
		combinedContext.WriteString(string(content))
	}
	return combinedContext.String(), nil
}

// DefaultCleanedPath derives the cleaned-CSV output path from the input path:
// data.csv becomes data_cleaned.csv. SQL sources pass the table name and get
// <table>_cleaned.csv in the working directory.
func DefaultCleanedPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := filepath.Dir(input)
	return filepath.Join(dir, base+"_cleaned.csv")
}

// DefaultReportPath derives the JSON report output path from the input path:
// data.csv becomes data_report.json.
func DefaultReportPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := filepath.Dir(input)
	return filepath.Join(dir, base+"_report.json")
}

// ParseTableFlag parses a --table value of the form "name" or
// "name[col1,col2]" into the table name and an optional column selection.
func ParseTableFlag(tableFlag string) (string, []string, error) {
	tableFlag = strings.ReplaceAll(tableFlag, " ", "")
	if tableFlag == "" {
		return "", nil, fmt.Errorf("table name is empty")
	}

	bracketStart := strings.Index(tableFlag, "[")
	if bracketStart == -1 {
		return tableFlag, nil, nil
	}

	bracketEnd := strings.Index(tableFlag, "]")
	if bracketEnd == -1 {
		return "", nil, fmt.Errorf("missing closing bracket in: %s", tableFlag)
	}

	tableName := tableFlag[:bracketStart]
	if tableName == "" {
		return "", nil, fmt.Errorf("table name is empty in: %s", tableFlag)
	}
	columnsStr := tableFlag[bracketStart+1 : bracketEnd]

	var columns []string
	for _, col := range strings.Split(columnsStr, ",") {
		if col != "" {
			columns = append(columns, col)
		}
	}
	return tableName, columns, nil
}
