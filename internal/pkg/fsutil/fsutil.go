// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package fsutil implements file manipulation helpers shared by the toolkit
// packages.
package fsutil

import (
	"fmt"
	"os"
	"strings"
)

// ReplaceTextInFile replaces every occurrence of oldText with newText in the
// file at path. The updated content is written to a temporary file that is
// then renamed over the original so a failure cannot leave a half-written
// file behind. It returns true when at least one occurrence was replaced.
func ReplaceTextInFile(path string, oldText string, newText string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("unable to read %s: %s", path, err)
	}

	text := string(content)
	if !strings.Contains(text, oldText) {
		return false, nil
	}
	text = strings.ReplaceAll(text, oldText, newText)

	tempPath := path + ".tmp"
	err = os.WriteFile(tempPath, []byte(text), 0644)
	if err != nil {
		return false, fmt.Errorf("unable to write %s: %s", tempPath, err)
	}
	err = os.Rename(tempPath, path)
	if err != nil {
		return false, fmt.Errorf("unable to rename %s to %s: %s", tempPath, path, err)
	}

	return true, nil
}
