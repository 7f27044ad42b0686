// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package format

import (
	"strings"
	"testing"
)

func TestConciseListTruncated(t *testing.T) {
	items := []string{
		"largest_river.nc",
		"largest_lake.nc",
		"largest_ocean.nc",
		"largest_sea.nc",
		"largest_pond.nc",
	}
	pad := strings.Repeat(" ", 16)
	expected := `["largest_river.nc",` + "\n" +
		pad + `"largest_lake.nc",` + "\n" +
		pad + `   ...` + "\n" +
		pad + `"largest_pond.nc"] <5 items>`

	str := ConciseList(items, nil)
	if str != expected {
		t.Fatalf("ConciseList() returned:\n%s\ninstead of:\n%s", str, expected)
	}
}

func TestConciseListShort(t *testing.T) {
	opts := ListOptions{
		ItemThreshold: 4,
		Pad:           3,
	}
	expected := "[x1,\n   x2,\n   x3]"

	str := ConciseList([]string{"x1", "x2", "x3"}, &opts)
	if str != expected {
		t.Fatalf("ConciseList() returned:\n%s\ninstead of:\n%s", str, expected)
	}
}

func TestConciseListNoCount(t *testing.T) {
	opts := ListOptions{
		ItemThreshold: 2,
		Pad:           1,
		ShowCount:     false,
	}
	expected := "[a,\n b,\n    ...\n d]"

	str := ConciseList([]string{"a", "b", "c", "d"}, &opts)
	if str != expected {
		t.Fatalf("ConciseList() returned:\n%s\ninstead of:\n%s", str, expected)
	}
}

func TestConciseListEmpty(t *testing.T) {
	str := ConciseList(nil, nil)
	if str != "[]" {
		t.Fatalf("ConciseList() returned %s instead of []", str)
	}
}

func TestTree(t *testing.T) {
	data := map[string]interface{}{
		"branch1": map[string]interface{}{
			"branch1a": []string{"twig1ai", "twig1aii"},
		},
		"branch2": map[string]interface{}{
			"branch2a": []string{"twig2ai", "twig2aii"},
			"branch2b": []string{"twig2bi"},
		},
	}
	expected := `├── branch1
│   └── branch1a
│       ├── twig1ai
│       └── twig1aii
└── branch2
    ├── branch2a
    │   ├── twig2ai
    │   └── twig2aii
    └── branch2b
        └── twig2bi
`

	str := Tree(data)
	if str != expected {
		t.Fatalf("Tree() returned:\n%s\ninstead of:\n%s", str, expected)
	}
}

func TestTreeScalarLeaves(t *testing.T) {
	data := map[string]interface{}{
		"scheduler": "slurm",
		"cores":     128,
	}
	expected := "├── cores: 128\n└── scheduler: slurm\n"

	str := Tree(data)
	if str != expected {
		t.Fatalf("Tree() returned:\n%s\ninstead of:\n%s", str, expected)
	}
}
