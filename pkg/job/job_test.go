// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package job

import "testing"

func TestAllocate(t *testing.T) {
	var j Job
	j.CoresRequired = 192
	err := j.Allocate(128)
	if err != nil {
		t.Fatalf("Allocate() failed: %s", err)
	}
	if j.NNodes != 2 || j.CoresPerNode != 96 {
		t.Fatalf("Allocate() requested %d node(s) with %d core(s) instead of 2 nodes with 96 cores", j.NNodes, j.CoresPerNode)
	}
}

func TestAllocateFromRanks(t *testing.T) {
	var j Job
	j.NP = 256
	err := j.Allocate(128)
	if err != nil {
		t.Fatalf("Allocate() failed: %s", err)
	}
	if j.NNodes != 2 || j.CoresPerNode != 128 {
		t.Fatalf("Allocate() requested %d node(s) with %d core(s) instead of 2 nodes with 128 cores", j.NNodes, j.CoresPerNode)
	}
}

func TestAllocateExplicitRequest(t *testing.T) {
	var j Job
	j.CoresRequired = 192
	j.NNodes = 4
	err := j.Allocate(128)
	if err != nil {
		t.Fatalf("Allocate() failed: %s", err)
	}
	if j.NNodes != 4 || j.CoresPerNode != 0 {
		t.Fatalf("Allocate() modified an explicit node request (%d node(s), %d core(s))", j.NNodes, j.CoresPerNode)
	}
}

func TestAllocateEmptyJob(t *testing.T) {
	var j Job
	err := j.Allocate(128)
	if err != nil {
		t.Fatalf("Allocate() failed: %s", err)
	}
	if j.NNodes != 0 || j.CoresPerNode != 0 {
		t.Fatalf("Allocate() created a node request for a job that did not ask for cores")
	}
}

func TestAllocateUnknownNodeSize(t *testing.T) {
	var j Job
	j.CoresRequired = 192
	err := j.Allocate(0)
	if err == nil {
		t.Fatalf("Allocate() did not fail for a system with an unknown node size")
	}
}
