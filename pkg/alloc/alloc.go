// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package alloc computes how the resource request of a batch job is spread
// over the nodes of a HPC system.
package alloc

import "fmt"

// Plan describes the resources to request from a job scheduler for a job.
type Plan struct {
	// NNodes is the number of nodes to request
	NNodes int

	// CoresPerNode is the number of cores to request on each node
	CoresPerNode int
}

// NodeDistribution determines how many nodes and how many cores per node to
// request from a job scheduler, balancing the cores as evenly as possible
// across the nodes. For example, a job requiring 192 cores on a system with
// 128 cores per node results in a request for 2 nodes with 96 cores each.
//
// The plan always covers the requirement, i.e., NNodes * CoresPerNode is
// greater than or equal to coresRequired, and CoresPerNode never exceeds
// totCoresPerNode.
func NodeDistribution(coresRequired int, totCoresPerNode int) (Plan, error) {
	var p Plan

	if coresRequired < 1 {
		return p, fmt.Errorf("invalid number of required cores (%d)", coresRequired)
	}
	if totCoresPerNode < 1 {
		return p, fmt.Errorf("invalid number of cores per node (%d)", totCoresPerNode)
	}

	p.NNodes = (coresRequired + totCoresPerNode - 1) / totCoresPerNode
	// Spread the spare capacity of the request over all the nodes, rounding
	// the per-node count up so the plan still covers coresRequired.
	spare := p.NNodes*totCoresPerNode - coresRequired
	p.CoresPerNode = totCoresPerNode - spare/p.NNodes

	return p, nil
}
