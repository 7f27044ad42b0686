// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package job

import (
	"bytes"

	"github.com/gvallee/go_hpc_env/pkg/alloc"
	"github.com/gvallee/go_hpc_env/pkg/app"
	"github.com/gvallee/go_hpc_env/pkg/mpi"
	"github.com/gvallee/go_hpc_env/pkg/sys"
)

// CleanUpFn is a "function pointer" to call to clean up the system after the completion of a job
type CleanUpFn func(...interface{}) error

// GetOutputFn is a "function pointer" to call to gather the output of an application after completion of a job
type GetOutputFn func(*Job, *sys.Config) string

// GetErrorFn is a "function pointer" to call to gather stderr from an application after completion of a job
type GetErrorFn func(*Job, *sys.Config) string

// Job represents a job
type Job struct {
	// Name is the name of the job
	Name string

	// ID is the job identifier assigned by the job manager upon submission
	ID int

	// NP is the number of ranks
	NP int

	// CoresRequired is the total number of cores the job needs; when it is
	// set and no explicit node request exists, the node request is computed
	// from it (see Allocate)
	CoresRequired int

	// NNodes is the number of nodes to request
	NNodes int

	// CoresPerNode is the number of cores to request on each node
	CoresPerNode int

	// Partition is the name of the partition to use with the job manager (optional)
	Partition string

	// Walltime is the maximum execution time to request in HH:MM:SS format (optional)
	Walltime string

	// NonBlocking requests the submission to return without waiting for the job to terminate
	NonBlocking bool

	// RunDir is the directory from which the job must be submitted (optional)
	RunDir string

	// CleanUp is the function to call once the job is completed to clean the system
	CleanUp CleanUpFn

	// BatchScript is the path to the script required to start a job (optional)
	BatchScript string

	// App is the application to start
	App app.Info

	// OutBuffer is a buffer with the output of the job
	OutBuffer bytes.Buffer

	// ErrBuffer is a buffer with the stderr of the job
	ErrBuffer bytes.Buffer

	// internalGetOutput is the function to call to gather the output of the application based on the use of a given job manager
	internalGetOutput GetOutputFn

	// internalGetError is the function to call to gather stderr of the application based on the use of a given job manager
	internalGetError GetErrorFn

	// Args is a set of arguments to be used for launching the job
	Args []string

	// MPICfg is the MPI configuration to use for the execution of the job
	MPICfg *mpi.Config
}

// Allocate fills in the node request of the job from the total number of
// cores it requires and the number of cores available on each node of the
// system. Jobs with an explicit node request are left untouched, and a job
// that requests nothing stays empty so the job manager applies its own
// defaults.
func (j *Job) Allocate(totCoresPerNode int) error {
	if j.NNodes > 0 || j.CoresPerNode > 0 {
		return nil
	}

	coresRequired := j.CoresRequired
	if coresRequired == 0 {
		coresRequired = j.NP
	}
	if coresRequired == 0 {
		return nil
	}

	plan, err := alloc.NodeDistribution(coresRequired, totCoresPerNode)
	if err != nil {
		return err
	}
	j.NNodes = plan.NNodes
	j.CoresPerNode = plan.CoresPerNode
	return nil
}

// GetOutput is the function to call to gather the output (stdout) of the application after execution of the job
func (j *Job) GetOutput(sysCfg *sys.Config) string {
	return j.internalGetOutput(j, sysCfg)
}

// GetError is the function to call to gather stderr of the application after execution of the job
func (j *Job) GetError(sysCfg *sys.Config) string {
	return j.internalGetError(j, sysCfg)
}

// SetOutputFn sets the internal function specific to the job manager to get the output of a job
func (j *Job) SetOutputFn(fn GetOutputFn) {
	j.internalGetOutput = fn
}

// SetErrorFn sets the internal function specific to the job manager to get stderr of a job
func (j *Job) SetErrorFn(fn GetErrorFn) {
	j.internalGetError = fn
}
