// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package jm

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_hpc_env/pkg/job"
	"github.com/gvallee/go_hpc_env/pkg/platform"
	"github.com/gvallee/go_hpc_env/pkg/sys"
	"github.com/gvallee/go_hpcjob/pkg/hpcjob"
	"github.com/gvallee/go_util/pkg/util"
)

const (
	// NativeID is the value set to JM.ID when the application shall be started directly on the host
	NativeID = "native"

	// SlurmID is the value set to JM.ID when Slurm shall be used to submit a job
	SlurmID = "slurm"

	// PbsID is the value set to JM.ID when PBS shall be used to submit a job
	PbsID = "pbs"
)

// LoadFn loads a specific job manager once detected
type LoadFn func(*JM, *sys.Config) error

// SubmitFn is a "function pointer" to submit a job through a specific job manager
type SubmitFn func(*job.Job, *JM, *sys.Config) advexec.Result

// JobStatusFn is a "function pointer" to query the status of a set of jobs
type JobStatusFn func(*JM, []int) ([]hpcjob.Status, error)

// NumJobsFn is a "function pointer" to query how many jobs a user has on a target partition
type NumJobsFn func(*JM, string, string) (int, error)

// PostRunFn is a "function pointer" called after a blocking submission completes
type PostRunFn func(*advexec.Result, *job.Job, *sys.Config) advexec.Result

// JM is the structure representing a specific job manager
type JM struct {
	// ID identifies which job manager has been detected on the system
	ID string

	// BinPath is the path to the command used to submit jobs
	BinPath string

	// CmdArgs is a set of arguments the job manager always passes to the submission command
	CmdArgs []string

	// Platform is the configuration of the system jobs are submitted to (optional)
	Platform *platform.Info

	loadJM      LoadFn
	submitJM    SubmitFn
	jobStatusJM JobStatusFn
	numJobsJM   NumJobsFn
	postRunJM   PostRunFn
}

// Detect figures out which job manager must be used on the system and
// returns a structure that gathers all the data necessary to interact with
// it. When a system configuration is passed in and names a scheduler, only
// that scheduler is probed; otherwise every supported job manager is probed
// and the native job manager is the fallback.
func Detect(info *platform.Info) JM {
	// Default job manager
	loaded, native := NativeDetect()
	if !loaded {
		log.Fatalln("unable to find a default job manager")
	}
	native.Platform = info

	if info != nil && info.Scheduler == platform.NoScheduler {
		return native
	}

	wanted := ""
	if info != nil {
		wanted = info.Scheduler
	}

	if wanted == "" || wanted == platform.SlurmScheduler {
		loaded, slurmComp := SlurmDetect()
		if loaded {
			slurmComp.Platform = info
			return slurmComp
		}
	}

	if wanted == "" || wanted == platform.PbsScheduler {
		loaded, pbsComp := PbsDetect()
		if loaded {
			pbsComp.Platform = info
			return pbsComp
		}
	}

	if wanted != "" {
		log.Printf("* %s is configured for this system but cannot be used, falling back to the native job manager\n", wanted)
	}
	return native
}

// Load is the function to use to finish the setup of a detected job manager
func (jm *JM) Load(sysCfg *sys.Config) error {
	if jm.loadJM == nil {
		return nil
	}
	return jm.loadJM(jm, sysCfg)
}

// Submit submits a job through the job manager. Unless the job requests a
// non-blocking submission, the call returns once the job has completed.
func (jm *JM) Submit(j *job.Job, sysCfg *sys.Config) advexec.Result {
	var res advexec.Result
	if jm.submitJM == nil {
		res.Err = fmt.Errorf("undefined submit function")
		return res
	}
	return jm.submitJM(j, jm, sysCfg)
}

// JobStatus returns the status of the jobs associated to the identifiers passed in
func (jm *JM) JobStatus(jobIDs []int) ([]hpcjob.Status, error) {
	if jm.jobStatusJM == nil {
		return nil, fmt.Errorf("job status queries are not supported by the %s job manager", jm.ID)
	}
	return jm.jobStatusJM(jm, jobIDs)
}

// NumJobs returns the number of jobs a user currently has on a target partition
func (jm *JM) NumJobs(partition string, user string) (int, error) {
	if jm.numJobsJM == nil {
		return 0, fmt.Errorf("job count queries are not supported by the %s job manager", jm.ID)
	}
	return jm.numJobsJM(jm, partition, user)
}

// applyPlatformDefaults completes a job with the defaults of the system the
// job manager submits to: target partition, walltime limit and node request.
func applyPlatformDefaults(j *job.Job, jobmgr *JM) error {
	if jobmgr.Platform == nil {
		return nil
	}

	if j.Partition == "" {
		j.Partition = jobmgr.Platform.DefaultPartition
	}

	err := jobmgr.Platform.ValidateWalltime(j.Walltime)
	if err != nil {
		return err
	}

	if jobmgr.Platform.CoresPerNode > 0 {
		err = j.Allocate(jobmgr.Platform.CoresPerNode)
		if err != nil {
			return fmt.Errorf("unable to compute the node request: %s", err)
		}
	}

	return nil
}

// TempFile creates the file that is used to store the batch script of a job
func TempFile(j *job.Job, sysCfg *sys.Config) error {
	filePrefix := "sbash-job"
	if j.Name != "" {
		filePrefix = "sbash-" + j.Name
	}

	path := ""
	if sysCfg.ScratchDir == "" {
		f, err := os.CreateTemp("", filePrefix+"-")
		if err != nil {
			return fmt.Errorf("failed to create temporary file: %s", err)
		}
		path = f.Name()
		f.Close()
	} else {
		path = filepath.Join(sysCfg.ScratchDir, filePrefix+".sh")
		if util.PathExists(path) {
			return fmt.Errorf("file %s already exists", path)
		}
	}
	j.BatchScript = path

	j.CleanUp = func(...interface{}) error {
		err := os.RemoveAll(path)
		if err != nil {
			return fmt.Errorf("unable to delete %s: %s", path, err)
		}
		return nil
	}

	return nil
}
