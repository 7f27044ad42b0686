// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package launcher ties the toolkit together: it resolves the runtime
// environment of the host and starts jobs through the job manager the
// system's configuration calls for.
package launcher

import (
	"fmt"
	"log"
	"os"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_exec/pkg/results"
	"github.com/gvallee/go_hpc_env/pkg/env"
	"github.com/gvallee/go_hpc_env/pkg/jm"
	"github.com/gvallee/go_hpc_env/pkg/job"
	"github.com/gvallee/go_hpc_env/pkg/mpi"
	"github.com/gvallee/go_hpc_env/pkg/platform"
	"github.com/gvallee/go_hpc_env/pkg/sys"
)

// Load gathers all the details to start running jobs on the current system:
// the system configuration, the resolved runtime environment and the job
// manager matching the system's scheduler.
func Load() (sys.Config, *env.Environment, jm.JM, error) {
	var jobmgr jm.JM

	cfg, err := sys.DefaultConfig()
	if err != nil {
		return cfg, nil, jobmgr, fmt.Errorf("unable to load the system configuration: %s", err)
	}

	e, err := env.Load(&cfg)
	if err != nil {
		return cfg, nil, jobmgr, fmt.Errorf("unable to resolve the runtime environment: %s", err)
	}

	jobmgr = jm.Detect(e.Platform)
	err = jobmgr.Load(&cfg)
	if err != nil {
		return cfg, e, jobmgr, fmt.Errorf("unable to load the %s job manager: %s", jobmgr.ID, err)
	}

	return cfg, e, jobmgr, nil
}

// Run executes a job on the host through the job manager passed in. This is
// a blocking function, it returns when the job has completed, unless the job
// requests a non-blocking submission.
func Run(j *job.Job, hostMPI *mpi.Config, jobmgr *jm.JM, sysCfg *sys.Config, e *env.Environment, args []string) (results.Result, advexec.Result) {
	var execRes advexec.Result
	var expRes results.Result
	expRes.Pass = true
	errorMsg := ""

	if hostMPI != nil {
		j.MPICfg = new(mpi.Config)
		j.MPICfg.Implem = hostMPI.Implem
		j.MPICfg.UserMpirunArgs = hostMPI.UserMpirunArgs
	}

	if len(args) > 0 {
		j.Args = append(j.Args, args...)
	}

	// The application must see the resolved environment of the system. The
	// command environment is a full replacement so the host environment is
	// carried over too, with the resolved variables taking precedence.
	if e != nil && len(e.Vars) > 0 {
		j.App.Env = append(os.Environ(), j.App.Env...)
		for _, name := range e.VarNames() {
			j.App.Env = append(j.App.Env, name+"="+e.Vars[name])
		}
	}

	// Complete the job with the system's defaults before submission
	if e != nil && e.Platform != nil && e.Platform.Scheduler != platform.NoScheduler {
		err := e.Platform.ValidateWalltime(j.Walltime)
		if err != nil {
			expRes.Pass = false
			expRes.Note = err.Error()
			execRes.Err = err
			return expRes, execRes
		}
		if e.Platform.CoresPerNode > 0 {
			err = j.Allocate(e.Platform.CoresPerNode)
			if err != nil {
				expRes.Pass = false
				expRes.Note = err.Error()
				execRes.Err = err
				return expRes, execRes
			}
		}
	}

	// We submit the job
	execRes = jobmgr.Submit(j, sysCfg)
	if execRes.Err != nil {
		// The command simply failed and the Go runtime caught it
		expRes.Pass = false
		errorMsg = fmt.Sprintf("[ERROR] Command failed - stdout: %s - stderr: %s - err: %s\n", execRes.Stdout, execRes.Stderr, execRes.Err)
		log.Printf("%s", errorMsg)
	}

	if !expRes.Pass {
		expRes.Note = errorMsg
	}

	return expRes, execRes
}
