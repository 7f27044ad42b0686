// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package jm

import (
	"fmt"
	"strconv"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_hpc_env/pkg/job"
	"github.com/gvallee/go_hpc_env/pkg/mpi"
	"github.com/gvallee/go_hpc_env/pkg/sys"
)

// nativeGetOutput retrieves the application's output after the completion of a job
func nativeGetOutput(j *job.Job, sysCfg *sys.Config) string {
	return j.OutBuffer.String()
}

// nativeGetError retrieves the error messages from an application after the completion of a job
func nativeGetError(j *job.Job, sysCfg *sys.Config) string {
	return j.ErrBuffer.String()
}

// nativeLoad is the function called when trying to load the native job manager
func nativeLoad(jobmgr *JM, sysCfg *sys.Config) error {
	return nil
}

// nativeSubmit starts the job's application directly on the host, through
// mpirun when an MPI configuration is attached to the job
func nativeSubmit(j *job.Job, jobmgr *JM, sysCfg *sys.Config) advexec.Result {
	var cmd advexec.Advcmd
	var res advexec.Result

	if j == nil || j.App.BinPath == "" {
		res.Err = fmt.Errorf("application binary is undefined")
		return res
	}

	if j.MPICfg != nil && j.MPICfg.Implem.InstallDir != "" {
		var err error
		cmd.BinPath, err = mpi.GetPathToMpirun(&j.MPICfg.Implem)
		if err != nil {
			res.Err = err
			return res
		}
		if j.NP > 0 {
			cmd.CmdArgs = append(cmd.CmdArgs, "-np")
			cmd.CmdArgs = append(cmd.CmdArgs, strconv.Itoa(j.NP))
		}
		cmd.CmdArgs = append(cmd.CmdArgs, j.MPICfg.UserMpirunArgs...)
		cmd.CmdArgs = append(cmd.CmdArgs, j.Args...)
		mpirunArgs, err := mpi.GetMpirunArgs(&j.MPICfg.Implem, &j.App)
		if err != nil {
			res.Err = fmt.Errorf("unable to get mpirun arguments: %s", err)
			return res
		}
		cmd.CmdArgs = append(cmd.CmdArgs, mpirunArgs...)
	} else {
		cmd.BinPath = j.App.BinPath
		cmd.CmdArgs = append(cmd.CmdArgs, j.App.BinArgs...)
	}

	cmd.ExecDir = j.RunDir
	cmd.Env = j.App.Env

	j.SetOutputFn(nativeGetOutput)
	j.SetErrorFn(nativeGetError)

	res = cmd.Run()
	j.OutBuffer.WriteString(res.Stdout)
	j.ErrBuffer.WriteString(res.Stderr)
	return res
}

// NativeDetect is the function used by our job management framework to figure out if
// the application can be started directly on the host. The native component is the
// default job manager so the function always succeeds; if the application or mpirun
// is not correctly installed, the framework will pick it up at submission time.
func NativeDetect() (bool, JM) {
	var jm JM
	jm.ID = NativeID
	jm.loadJM = nativeLoad
	jm.submitJM = nativeSubmit

	return true, jm
}
