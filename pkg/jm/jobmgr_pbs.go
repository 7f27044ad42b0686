// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package jm

import (
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_hpc_env/pkg/job"
	"github.com/gvallee/go_hpc_env/pkg/sys"
	"github.com/gvallee/go_util/pkg/util"
)

// pbsScriptCmdPrefix is the prefix of every PBS directive in a batch script
const pbsScriptCmdPrefix = "#PBS"

// PbsDetect is the function used by our job management framework to figure out if
// PBS can be used and if so return a JM structure with all the "function pointers"
// to interact with PBS through our generic API.
func PbsDetect() (bool, JM) {
	var jm JM
	var err error

	jm.BinPath, err = exec.LookPath("qsub")
	if err != nil {
		log.Println("* PBS not detected")
		return false, jm
	}

	jm.ID = PbsID
	jm.loadJM = pbsLoad
	jm.submitJM = pbsSubmit
	jm.postRunJM = pbsPostJob

	return true, jm
}

// pbsLoad is the function called when trying to load the PBS job manager
func pbsLoad(jobmgr *JM, sysCfg *sys.Config) error {
	// jobmgr.BinPath has been set during the detection of the job manager
	return nil
}

// pbsGetOutput reads the content of the file where the batch script
// redirected the job's standard output
func pbsGetOutput(j *job.Job, sysCfg *sys.Config) string {
	return slurmGetOutput(j, sysCfg)
}

// pbsGetError reads the content of the file where the batch script
// redirected the job's standard error
func pbsGetError(j *job.Job, sysCfg *sys.Config) string {
	return slurmGetError(j, sysCfg)
}

// pbsPostJob reloads the result of a blocking submission from the files the
// batch script redirected the job's output and error to
func pbsPostJob(cmdRes *advexec.Result, j *job.Job, sysCfg *sys.Config) advexec.Result {
	return slurmPostJob(cmdRes, j, sysCfg)
}

// generatePbsScriptContent returns the shell preamble and the PBS directives
// matching the job's request. PBS has no per-node task count directive so the
// node request is a single select statement.
func generatePbsScriptContent(j *job.Job, sysCfg *sys.Config) (string, error) {
	if j.BatchScript == "" {
		return "", fmt.Errorf("batch script path is undefined")
	}

	scriptText := "#!/bin/bash\n#\n"
	if j.Name != "" {
		scriptText += pbsScriptCmdPrefix + " -N " + j.Name + "\n"
	}
	if j.Partition != "" {
		scriptText += pbsScriptCmdPrefix + " -q " + j.Partition + "\n"
	}
	if j.NNodes > 0 {
		selectStmt := "select=" + strconv.Itoa(j.NNodes)
		if j.CoresPerNode > 0 {
			selectStmt += ":ncpus=" + strconv.Itoa(j.CoresPerNode) + ":mpiprocs=" + strconv.Itoa(j.CoresPerNode)
		}
		scriptText += pbsScriptCmdPrefix + " -l " + selectStmt + "\n"
	}
	if j.Walltime != "" {
		scriptText += pbsScriptCmdPrefix + " -l walltime=" + j.Walltime + "\n"
	}
	scriptText += pbsScriptCmdPrefix + " -e " + jobErrorFilePath(j, sysCfg) + "\n"
	scriptText += pbsScriptCmdPrefix + " -o " + jobOutputFilePath(j, sysCfg) + "\n"

	return scriptText, nil
}

// pbsSubmit prepares the batch script necessary to start a given job and
// submits it with qsub.
func pbsSubmit(j *job.Job, jobmgr *JM, sysCfg *sys.Config) advexec.Result {
	var cmd advexec.Advcmd
	var resExec advexec.Result

	// Sanity checks
	if j == nil || !util.FileExists(jobmgr.BinPath) {
		resExec.Err = fmt.Errorf("job or job manager is not properly defined")
		return resExec
	}
	if !util.PathExists(sysCfg.ScratchDir) {
		resExec.Err = fmt.Errorf("scratch directory %s does not exist", sysCfg.ScratchDir)
		return resExec
	}

	err := applyPlatformDefaults(j, jobmgr)
	if err != nil {
		resExec.Err = err
		return resExec
	}

	err = generateJobScript(j, sysCfg, generatePbsScriptContent)
	if err != nil {
		resExec.Err = fmt.Errorf("unable to generate the PBS batch script: %s", err)
		return resExec
	}

	cmd.BinPath = jobmgr.BinPath
	cmd.ExecDir = j.RunDir
	// qsub returns as soon as the job is queued; ask PBS to block until the
	// job terminates unless a non-blocking submission is requested
	if !j.NonBlocking {
		cmd.CmdArgs = append(cmd.CmdArgs, "-W", "block=true")
	}
	cmd.CmdArgs = append(cmd.CmdArgs, jobmgr.CmdArgs...)
	cmd.CmdArgs = append(cmd.CmdArgs, j.BatchScript)

	j.SetOutputFn(pbsGetOutput)
	j.SetErrorFn(pbsGetError)

	cmdRes := cmd.Run()

	// qsub prints the job identifier on the first line, e.g. "1473687.desched1"
	firstLine := strings.TrimSpace(strings.SplitN(cmdRes.Stdout, "\n", 2)[0])
	if firstLine != "" {
		j.ID, err = strconv.Atoi(strings.SplitN(firstLine, ".", 2)[0])
		if err != nil {
			log.Printf("* unable to parse the PBS job ID: %s\n", err)
		}
	}

	if !j.NonBlocking && cmdRes.Err == nil {
		return jobmgr.postRunJM(&cmdRes, j, sysCfg)
	}
	return cmdRes
}
