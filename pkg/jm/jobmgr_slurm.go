// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package jm

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_hpc_env/pkg/job"
	"github.com/gvallee/go_hpc_env/pkg/mpi"
	"github.com/gvallee/go_hpc_env/pkg/sys"
	"github.com/gvallee/go_hpcjob/pkg/hpcjob"
	"github.com/gvallee/go_slurm/pkg/slurm"
	"github.com/gvallee/go_util/pkg/util"
)

const slurmJobIDPrefix = "Submitted batch job "

// SlurmDetect is the function used by our job management framework to figure out if
// Slurm can be used and if so return a JM structure with all the "function pointers"
// to interact with Slurm through our generic API.
func SlurmDetect() (bool, JM) {
	var jm JM
	var err error

	jm.BinPath, err = exec.LookPath("sbatch")
	if err != nil {
		log.Println("* Slurm not detected")
		return false, jm
	}

	jm.ID = SlurmID
	jm.loadJM = slurmLoad
	jm.submitJM = slurmSubmit
	jm.jobStatusJM = slurmJobStatus
	jm.numJobsJM = slurmNumJobs
	jm.postRunJM = slurmPostJob

	return true, jm
}

// slurmLoad is the function called when trying to load the Slurm job manager
func slurmLoad(jobmgr *JM, sysCfg *sys.Config) error {
	// jobmgr.BinPath has been set during the detection of the job manager
	return nil
}

func slurmJobStatus(jobmgr *JM, jobIDs []int) ([]hpcjob.Status, error) {
	if jobmgr == nil {
		return nil, fmt.Errorf("undefined job manager")
	}
	return slurm.JobStatus(jobIDs)
}

func slurmNumJobs(jobmgr *JM, partitionName string, user string) (int, error) {
	if jobmgr == nil {
		return 0, fmt.Errorf("undefined job manager")
	}
	return slurm.GetNumJobs(partitionName, user)
}

// jobOutFilenamePrefix returns the prefix of the files where the job's output
// and error are redirected
func jobOutFilenamePrefix(j *job.Job) string {
	if j.Name != "" {
		return "job-" + j.Name
	}
	return "job"
}

func jobOutputFilePath(j *job.Job, sysCfg *sys.Config) string {
	return filepath.Join(sysCfg.ScratchDir, jobOutFilenamePrefix(j)+".out")
}

func jobErrorFilePath(j *job.Job, sysCfg *sys.Config) string {
	return filepath.Join(sysCfg.ScratchDir, jobOutFilenamePrefix(j)+".err")
}

// slurmGetOutput reads the content of the file where the batch script
// redirected the job's standard output
func slurmGetOutput(j *job.Job, sysCfg *sys.Config) string {
	output, err := os.ReadFile(jobOutputFilePath(j, sysCfg))
	if err != nil {
		return ""
	}
	return string(output)
}

// slurmGetError reads the content of the file where the batch script
// redirected the job's standard error
func slurmGetError(j *job.Job, sysCfg *sys.Config) string {
	errorTxt, err := os.ReadFile(jobErrorFilePath(j, sysCfg))
	if err != nil {
		return ""
	}
	return string(errorTxt)
}

// slurmPostJob reloads the result of a blocking submission from the files the
// batch script redirected the job's output and error to
func slurmPostJob(cmdRes *advexec.Result, j *job.Job, sysCfg *sys.Config) advexec.Result {
	res := *cmdRes
	output := j.GetOutput(sysCfg)
	if output != "" {
		res.Stdout = output
	}
	errorTxt := j.GetError(sysCfg)
	if errorTxt != "" {
		res.Stderr = errorTxt
	}
	return res
}

// scriptContentFn generates the directives a specific job manager expects at
// the top of a batch script
type scriptContentFn func(*job.Job, *sys.Config) (string, error)

// generateBatchScriptContent returns the shell preamble and the SBATCH
// directives matching the job's request
func generateBatchScriptContent(j *job.Job, sysCfg *sys.Config) (string, error) {
	if j.BatchScript == "" {
		return "", fmt.Errorf("batch script path is undefined")
	}

	scriptText := "#!/bin/bash\n#\n"
	if j.Partition != "" {
		scriptText += slurm.ScriptCmdPrefix + " --partition=" + j.Partition + "\n"
	}
	if j.NNodes > 0 {
		scriptText += slurm.ScriptCmdPrefix + " --nodes=" + strconv.Itoa(j.NNodes) + "\n"
	}
	if j.CoresPerNode > 0 {
		scriptText += slurm.ScriptCmdPrefix + " --ntasks-per-node=" + strconv.Itoa(j.CoresPerNode) + "\n"
	}
	if j.NP > 0 {
		scriptText += slurm.ScriptCmdPrefix + " --ntasks=" + strconv.Itoa(j.NP) + "\n"
	}
	if j.Walltime != "" {
		scriptText += slurm.ScriptCmdPrefix + " --time=" + j.Walltime + "\n"
	}
	scriptText += slurm.ScriptCmdPrefix + " --error=" + jobErrorFilePath(j, sysCfg) + "\n"
	scriptText += slurm.ScriptCmdPrefix + " --output=" + jobOutputFilePath(j, sysCfg) + "\n"

	return scriptText, nil
}

// setupMpiJob adds to the batch script the command to start the job's
// application through mpirun
func setupMpiJob(j *job.Job, sysCfg *sys.Config, content scriptContentFn) error {
	scriptText, err := content(j, sysCfg)
	if err != nil {
		return err
	}

	mpirunPath, err := mpi.GetPathToMpirun(&j.MPICfg.Implem)
	if err != nil {
		return err
	}
	mpirunArgs, err := mpi.GetMpirunArgs(&j.MPICfg.Implem, &j.App)
	if err != nil {
		return fmt.Errorf("unable to get mpirun arguments: %s", err)
	}
	args := append([]string{}, j.MPICfg.UserMpirunArgs...)
	args = append(args, j.Args...)
	args = append(args, mpirunArgs...)
	scriptText += "\n" + mpirunPath + " " + strings.Join(args, " ") + "\n"

	err = os.WriteFile(j.BatchScript, []byte(scriptText), 0644)
	if err != nil {
		return fmt.Errorf("unable to write to file %s: %s", j.BatchScript, err)
	}

	return nil
}

// setupNonMpiJob adds to the batch script the command to start the job's
// application directly
func setupNonMpiJob(j *job.Job, sysCfg *sys.Config, content scriptContentFn) error {
	scriptText, err := content(j, sysCfg)
	if err != nil {
		return err
	}

	cmdLine := j.App.BinPath
	if len(j.App.BinArgs) > 0 {
		cmdLine += " " + strings.Join(j.App.BinArgs, " ")
	}
	scriptText += "\n" + cmdLine + "\n"

	err = os.WriteFile(j.BatchScript, []byte(scriptText), 0644)
	if err != nil {
		return fmt.Errorf("unable to write to file %s: %s", j.BatchScript, err)
	}

	return nil
}

// generateJobScript writes the batch script for a job, creating the script
// file first when the job does not name one yet
func generateJobScript(j *job.Job, sysCfg *sys.Config, content scriptContentFn) error {
	// Sanity checks
	if j == nil {
		return fmt.Errorf("undefined job")
	}
	if sysCfg.ScratchDir == "" {
		return fmt.Errorf("undefined scratch directory")
	}
	if j.App.BinPath == "" {
		return fmt.Errorf("application binary is undefined")
	}

	if j.BatchScript == "" {
		err := TempFile(j, sysCfg)
		if err != nil {
			return fmt.Errorf("unable to create the batch script: %s", err)
		}
	}

	if j.MPICfg == nil || j.MPICfg.Implem.InstallDir == "" {
		return setupNonMpiJob(j, sysCfg, content)
	}
	return setupMpiJob(j, sysCfg, content)
}

// slurmSubmit prepares the batch script necessary to start a given job and
// submits it with sbatch.
//
// Note that a script does not need any specific environment to be submitted
func slurmSubmit(j *job.Job, jobmgr *JM, sysCfg *sys.Config) advexec.Result {
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

	err = generateJobScript(j, sysCfg, generateBatchScriptContent)
	if err != nil {
		resExec.Err = fmt.Errorf("unable to generate the Slurm batch script: %s", err)
		return resExec
	}

	cmd.BinPath = jobmgr.BinPath
	cmd.ExecDir = j.RunDir
	// We want by default a blocking sbatch so the caller directly gets the
	// job's result, but users can request a non-blocking submission
	if !j.NonBlocking {
		cmd.CmdArgs = append(cmd.CmdArgs, "-W")
	}
	cmd.CmdArgs = append(cmd.CmdArgs, jobmgr.CmdArgs...)
	cmd.CmdArgs = append(cmd.CmdArgs, j.BatchScript)

	j.SetOutputFn(slurmGetOutput)
	j.SetErrorFn(slurmGetError)

	cmdRes := cmd.Run()

	firstLine := strings.SplitN(cmdRes.Stdout, "\n", 2)[0]
	if strings.HasPrefix(firstLine, slurmJobIDPrefix) {
		j.ID, err = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(firstLine, slurmJobIDPrefix)))
		if err != nil {
			log.Printf("* unable to parse the Slurm job ID: %s\n", err)
		}
	}

	if !j.NonBlocking && cmdRes.Err == nil {
		return jobmgr.postRunJM(&cmdRes, j, sysCfg)
	}
	return cmdRes
}
