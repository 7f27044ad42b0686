// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gvallee/go_hpc_env/pkg/jm"
	"github.com/gvallee/go_hpc_env/pkg/job"
	"github.com/gvallee/go_hpc_env/pkg/launcher"
	"github.com/gvallee/go_hpc_env/pkg/mpi"
)

func main() {
	binFlag := flag.String("bin", "", "Path to the application to submit to the system's job manager")
	npFlag := flag.Int("np", 0, "Number of MPI ranks to start the application with")
	coresFlag := flag.Int("cores", 0, "Total number of cores to request for the job")
	partitionFlag := flag.String("partition", "", "Partition to submit the job to (defaults to the system's partition)")
	walltimeFlag := flag.String("walltime", "", "Walltime limit of the job in HH:MM:SS format")
	nameFlag := flag.String("name", "", "Name of the job")
	nonBlockingFlag := flag.Bool("non-blocking", false, "Return as soon as the job is submitted instead of waiting for its completion")
	statusFlag := flag.String("job-status", "", "Display the status of various jobs; comma-separated list of job IDs")
	runningJobsFlag := flag.String("running-jobs", "", "Display how many jobs are already running on the target (e.g., a Slurm partition)")
	help := flag.Bool("h", false, "Help message")

	flag.Parse()

	cmdName := filepath.Base(os.Args[0])
	if *help {
		fmt.Printf("%s is a command line tool to submit jobs through the job manager of the system", cmdName)
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// Status queries only need the job manager of the host, not the resolved
	// environment, so they also work on systems the detection does not know.
	if *statusFlag != "" || *runningJobsFlag != "" {
		jobmgr := jm.Detect(nil)

		if *statusFlag != "" {
			jobIDsStr := strings.Split(*statusFlag, ",")
			var jobIDs []int
			for _, w := range jobIDsStr {
				jobID, err := strconv.Atoi(w)
				if err != nil {
					fmt.Printf("ERROR: invalid job ID: %s\n", w)
					os.Exit(1)
				}
				jobIDs = append(jobIDs, jobID)
			}

			statuses, err := jobmgr.JobStatus(jobIDs)
			if err != nil {
				fmt.Printf("ERROR: unable to retrieve job(s) status: %s\n", err)
				os.Exit(1)
			}
			for idx := range jobIDs {
				fmt.Printf("%d: %s\n", jobIDs[idx], statuses[idx].Str)
			}
		}

		if *runningJobsFlag != "" {
			u, err := user.Current()
			if err != nil {
				fmt.Printf("ERROR: unable to retrieve the user ID: %s\n", err)
				os.Exit(1)
			}
			num, err := jobmgr.NumJobs(*runningJobsFlag, u.Username)
			if err != nil {
				fmt.Printf("ERROR: unable to retrieve the number of running jobs: %s\n", err)
				os.Exit(1)
			}
			fmt.Printf("Number of running jobs: %d\n", num)
		}
		return
	}

	if *binFlag == "" {
		return
	}

	sysCfg, e, jobmgr, err := launcher.Load()
	if err != nil {
		fmt.Printf("ERROR: unable to load the launcher: %s\n", err)
		os.Exit(1)
	}

	// The job inherits the MPI implementation the environment provides; jobs
	// can still run without MPI, e.g., pre- and post-processing steps.
	var hostMPI *mpi.Config
	mpiInfo, err := e.Validate()
	if err != nil {
		log.Printf("* running without MPI: %s\n", err)
	} else {
		hostMPI = new(mpi.Config)
		hostMPI.Implem = *mpiInfo
	}

	var j job.Job
	j.Name = *nameFlag
	j.App.Name = filepath.Base(*binFlag)
	j.App.BinPath = *binFlag
	j.NP = *npFlag
	j.CoresRequired = *coresFlag
	j.Partition = *partitionFlag
	j.Walltime = *walltimeFlag
	j.NonBlocking = *nonBlockingFlag

	expRes, execRes := launcher.Run(&j, hostMPI, &jobmgr, &sysCfg, e, flag.Args())
	if !expRes.Pass {
		fmt.Printf("ERROR: job failed: %s\n", expRes.Note)
		os.Exit(1)
	}
	if j.NonBlocking {
		fmt.Printf("Job %d submitted\n", j.ID)
		return
	}
	fmt.Printf("%s", execRes.Stdout)
	if execRes.Stderr != "" {
		fmt.Fprintf(os.Stderr, "%s", execRes.Stderr)
	}
}
