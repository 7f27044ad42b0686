// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package mvapich2

import "testing"

func TestParseVersionOutput(t *testing.T) {
	output := `MVAPICH2 Version:       2.3.7
	MVAPICH2 Release date:  Wed March 02 22:00:00 EST 2022
	MVAPICH2 Device:        ch3:mrail
	MVAPICH2 configure:     --prefix=/global/scratch/users/benjaminm/mv2-2.3.7/install CC=gcc CXX=g++ --disable-fortran --enable-fast=all --enable-g=none --with-device=ch3:mrail CFLAGS=-lpthread LDFLAGS=-lpthread
	MVAPICH2 CC:    gcc -lpthread   -DNDEBUG -DNVALGRIND -O2
	MVAPICH2 CXX:   g++   -DNDEBUG -DNVALGRIND -O2
	MVAPICH2 F77:   gfortran
	MVAPICH2 FC:    gfortran`
	expectedResult := "2.3.7"

	version, err := parseVersionOutput(output)
	if err != nil {
		t.Fatalf("parseVersionOutput() failed: %s", err)
	}
	if version != expectedResult {
		t.Fatalf("parseVersionOutput() returned %s instead of %s", version, expectedResult)
	}

	_, err = parseVersionOutput("HYDRA build details:\n")
	if err == nil {
		t.Fatalf("parseVersionOutput() did not fail on an MPICH output")
	}
}
