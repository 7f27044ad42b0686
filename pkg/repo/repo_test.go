// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package repo

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// createTestRepo creates a local repository with a single commit on a main
// branch so the tests do not need network access.
func createTestRepo(t *testing.T) (string, string) {
	origin := filepath.Join(t.TempDir(), "origin")
	_, err := runGit("", "init", "-b", "main", origin)
	if err != nil {
		t.Skipf("unable to initialize a git repository: %s", err)
	}

	err = os.WriteFile(filepath.Join(origin, "README.md"), []byte("test repository\n"), 0644)
	if err != nil {
		t.Fatalf("unable to create a file in the test repository: %s", err)
	}
	_, err = runGit(origin, "add", "README.md")
	if err != nil {
		t.Fatalf("unable to add a file to the test repository: %s", err)
	}
	_, err = runGit(origin, "-c", "user.name=tester", "-c", "user.email=tester@localhost", "commit", "-m", "initial commit")
	if err != nil {
		t.Fatalf("unable to commit to the test repository: %s", err)
	}

	head, err := HeadHash(origin)
	if err != nil {
		t.Fatalf("HeadHash() failed on the test repository: %s", err)
	}
	return origin, head
}

func TestIsCommitHash(t *testing.T) {
	tests := []struct {
		target   string
		expected bool
	}{
		{target: "25ab24f", expected: true},
		{target: "25ab24fd04af6e70f3f245d7a56e851678f16a2c", expected: true},
		{target: "main", expected: false},
		{target: "v1.0.2", expected: false},
		{target: "25ab24g", expected: false},
		{target: "25ab24", expected: false},
		{target: "25AB24F", expected: false},
		{target: "", expected: false},
	}

	for _, tt := range tests {
		if IsCommitHash(tt.target) != tt.expected {
			t.Fatalf("IsCommitHash(%s) returned %v instead of %v", tt.target, !tt.expected, tt.expected)
		}
	}
}

func TestCloneAndCheckout(t *testing.T) {
	_, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git is not available on this host")
	}

	origin, head := createTestRepo(t)
	dest := filepath.Join(t.TempDir(), "clone")

	err = CloneAndCheckout(origin, dest, "main")
	if err != nil {
		t.Fatalf("CloneAndCheckout() failed: %s", err)
	}

	cloneHead, err := HeadHash(dest)
	if err != nil {
		t.Fatalf("HeadHash() failed on the clone: %s", err)
	}
	if cloneHead != head {
		t.Fatalf("the clone is at %s instead of %s", cloneHead, head)
	}

	remote, err := Remote(dest)
	if err != nil {
		t.Fatalf("Remote() failed on the clone: %s", err)
	}
	if remote != origin {
		t.Fatalf("the remote of the clone is %s instead of %s", remote, origin)
	}

	// Checking out the hash directly must work too (detached HEAD)
	err = Checkout(dest, head)
	if err != nil {
		t.Fatalf("Checkout() failed on a commit hash: %s", err)
	}

	err = Clone(origin, dest)
	if err == nil {
		t.Fatalf("Clone() did not fail on an existing destination")
	}
}

func TestResolveRef(t *testing.T) {
	_, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git is not available on this host")
	}

	origin, head := createTestRepo(t)

	hash, err := ResolveRef(origin, "main")
	if err != nil {
		t.Fatalf("ResolveRef() failed on a branch: %s", err)
	}
	if hash != head {
		t.Fatalf("ResolveRef() resolved main to %s instead of %s", hash, head)
	}

	// An abbreviated hash does not show up in the remote listing but is
	// accepted as a checkout target
	hash, err = ResolveRef(origin, head[:7])
	if err != nil {
		t.Fatalf("ResolveRef() failed on an abbreviated hash: %s", err)
	}
	if hash != head[:7] {
		t.Fatalf("ResolveRef() resolved %s to %s", head[:7], hash)
	}

	_, err = ResolveRef(origin, "no-such-branch")
	if !errors.Is(err, ErrInvalidCheckoutTarget) {
		t.Fatalf("ResolveRef() returned %v instead of an invalid checkout target error", err)
	}
}
