//go:build !unix

package wxicons

import "os/exec"

func killProcessGroup(cmd *exec.Cmd) {}
