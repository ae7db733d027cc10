//go:build !linux

package arch

import "runtime"

// goarchMachine translates GOARCH values to their uname -m spelling
var goarchMachine = map[string]string{
	"amd64":   "x86_64",
	"386":     "i686",
	"arm":     "armv7l",
	"arm64":   "aarch64",
	"ppc64le": "ppc64le",
	"s390x":   "s390x",
	"riscv64": "riscv64",
}

// Machine returns the processor identifier of the running binary's platform
func Machine() (string, error) {
	if m, ok := goarchMachine[runtime.GOARCH]; ok {
		return m, nil
	}
	return runtime.GOARCH, nil
}
