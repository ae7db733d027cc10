package arch

import (
	"strings"
)

// Architecture represents a Debian architecture tag
type Architecture string

const (
	ArchAmd64    Architecture = "amd64"   // x86_64
	ArchI386     Architecture = "i386"    // x86 32-bit
	ArchArm64    Architecture = "arm64"   // ARM 64-bit
	ArchArmhf    Architecture = "armhf"   // ARM hard float
	ArchArmel    Architecture = "armel"   // ARM soft float
	ArchPpc64el  Architecture = "ppc64el" // PowerPC 64-bit little endian
	ArchS390x    Architecture = "s390x"   // IBM S/390
	ArchMips64el Architecture = "mips64el"
	ArchRiscv64  Architecture = "riscv64"
	ArchAll      Architecture = "all" // Architecture-independent
)

// AllArchitectures contains every Debian architecture accepted as an explicit override
var AllArchitectures = []Architecture{
	ArchAmd64,
	ArchI386,
	ArchArm64,
	ArchArmhf,
	ArchArmel,
	ArchPpc64el,
	ArchS390x,
	ArchMips64el,
	ArchRiscv64,
	ArchAll,
}

// FromMachine maps a raw processor identifier (uname -m) to a package architecture.
//
// Only three tags are ever produced: amd64, armhf and i386. Anything that is not
// x86_64/amd64 or arm-prefixed falls back to i386, so aarch64 hosts are labelled
// i386. That fallback is long-standing behaviour and kept as is.
func FromMachine(machine string) Architecture {
	switch {
	case machine == "x86_64" || machine == "amd64":
		return ArchAmd64
	case strings.HasPrefix(machine, "arm"):
		return ArchArmhf
	default:
		return ArchI386
	}
}

// Detect returns the package architecture of the running host
func Detect() (Architecture, error) {
	machine, err := Machine()
	if err != nil {
		return "", err
	}
	return FromMachine(machine), nil
}

// String returns the string representation of the architecture
func (a Architecture) String() string {
	return string(a)
}

// IsValid checks if the architecture is a known Debian architecture
func (a Architecture) IsValid() bool {
	for _, valid := range AllArchitectures {
		if a == valid {
			return true
		}
	}
	return false
}
