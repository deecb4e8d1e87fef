package modeloop

import (
	"fmt"
	"strings"
)

type RunMode int

const (
	Mining RunMode = iota
	Claim
	Exit
	Export
	CheckUpdate
)

// Modes lists every run mode in menu order.
var Modes = []RunMode{Mining, Claim, Exit, Export, CheckUpdate}

var modeNames = map[RunMode]string{
	Mining:      "mining",
	Claim:       "claim",
	Exit:        "exit",
	Export:      "export",
	CheckUpdate: "check-update",
}

var modeDescriptions = map[RunMode]string{
	Mining:      "performs mining by repeatedly executing deposits and withdrawals",
	Claim:       "claims available reward tokens",
	Exit:        "withdraws all balances currently and cancels pending deposits",
	Export:      "export deposit private keys",
	CheckUpdate: "checks whether a newer release is available",
}

func (m RunMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("RunMode(%d)", int(m))
}

func (m RunMode) Description() string {
	return modeDescriptions[m]
}

// Mutates reports whether the mode submits transactions.
func (m RunMode) Mutates() bool {
	return m == Mining || m == Claim || m == Exit
}

// ParseRunMode accepts the names printed by String, case-insensitively.
func ParseRunMode(s string) (RunMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for mode, name := range modeNames {
		if name == normalized || strings.ReplaceAll(name, "-", "") == normalized {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown run mode %q", s)
}
