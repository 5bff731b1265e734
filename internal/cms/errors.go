package cms

import (
	"fmt"
	"strings"
)

// Kind is the category of an installation failure
type Kind int

const (
	Unexpected Kind = iota
	ModuleNotFound
	ModuleAlreadyInstalled
	ModuleLoadFailed
	ModuleInstallFailed
	ModuleUninstallFailed
	DependencyMissing
	Timeout
)

var kindLabels = map[Kind]string{
	Unexpected:             "Unexpected",
	ModuleNotFound:         "ModuleNotFound",
	ModuleAlreadyInstalled: "ModuleAlreadyInstalled",
	ModuleLoadFailed:       "ModuleLoadFailed",
	ModuleInstallFailed:    "ModuleInstallFailed",
	ModuleUninstallFailed:  "ModuleUninstallFailed",
	DependencyMissing:      "DependencyMissing",
	Timeout:                "Timeout",
}

// Label returns the stable name used as a report category
func (k Kind) Label() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return kindLabels[Unexpected]
}

func (k Kind) String() string {
	return k.Label()
}

// Kinds returns every kind in declaration order
func Kinds() []Kind {
	return []Kind{
		Unexpected,
		ModuleNotFound,
		ModuleAlreadyInstalled,
		ModuleLoadFailed,
		ModuleInstallFailed,
		ModuleUninstallFailed,
		DependencyMissing,
		Timeout,
	}
}

// ParseKind maps a label to its kind, ignoring case. Unknown labels are
// Unexpected.
func ParseKind(label string) Kind {
	label = strings.TrimSpace(label)
	for k, l := range kindLabels {
		if strings.EqualFold(l, label) {
			return k
		}
	}
	return Unexpected
}

// InstallError represents a failed step of a module installation
type InstallError struct {
	Kind    Kind
	Code    string // module code
	Message string
	Err     error
}

func (e *InstallError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return fmt.Sprintf("module %s: %s", e.Code, e.Kind.Label())
	}
	return fmt.Sprintf("module %s: %s: %s", e.Code, e.Kind.Label(), msg)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}
