package cms

import "context"

// Facade is the part of the CMS runtime used by the agent commands
type Facade interface {
	CheckAgents(ctx context.Context) error
	CheckEvents(ctx context.Context) error
	SetOption(ctx context.Context, module, name, value string) error
}

// ModuleInstaller performs the install cycle of a marketplace module.
// Failures are reported as *InstallError.
type ModuleInstaller interface {
	// Load downloads the module sources from the marketplace
	Load(ctx context.Context, code string) error
	// Register runs the module installer
	Register(ctx context.Context, code string) error
	// Remove uninstalls the module and deletes its sources
	Remove(ctx context.Context, code string) error
}
