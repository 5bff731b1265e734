package version

// Set via -ldflags "-X github.com/egoavara/bitrix-console/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)
