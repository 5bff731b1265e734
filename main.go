package main

import (
	"embed"

	"github.com/egoavara/bitrix-console/cmd"
	"github.com/egoavara/bitrix-console/internal/config"
	"github.com/egoavara/bitrix-console/internal/i18n"
	"github.com/jeandeaual/go-locale"
)

//go:embed locales/*.json
var localeFS embed.FS

func main() {
	i18n.Init(localeFS, getLocale())

	cmd.Execute()
}

// getLocale returns the locale based on config
func getLocale() string {
	configLocale := config.GetLocale()

	// If "auto", detect system locale
	if configLocale == "auto" {
		userLocale, err := locale.GetLocale()
		if err != nil || userLocale == "" {
			return "en-US"
		}
		return userLocale
	}

	return configLocale
}
