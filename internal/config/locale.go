package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
)

// LoadLocale builds the parser locale. Values from the YAML file at path, if
// any, override the Russian defaults; labels and month aliases are merged.
func LoadLocale(path, timezone string) (callparse.Locale, error) {
	loc := callparse.RussianLocale()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return loc, fmt.Errorf("read locale: %w", err)
		}
		var file callparse.Locale
		if err := yaml.Unmarshal(data, &file); err != nil {
			return loc, fmt.Errorf("parse locale: %w", err)
		}
		merge(&loc, file)
	}

	if timezone != "" {
		tz, err := time.LoadLocation(timezone)
		if err != nil {
			return loc, fmt.Errorf("load timezone: %w", err)
		}
		loc.Location = tz
	}

	if loc.BannerMarker == "" || loc.EmployeeMarker == "" || loc.ClientMarker == "" || loc.Separator == "" {
		return loc, fmt.Errorf("locale: banner, role markers and separator must be non-empty")
	}
	return loc, nil
}

func merge(dst *callparse.Locale, src callparse.Locale) {
	if src.BannerMarker != "" {
		dst.BannerMarker = src.BannerMarker
	}
	if src.EmployeeMarker != "" {
		dst.EmployeeMarker = src.EmployeeMarker
	}
	if src.ClientMarker != "" {
		dst.ClientMarker = src.ClientMarker
	}
	if src.Separator != "" {
		dst.Separator = src.Separator
	}
	for k, v := range src.Labels {
		dst.Labels[k] = v
	}
	for k, v := range src.MonthAliases {
		dst.MonthAliases[k] = v
	}
}
