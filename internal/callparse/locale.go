package callparse

import (
	"strings"
	"time"
)

// Locale holds the fixed markers and label translations of one export language.
// A Locale is a value; copies never share mutable state with the defaults.
type Locale struct {
	BannerMarker   string            `yaml:"banner_marker"`
	EmployeeMarker string            `yaml:"employee_marker"`
	ClientMarker   string            `yaml:"client_marker"`
	Separator      string            `yaml:"separator"`
	Labels         map[string]string `yaml:"labels"`
	// MonthAliases maps localized month abbreviations to English ones.
	MonthAliases map[string]string `yaml:"month_aliases"`
	// Location is the zone call timestamps are interpreted in; nil means UTC.
	Location *time.Location `yaml:"-"`
}

// DatetimeLayout is the banner timestamp layout: 05.Mar.2024 14:03:27.
const DatetimeLayout = "02.Jan.2006 15:04:05"

// RussianLocale returns the locale of the Russian-language export.
func RussianLocale() Locale {
	return Locale{
		BannerMarker:   "Запись разговоров",
		EmployeeMarker: "Сотрудник",
		ClientMarker:   "Клиент",
		Separator:      "##",
		Labels: map[string]string{
			"Номер линии АТС": FieldLineNumber,
			"Кто звонил":      FieldCaller,
			"С кем говорил":   FieldCallee,
			"Длительность":    FieldDurationRaw,
		},
		MonthAliases: map[string]string{
			"янв": "Jan",
			"фев": "Feb",
			"мар": "Mar",
			"апр": "Apr",
			"май": "May",
			"мая": "May",
			"июн": "Jun",
			"июл": "Jul",
			"авг": "Aug",
			"сен": "Sep",
			"окт": "Oct",
			"ноя": "Nov",
			"дек": "Dec",
		},
	}
}

// TranslateLabel maps a metadata label to its canonical field name.
// Unknown labels pass through unchanged.
func (l Locale) TranslateLabel(label string) string {
	if name, ok := l.Labels[label]; ok {
		return name
	}
	return label
}

// RoleOf returns the English role for a role marker text.
func (l Locale) RoleOf(marker string) Role {
	if marker == l.ClientMarker {
		return RoleClient
	}
	return RoleEmployee
}

// isRoleMarker reports whether text begins with either role marker.
func (l Locale) isRoleMarker(text string) bool {
	return strings.HasPrefix(text, l.EmployeeMarker) || strings.HasPrefix(text, l.ClientMarker)
}

func (l Locale) location() *time.Location {
	if l.Location == nil {
		return time.UTC
	}
	return l.Location
}

// ParseCallDatetime parses a banner timestamp. The second return is false when
// the value does not match DatetimeLayout.
func (l Locale) ParseCallDatetime(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(DatetimeLayout, value, l.location()); err == nil {
		return t, true
	}

	// dd.<month>.yyyy: swap a localized month for its English abbreviation.
	first := strings.IndexByte(value, '.')
	if first < 0 {
		return time.Time{}, false
	}
	rest := value[first+1:]
	second := strings.IndexByte(rest, '.')
	if second < 0 {
		return time.Time{}, false
	}
	month := strings.ToLower(rest[:second])
	english, ok := l.MonthAliases[month]
	if !ok {
		return time.Time{}, false
	}
	value = value[:first+1] + english + rest[second:]
	t, err := time.ParseInLocation(DatetimeLayout, value, l.location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
