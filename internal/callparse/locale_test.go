package callparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateLabel(t *testing.T) {
	loc := RussianLocale()
	assert.Equal(t, FieldLineNumber, loc.TranslateLabel("Номер линии АТС"))
	assert.Equal(t, FieldCaller, loc.TranslateLabel("Кто звонил"))
	assert.Equal(t, FieldCallee, loc.TranslateLabel("С кем говорил"))
	assert.Equal(t, FieldDurationRaw, loc.TranslateLabel("Длительность"))
	assert.Equal(t, "Отдел", loc.TranslateLabel("Отдел"))
}

func TestRoleOf(t *testing.T) {
	loc := RussianLocale()
	assert.Equal(t, RoleClient, loc.RoleOf("Клиент"))
	assert.Equal(t, RoleEmployee, loc.RoleOf("Сотрудник"))
	// Only an exact client marker is a client.
	assert.Equal(t, RoleEmployee, loc.RoleOf("Клиент 2"))
}

func TestParseCallDatetime(t *testing.T) {
	loc := RussianLocale()

	got, ok := loc.ParseCallDatetime("05.Mar.2024 14:03:27")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 5, 14, 3, 27, 0, time.UTC), got)

	got, ok = loc.ParseCallDatetime(" 17.окт.2023 09:00:01 ")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.October, 17, 9, 0, 1, 0, time.UTC), got)

	for _, bad := range []string{"", "2024-03-05 14:03:27", "5.Mar.2024 14:03:27", "05.Xyz.2024 14:03:27", "05.Mar.2024"} {
		_, ok := loc.ParseCallDatetime(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}

func TestParseCallDatetime_Location(t *testing.T) {
	loc := RussianLocale()
	loc.Location = time.FixedZone("MSK", 3*60*60)

	got, ok := loc.ParseCallDatetime("01.Jan.2024 00:00:00")
	require.True(t, ok)
	assert.Equal(t, "2023-12-31T21:00:00Z", got.UTC().Format(time.RFC3339))
}

func TestRussianLocale_IndependentCopies(t *testing.T) {
	a := RussianLocale()
	a.Labels["Кто звонил"] = "who"

	b := RussianLocale()
	assert.Equal(t, FieldCaller, b.TranslateLabel("Кто звонил"))
}
