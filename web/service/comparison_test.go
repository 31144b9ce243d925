package service

import (
	"testing"

	"github.com/apextelemetry/apextelemetry/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildComparisonIsDeterministic(t *testing.T) {
	svc := NewComparisonService(&fakeDrivers{})
	in := ComparisonInput{Driver1: "Max Verstappen", Driver2: "Lando Norris", RaceDate: "2024-11-03"}

	a, err := svc.Build(t.Context(), in)
	require.NoError(t, err)
	b, err := svc.Build(t.Context(), in)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.Equal(t, "Max Verstappen", a.Driver1.Driver.FullName)
	assert.Equal(t, "Lando Norris", a.Driver2.Driver.FullName)
	assert.Len(t, a.Driver1.Series.Laps, telemetry.DefaultLaps)
	assert.NotEqual(t, a.Driver1.Series, a.Driver2.Series)
}

func TestBuildComparisonValidation(t *testing.T) {
	svc := NewComparisonService(&fakeDrivers{})
	cases := []ComparisonInput{
		{Driver1: "", Driver2: "Lando Norris", RaceDate: "2024-11-03"},
		{Driver1: "Max Verstappen", Driver2: "", RaceDate: "2024-11-03"},
		{Driver1: "Max Verstappen", Driver2: "max verstappen", RaceDate: "2024-11-03"},
		{Driver1: "Max Verstappen", Driver2: "Lando Norris", RaceDate: "yesterday"},
		{Driver1: "Max\r\nVerstappen", Driver2: "Lando Norris", RaceDate: "2024-11-03"},
	}
	for _, in := range cases {
		_, err := svc.Build(t.Context(), in)
		assert.True(t, IsValidation(err), "%+v", in)
	}
}

func TestSaveGetDeleteComparison(t *testing.T) {
	setup(t)
	svc := NewComparisonService(&fakeDrivers{})
	alice := mustRegister(t, "alice")
	bob := mustRegister(t, "bob")
	in := ComparisonInput{Driver1: "Charles Leclerc", Driver2: "Carlos Sainz", RaceDate: "2024-09-01"}

	built, err := svc.Build(t.Context(), in)
	require.NoError(t, err)

	saved, err := svc.Save(t.Context(), alice.Id, in)
	require.NoError(t, err)

	got, err := svc.Get(alice.Id, saved.Id)
	require.NoError(t, err)
	assert.Equal(t, saved.Id, got.Id)
	assert.Equal(t, built.Driver1, got.Driver1)
	assert.Equal(t, built.Driver2, got.Driver2)

	_, err = svc.Get(bob.Id, saved.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(bob.Id, saved.Id), ErrNotFound)

	list, err := svc.List(alice.Id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Data1)

	require.NoError(t, svc.Delete(alice.Id, saved.Id))
	_, err = svc.Get(alice.Id, saved.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}
