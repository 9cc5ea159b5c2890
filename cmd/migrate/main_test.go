package main

import (
	"errors"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
)

type fakeMigrator struct {
	upErr      error
	stepsErr   error
	version    uint
	dirty      bool
	versionErr error

	upCalls int
	steps   []int
}

func (f *fakeMigrator) Up() error {
	f.upCalls++
	return f.upErr
}

func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.stepsErr
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}

func TestRun_Up(t *testing.T) {
	t.Run("Applies migrations", func(t *testing.T) {
		m := &fakeMigrator{}
		assert.NoError(t, run(m, "up"))
		assert.Equal(t, 1, m.upCalls)
	})

	t.Run("No change is not an error", func(t *testing.T) {
		m := &fakeMigrator{upErr: migrate.ErrNoChange}
		assert.NoError(t, run(m, "up"))
	})

	t.Run("Failure", func(t *testing.T) {
		m := &fakeMigrator{upErr: errors.New("syntax error at or near")}
		err := run(m, "up")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "migration failed")
	})
}

func TestRun_Down(t *testing.T) {
	t.Run("Rolls back one step", func(t *testing.T) {
		m := &fakeMigrator{}
		assert.NoError(t, run(m, "down"))
		assert.Equal(t, []int{-1}, m.steps)
	})

	t.Run("Nothing applied", func(t *testing.T) {
		m := &fakeMigrator{stepsErr: os.ErrNotExist}
		assert.NoError(t, run(m, "down"))
	})

	t.Run("Failure", func(t *testing.T) {
		m := &fakeMigrator{stepsErr: errors.New("dirty database")}
		assert.Error(t, run(m, "down"))
	})
}

func TestRun_Version(t *testing.T) {
	assert.NoError(t, run(&fakeMigrator{version: 1}, "version"))
	assert.NoError(t, run(&fakeMigrator{versionErr: migrate.ErrNilVersion}, "version"))
	assert.Error(t, run(&fakeMigrator{versionErr: errors.New("boom")}, "version"))
}

func TestRun_UnknownMode(t *testing.T) {
	err := run(&fakeMigrator{}, "sideways")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestDatabaseURL_PrefersDBURL(t *testing.T) {
	t.Setenv("DB_URL", "postgres://u:p@db:5432/fruitbox?sslmode=disable")
	assert.Equal(t, "postgres://u:p@db:5432/fruitbox?sslmode=disable", databaseURL())
}

func TestDatabaseURL_FromSettings(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "fruitbox")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "fruitbox")
	t.Setenv("DB_PORT", "5432")

	assert.Equal(t, "postgres://fruitbox:secret@db:5432/fruitbox?sslmode=disable", databaseURL())
}
