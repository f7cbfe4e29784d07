package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialectorSelection(t *testing.T) {
	d, err := Dialector(Config{Host: "localhost", User: "u", Password: "p", Name: "ledger", Port: "5432"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(Config{Driver: DriverMySQL, DSN: "u:p@tcp(localhost:3306)/ledger"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	_, err = Dialector(Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestGormConfigTranslatesErrors(t *testing.T) {
	cfg := GormConfig(logger.Silent)
	assert.True(t, cfg.TranslateError)
	assert.False(t, cfg.PrepareStmt)
}
