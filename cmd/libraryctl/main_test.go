package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locallibrary/locallibrary/internal/app"
	_ "github.com/locallibrary/locallibrary/internal/testing/guard"
)

func TestMainReturnsInTestMode(t *testing.T) {
	app.RefreshTestMode()
	assert.True(t, app.InTestMode())
	assert.NotPanics(t, main)
}
