package utils_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/colonysim-go/pkg/utils"
)

func TestGenerateRunID_Format(t *testing.T) {
	id := utils.GenerateRunID("Colonies")

	assert.Regexp(t, regexp.MustCompile(`^colonies-[0-9a-f]{8}$`), id)
}

func TestGenerateRunID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := utils.GenerateRunID("refresh")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateRunID_EmptyOperation(t *testing.T) {
	assert.Regexp(t, `^run-[0-9a-f]{8}$`, utils.GenerateRunID("  "))
}

func TestClampFloat(t *testing.T) {
	assert.Equal(t, 0.0, utils.ClampFloat(-1, 0, 1))
	assert.Equal(t, 1.0, utils.ClampFloat(1.7, 0, 1))
	assert.Equal(t, 0.25, utils.ClampFloat(0.25, 0, 1))
}
