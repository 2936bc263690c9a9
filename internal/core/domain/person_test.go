package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@example.com", MaskEmail(" Alice@Example.com "))
	assert.Equal(t, "***", MaskEmail("not-an-address"))
	assert.Equal(t, "***", MaskEmail("@example.com"))
}
