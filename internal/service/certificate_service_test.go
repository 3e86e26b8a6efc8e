package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCertificateEligible(t *testing.T) {
	assert.True(t, certificateEligible(3, 3))
	assert.True(t, certificateEligible(1, 1))
}

func TestCertificateNotEligible(t *testing.T) {
	assert.False(t, certificateEligible(2, 3), "incomplete course")
	assert.False(t, certificateEligible(0, 3), "nothing passed")
	assert.False(t, certificateEligible(0, 0), "empty course never completes")
}
