package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptanceMail(t *testing.T) {
	subject, body := acceptanceMail("Logo Design", "job-42", "https://colabs.example.com")

	assert.Equal(t, "Proposal accepted", subject)
	assert.Contains(t, body, `"Logo Design"`)
	assert.Contains(t, body, "https://colabs.example.com/freelancer/jobs/job-42")
}

func TestRejectionMail(t *testing.T) {
	subject, body := rejectionMail("Logo Design", "job-42", "https://colabs.example.com")

	assert.Equal(t, "Proposal declined", subject)
	assert.Contains(t, body, `"Logo Design"`)
	assert.Contains(t, body, "https://colabs.example.com/jobs/job-42")
}
