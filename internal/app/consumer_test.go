package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportTopics(t *testing.T) {
	assert.Equal(t, []string{
		"hrdata.department.lifecycle.v1",
		"hrdata.job.lifecycle.v1",
		"hrdata.user.lifecycle.v1",
	}, reportTopics())
}
