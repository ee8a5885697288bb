package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComposeNote(t *testing.T) {
	date := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	assert.Equal(t,
		"Service cancelled by jsmith on 2024-01-15",
		ComposeNote("jsmith", date, ""),
	)
	assert.Equal(t,
		"Service cancelled by jsmith on 2024-01-15 through ticket T-42",
		ComposeNote("jsmith", date, "T-42"),
	)
	assert.Equal(t,
		"Service cancelled by system on 2024-01-15",
		ComposeNote("system", date, ""),
	)
}

func TestAppendNote(t *testing.T) {
	assert.Equal(t, "new line", appendNote("", "new line"))
	assert.Equal(t, "existing\nnew line", appendNote("existing", "new line"))
}
