package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCP1252(t *testing.T) {
	assert.Equal(t, "Dr Smith", toCP1252("Dr Smith"))
	assert.Equal(t, "S\xe9an \xd3 Briain", toCP1252("Séan Ó Briain"))
	assert.Equal(t, "\x80 and \x96", toCP1252("€ and –"))
	assert.Equal(t, "?\xf3d?", toCP1252("Łódź"))
}
