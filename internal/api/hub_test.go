package api_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/LandynMoreno/zolo/internal/api"
	diag "github.com/LandynMoreno/zolo/internal/diagnostics"
)

func TestHub_PublishNeverBlocks(t *testing.T) {
	h := api.NewHub(zerolog.Nop())
	for i := 0; i < 10; i++ {
		h.PublishFrame([]byte{byte(i), 0, 0})
	}
	for i := 0; i < 100; i++ {
		h.PushDiag(diag.Diagnostic{Severity: diag.Info, Code: "X"})
	}

	last, id := h.LastFrame()
	assert.EqualValues(t, 10, id)
	assert.Equal(t, []byte{9, 0, 0}, last)
	assert.EqualValues(t, 2, h.Dropped(), "queue holds eight frames")
	assert.Zero(t, h.Clients())
}
