package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewportPresets(t *testing.T) {
	assert.Equal(t, "desktop", ViewportDesktop.Name)
	assert.False(t, ViewportDesktop.Mobile)
	assert.Greater(t, ViewportDesktop.Width, ViewportMobile.Width)

	assert.Equal(t, "mobile", ViewportMobile.Name)
	assert.True(t, ViewportMobile.Mobile)
}
