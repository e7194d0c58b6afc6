package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlatform(t *testing.T) {
	assert.Equal(t, PlatformCloud, ParsePlatform("cloud"))
	assert.Equal(t, PlatformEnterprise, ParsePlatform("enterprise"))
	assert.Equal(t, PlatformOpenSource, ParsePlatform("open-source"))
	assert.Equal(t, PlatformOpenSource, ParsePlatform(""))
	assert.Equal(t, PlatformOpenSource, ParsePlatform("something-else"))
}

func TestStaticLicense(t *testing.T) {
	lic := NewStaticLicense(PlatformEnterprise, "lic-key")
	assert.Equal(t, PlatformEnterprise, lic.Platform())
	assert.True(t, lic.IsLicenseValid(context.Background()))

	empty := NewStaticLicense(PlatformCloud, "")
	assert.False(t, empty.IsLicenseValid(context.Background()))
}
