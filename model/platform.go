package model

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformFacebook  Platform = "FACEBOOK"
	PlatformInstagram Platform = "INSTAGRAM"
	// TODO: Add more as needed
)

func ParsePlatform(s string) (Platform, error) {
	switch strings.ToUpper(s) {
	case string(PlatformFacebook):
		return PlatformFacebook, nil
	case string(PlatformInstagram):
		return PlatformInstagram, nil
	default:
		return PlatformFacebook, fmt.Errorf("unknown platform: %s", s)
	}
}
