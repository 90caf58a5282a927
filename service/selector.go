package service

import (
	"github.com/dealerlot/lotposter/config"
	"github.com/dealerlot/lotposter/publisher"
)

// UseLiveBackend is the dispatch predicate: a credential is present and test
// mode is off. Decided once at startup, before any network call.
func UseLiveBackend(credential string, testModeEnabled bool) bool {
	return credential != "" && !testModeEnabled
}

// SelectBackend picks the live or simulated platform backend. Both implement
// publisher.PlatformBackend, so the orchestrator never knows the difference.
func SelectBackend(cfg config.Config, credential string) publisher.PlatformBackend {
	if UseLiveBackend(credential, cfg.TestModeEnabled) {
		return NewPlatformService(cfg, credential)
	}
	return NewSimulatedPlatform()
}
