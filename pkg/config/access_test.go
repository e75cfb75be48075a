package config

import "testing"

func TestInitializeWithExplicitConfigSkipsLoad(t *testing.T) {
	defer func() { globalConfig = nil }()

	explicit := &Config{Database: DatabaseConfig{Path: "/explicit/path.db"}}
	Initialize(explicit)

	if Get() != explicit {
		t.Error("Get() did not return the explicitly initialized config")
	}
}

func TestGetLazilyInitializes(t *testing.T) {
	defer func() { globalConfig = nil }()
	globalConfig = nil

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() = nil")
	}
	if Get() != cfg {
		t.Error("Get() returned a different instance on second call")
	}
}
