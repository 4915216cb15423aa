package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]string{"start"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Action != ActionStart {
		t.Errorf("unexpected action: %v", cfg.Action)
	}
	if cfg.Port != 8000 {
		t.Errorf("unexpected default port: %d", cfg.Port)
	}
	if cfg.LogLvl != LogInfo {
		t.Errorf("unexpected default log level: %v", cfg.LogLvl)
	}
	if cfg.CertSegments != 1000 || cfg.CertSegmentLength != 1500 {
		t.Errorf("unexpected default certificate geometry: %+v", cfg)
	}
}

func TestParseOverridesFlags(t *testing.T) {
	cfg, err := Parse([]string{"start", "--port", "9090", "--loglvl", "DEBUG", "--webroot", "/srv/web"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("unexpected port: %d", cfg.Port)
	}
	if cfg.LogLvl != LogDebug {
		t.Errorf("unexpected log level: %v", cfg.LogLvl)
	}
	if cfg.WebRoot != "/srv/web" {
		t.Errorf("unexpected webroot: %s", cfg.WebRoot)
	}
}

func TestParseGetCertAction(t *testing.T) {
	cfg, err := Parse([]string{"get_cert", "--cert", "/tmp/x.cert"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Action != ActionGetCert || cfg.CertPath != "/tmp/x.cert" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestParseRejectsMissingAction(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected an error for missing action")
	}
}

func TestParseRejectsUnknownAction(t *testing.T) {
	if _, err := Parse([]string{"dance"}); err == nil {
		t.Fatal("expected an error for an unknown action")
	}
}

func TestParseRejectsUnknownLogLevel(t *testing.T) {
	if _, err := Parse([]string{"start", "--loglvl", "VERBOSE"}); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}
