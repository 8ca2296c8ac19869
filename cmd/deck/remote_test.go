package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveLoadRemotes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	in := RemotesConfig{
		Active: "prod",
		Remotes: map[string]Remote{
			"prod":  {URL: "https://deck.example.com", Token: "tok_abc", NATSURL: "nats://prod:4222"},
			"local": {URL: "http://localhost:8080"},
		},
	}
	if err := saveRemotesConfig(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := loadRemotesConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Active != "prod" {
		t.Errorf("Active = %q, want prod", got.Active)
	}
	if prod := got.Remotes["prod"]; prod != in.Remotes["prod"] {
		t.Errorf("prod = %+v, want %+v", prod, in.Remotes["prod"])
	}
	if local := got.Remotes["local"]; local.URL != "http://localhost:8080" || local.Token != "" {
		t.Errorf("local = %+v", local)
	}
}

func TestLoadRemotes_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadRemotesConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Active != "" || cfg.Remotes == nil || len(cfg.Remotes) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadRemotes_Malformed(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path, err := remoteConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("active = [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadRemotesConfig(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSaveRemotes_Permissions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := saveRemotesConfig(RemotesConfig{Remotes: map[string]Remote{}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	path, _ := remoteConfigPath()
	for p, want := range map[string]os.FileMode{path: 0o600, filepath.Dir(path): 0o700} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s permissions = %04o, want %04o", p, got, want)
		}
	}
}

func TestRemoteLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	mustRun := func(fn func() error) {
		t.Helper()
		if err := fn(); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	remoteAddCmd.SetOut(&buf)
	remoteUseCmd.SetOut(&buf)
	remoteRemoveCmd.SetOut(&buf)

	mustRun(func() error { return remoteAddCmd.RunE(remoteAddCmd, []string{"local", "http://localhost:8080"}) })
	mustRun(func() error { return remoteAddCmd.RunE(remoteAddCmd, []string{"staging", "https://staging:8080"}) })
	mustRun(func() error { return remoteAddCmd.RunE(remoteAddCmd, []string{"local", "http://127.0.0.1:8080"}) }) // upsert
	mustRun(func() error { return remoteUseCmd.RunE(remoteUseCmd, []string{"local"}) })

	cfg, _ := loadRemotesConfig()
	if cfg.Active != "local" {
		t.Fatalf("Active = %q, want local", cfg.Active)
	}
	if cfg.Remotes["local"].URL != "http://127.0.0.1:8080" {
		t.Fatalf("upsert did not replace the URL: %+v", cfg.Remotes["local"])
	}

	buf.Reset()
	remoteListCmd.SetOut(&buf)
	mustRun(func() error { return remoteListCmd.RunE(remoteListCmd, nil) })
	out := buf.String()
	if !strings.Contains(out, "* local") {
		t.Errorf("list missing active marker:\n%s", out)
	}
	if strings.Index(out, "local") > strings.Index(out, "staging") {
		t.Errorf("list not sorted by name:\n%s", out)
	}

	buf.Reset()
	remoteShowCmd.SetOut(&buf)
	mustRun(func() error { return remoteShowCmd.RunE(remoteShowCmd, nil) })
	if out := buf.String(); !strings.Contains(out, "127.0.0.1:8080") || !strings.Contains(out, "(active)") {
		t.Errorf("show missing expected content:\n%s", out)
	}

	mustRun(func() error { return remoteUseCmd.RunE(remoteUseCmd, nil) })
	if cfg, _ := loadRemotesConfig(); cfg.Active != "" {
		t.Fatalf("use with no args should clear, got %q", cfg.Active)
	}

	mustRun(func() error { return remoteUseCmd.RunE(remoteUseCmd, []string{"local"}) })
	mustRun(func() error { return remoteRemoveCmd.RunE(remoteRemoveCmd, []string{"local"}) })
	cfg, _ = loadRemotesConfig()
	if _, ok := cfg.Remotes["local"]; ok {
		t.Error("remote local should be gone")
	}
	if cfg.Active != "" {
		t.Errorf("Active should be cleared, got %q", cfg.Active)
	}
}

func TestRemoteShow_MasksToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := saveRemotesConfig(RemotesConfig{
		Active:  "prod",
		Remotes: map[string]Remote{"prod": {URL: "https://deck.example.com", Token: "tok_verylongsecret"}},
	}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	remoteShowCmd.SetOut(&buf)
	if err := remoteShowCmd.RunE(remoteShowCmd, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "tok_verylongsecret") {
		t.Error("full token must not appear in show output")
	}
	if !strings.Contains(out, "tok_very**********") {
		t.Errorf("expected masked token:\n%s", out)
	}

	buf.Reset()
	remoteListCmd.SetOut(&buf)
	if err := remoteListCmd.RunE(remoteListCmd, nil); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "tok_") {
		t.Errorf("list must not print tokens:\n%s", buf.String())
	}
}

func TestMaskToken(t *testing.T) {
	for in, want := range map[string]string{
		"":           "",
		"short":      "short",
		"exactly8":   "exactly8",
		"0123456789": "01234567**",
	} {
		if got := maskToken(in); got != want {
			t.Errorf("maskToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRemoteErrorCases(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"use unknown", func() error { return remoteUseCmd.RunE(remoteUseCmd, []string{"ghost"}) }},
		{"remove unknown", func() error { return remoteRemoveCmd.RunE(remoteRemoveCmd, []string{"ghost"}) }},
		{"show unknown", func() error { return remoteShowCmd.RunE(remoteShowCmd, []string{"ghost"}) }},
		{"show no active", func() error { return remoteShowCmd.RunE(remoteShowCmd, nil) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			if err := tc.fn(); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
