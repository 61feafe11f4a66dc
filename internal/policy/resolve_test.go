package policy

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// writeConfig writes content into dir/name and returns the path
func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func file(path string, sections map[string]map[string]string) *File {
	return &File{Path: path, Sections: sections}
}

func TestResolveDefaults(t *testing.T) {
	p, err := Resolve(Defaults("web1.example.com"), nil, DefaultSection, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.NoUpdate || p.OnlyNew || p.Force || p.NoMail {
		t.Error("boolean options must default to no")
	}
	if p.MailFrom != "root@web1.example.com" || p.MailTo != "root@web1.example.com" {
		t.Errorf("unexpected addresses %q %q", p.MailFrom, p.MailTo)
	}
	if p.MailSubject != "[aptcron] {shorthost}: {num} APT updates" {
		t.Errorf("unexpected subject %q", p.MailSubject)
	}
	if p.SMTPHost != "localhost" || p.SMTPPort != 25 {
		t.Errorf("unexpected relay %s:%d", p.SMTPHost, p.SMTPPort)
	}
	if p.SMTPUser != "" || p.SMTPPassword != "" {
		t.Error("credentials must default to empty")
	}
	if p.StartTLS != StartTLSForce {
		t.Errorf("expected starttls force, got %q", p.StartTLS)
	}
}

func TestResolvePrecedence(t *testing.T) {
	files := []*File{
		file("/etc/aptcron.conf", map[string]map[string]string{
			DefaultSection: {KeySMTPHost: "relay1", KeySMTPPort: "587"},
			"office":       {KeySMTPHost: "office-relay", KeyOnlyNew: "yes"},
		}),
		file("/etc/aptcron.d/10-site.conf", map[string]map[string]string{
			DefaultSection: {KeySMTPHost: "relay2", KeyMailTo: "ops@example.com"},
		}),
	}

	tests := []struct {
		name      string
		section   string
		overrides map[string]string
		check     func(t *testing.T, p *Policy)
	}{
		{
			name:    "later file wins in DEFAULT",
			section: DefaultSection,
			check: func(t *testing.T, p *Policy) {
				if p.SMTPHost != "relay2" {
					t.Errorf("expected relay2, got %q", p.SMTPHost)
				}
				if p.SMTPPort != 587 {
					t.Errorf("expected 587, got %d", p.SMTPPort)
				}
			},
		},
		{
			name:    "section beats DEFAULT of any file",
			section: "office",
			check: func(t *testing.T, p *Policy) {
				if p.SMTPHost != "office-relay" {
					t.Errorf("expected office-relay, got %q", p.SMTPHost)
				}
				if !p.OnlyNew {
					t.Error("expected only-new from section")
				}
				if p.MailTo != "ops@example.com" {
					t.Errorf("expected inherited mail-to, got %q", p.MailTo)
				}
			},
		},
		{
			name:      "override beats section",
			section:   "office",
			overrides: map[string]string{KeySMTPHost: "cli-relay", KeyOnlyNew: "no"},
			check: func(t *testing.T, p *Policy) {
				if p.SMTPHost != "cli-relay" {
					t.Errorf("expected cli-relay, got %q", p.SMTPHost)
				}
				if p.OnlyNew {
					t.Error("expected only-new overridden to no")
				}
			},
		},
		{
			name:    "empty section name means DEFAULT",
			section: "",
			check: func(t *testing.T, p *Policy) {
				if p.SMTPHost != "relay2" {
					t.Errorf("expected relay2, got %q", p.SMTPHost)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Resolve(Defaults("host"), files, tt.section, tt.overrides)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, p)
		})
	}
}

func TestResolveUnknownSection(t *testing.T) {
	files := []*File{file("a.conf", map[string]map[string]string{"office": {}})}

	_, err := Resolve(Defaults("host"), files, "home", nil)

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !errors.Is(err, ErrUnknownSection) {
		t.Errorf("expected ErrUnknownSection, got %v", err)
	}
	if cfgErr.Kind() != "ConfigError" {
		t.Errorf("unexpected kind %q", cfgErr.Kind())
	}

	// an empty section that exists is fine
	if _, err := Resolve(Defaults("host"), files, "office", nil); err != nil {
		t.Errorf("unexpected error for existing empty section: %v", err)
	}
}

func TestResolveInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad boolean", key: KeyOnlyNew, val: "maybe"},
		{name: "non-numeric port", key: KeySMTPPort, val: "smtp"},
		{name: "port out of range", key: KeySMTPPort, val: "70000"},
		{name: "bad starttls", key: KeySMTPStartTLS, val: "always"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := []*File{file("a.conf", map[string]map[string]string{
				DefaultSection: {tt.key: tt.val},
			})}

			_, err := Resolve(Defaults("host"), files, DefaultSection, nil)

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Key != tt.key {
				t.Errorf("expected key %q, got %q", tt.key, cfgErr.Key)
			}
			if !errors.Is(err, ErrInvalidValue) {
				t.Errorf("expected ErrInvalidValue, got %v", err)
			}
		})
	}
}

func TestResolveBooleanSpellings(t *testing.T) {
	for _, v := range []string{"yes", "YES", "true", "on", "1"} {
		files := []*File{file("a.conf", map[string]map[string]string{DefaultSection: {KeyForce: v}})}
		p, err := Resolve(Defaults("host"), files, DefaultSection, nil)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", v, err)
		}
		if !p.Force {
			t.Errorf("%q should be true", v)
		}
	}
}

func TestResolveDoesNotModifyInputs(t *testing.T) {
	defaults := Defaults("host")
	snapshot := Defaults("host")
	overrides := map[string]string{KeyForce: "yes"}

	p, err := Resolve(defaults, nil, DefaultSection, overrides)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(defaults, snapshot) {
		t.Error("defaults were modified")
	}

	raw := p.Raw()
	raw[KeyForce] = "no"
	if p.Get(KeyForce) != "yes" {
		t.Error("Raw must return a copy")
	}
}

// **Property: without overrides the policy is exactly the merged config**
func TestResolveWithoutOverridesProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genHost := gen.RegexMatch(`^[a-z]{1,8}(\.[a-z]{2,5})?$`)

	properties.Property("no overrides yields config over defaults", prop.ForAll(
		func(host, relay string, port int, force bool) bool {
			forceValue := "no"
			if force {
				forceValue = "yes"
			}
			files := []*File{file("a.conf", map[string]map[string]string{
				DefaultSection: {KeySMTPHost: relay, KeySMTPPort: itoa(port), KeyForce: forceValue},
			})}

			p, err := Resolve(Defaults(host), files, DefaultSection, nil)
			if err != nil {
				return false
			}

			expected := Defaults(host)
			expected[KeySMTPHost] = relay
			expected[KeySMTPPort] = itoa(port)
			expected[KeyForce] = forceValue

			return reflect.DeepEqual(p.Raw(), expected) &&
				p.Force == force && p.SMTPPort == port && p.SMTPHost == relay
		},
		genHost,
		genHost,
		gen.IntRange(1, 65535),
		gen.Bool(),
	))

	properties.Property("an override always wins over config", prop.ForAll(
		func(fromFile, fromCLI string) bool {
			files := []*File{file("a.conf", map[string]map[string]string{
				DefaultSection: {KeyMailTo: fromFile},
				"s":            {KeyMailTo: fromFile},
			})}
			p, err := Resolve(Defaults("h"), files, "s", map[string]string{KeyMailTo: fromCLI})
			return err == nil && p.MailTo == fromCLI
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func TestLoadDiscovery(t *testing.T) {
	dir := t.TempDir()
	paths := &Paths{
		SystemFile:   filepath.Join(dir, "etc", "aptcron.conf"),
		SystemDropIn: filepath.Join(dir, "etc", "aptcron.d"),
		LocalFile:    filepath.Join(dir, "local", "aptcron.conf"),
		LocalDropIn:  filepath.Join(dir, "local", "aptcron.d"),
	}

	writeConfig(t, dir, "etc/aptcron.conf", `smtp-host = "system"`+"\n"+`smtp-port = 2525`+"\n")
	writeConfig(t, dir, "etc/aptcron.d/20-b.conf", `smtp-host = "dropin-b"`+"\n")
	writeConfig(t, dir, "etc/aptcron.d/10-a.conf", `smtp-host = "dropin-a"`+"\n"+`mail-to = "a@example.com"`+"\n")
	writeConfig(t, dir, "etc/aptcron.d/ignored.txt", `smtp-host = "ignored"`+"\n")
	writeConfig(t, dir, "local/aptcron.d/00-local.conf", "[office]\nonly-new = true\n")

	p, err := Load(LoadOptions{Host: "h", Paths: paths})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SMTPHost != "dropin-b" {
		t.Errorf("expected lexically last drop-in to win, got %q", p.SMTPHost)
	}
	if p.SMTPPort != 2525 {
		t.Errorf("expected port from system file, got %d", p.SMTPPort)
	}
	if p.MailTo != "a@example.com" {
		t.Errorf("expected mail-to from first drop-in, got %q", p.MailTo)
	}

	p, err = Load(LoadOptions{Host: "h", Paths: paths, Section: "office"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.OnlyNew {
		t.Error("expected only-new from the local drop-in section")
	}
}

func TestLoadExplicitFileReplacesDiscovery(t *testing.T) {
	dir := t.TempDir()
	paths := &Paths{SystemFile: writeConfig(t, dir, "system.conf", `smtp-host = "system"`+"\n")}
	explicit := writeConfig(t, dir, "explicit.conf", `mail-to = "x@example.com"`+"\n")

	p, err := Load(LoadOptions{Host: "h", Paths: paths, ConfigFile: explicit})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SMTPHost != "localhost" {
		t.Errorf("system file must not be read, got smtp-host %q", p.SMTPHost)
	}
	if p.MailTo != "x@example.com" {
		t.Errorf("unexpected mail-to %q", p.MailTo)
	}
}

func TestLoadMissingFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	p, err := Load(LoadOptions{Host: "h", ConfigFile: filepath.Join(dir, "nope.conf")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SMTPHost != "localhost" {
		t.Errorf("expected defaults, got %q", p.SMTPHost)
	}
}

func TestFallback(t *testing.T) {
	p := Fallback("web1", map[string]string{
		KeyNoMail:       "yes",
		KeySMTPPort:     "not-a-port",
		KeySMTPStartTLS: "no",
	})

	if !p.NoMail {
		t.Error("valid override should apply")
	}
	if p.SMTPPort != 25 {
		t.Errorf("invalid override should be dropped, got port %d", p.SMTPPort)
	}
	if p.StartTLS != StartTLSNo {
		t.Errorf("expected starttls no, got %q", p.StartTLS)
	}
	if p.MailTo != "root@web1" {
		t.Errorf("unexpected mail-to %q", p.MailTo)
	}
}
