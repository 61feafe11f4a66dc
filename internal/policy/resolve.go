package policy

import (
	"github.com/obentoo/aptcron/internal/common/logger"
)

// Resolve merges defaults, the DEFAULT section of every file, the selected
// section of every file and finally overrides, each layer winning over the
// previous one. Within a layer later files win. Neither input is modified.
func Resolve(defaults map[string]string, files []*File, section string, overrides map[string]string) (*Policy, error) {
	if section == "" {
		section = DefaultSection
	}

	values := make(map[string]string, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}

	for _, f := range files {
		for k, v := range f.Sections[DefaultSection] {
			values[k] = v
		}
	}

	if section != DefaultSection {
		found := false
		for _, f := range files {
			sec, ok := f.Sections[section]
			if !ok {
				continue
			}
			found = true
			for k, v := range sec {
				values[k] = v
			}
		}
		if !found {
			return nil, &ConfigError{Section: section, Err: ErrUnknownSection}
		}
	}

	for k, v := range overrides {
		values[k] = v
	}

	for k := range values {
		if _, known := defaults[k]; !known {
			logger.Debug("ignoring unknown option %q", k)
		}
	}

	return build(values, section)
}

// LoadOptions describes where a run's policy comes from
type LoadOptions struct {
	// ConfigFile replaces config discovery when set
	ConfigFile string
	// Section is the config section to read, DEFAULT if empty
	Section string
	// Overrides holds the command line options the user actually gave
	Overrides map[string]string
	// Host is the local host name used in default addresses
	Host string
	// Paths overrides the discovery locations; DefaultPaths if zero
	Paths *Paths
}

// Load discovers and parses the config files and resolves the policy
func Load(opts LoadOptions) (*Policy, error) {
	paths := DefaultPaths()
	if opts.Paths != nil {
		paths = *opts.Paths
	}

	names := DiscoverFiles(opts.ConfigFile, paths)
	files, err := ReadFiles(names)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		logger.Debug("read config file %s", f.Path)
	}

	return Resolve(Defaults(opts.Host), files, opts.Section, opts.Overrides)
}

// Fallback builds a policy from the built-in defaults and every override
// that is valid on its own. It lets a run whose configuration failed to
// resolve still deliver that failure.
func Fallback(host string, overrides map[string]string) *Policy {
	values := Defaults(host)

	for k, v := range overrides {
		candidate := values[k]
		values[k] = v
		if _, err := build(values, DefaultSection); err != nil {
			values[k] = candidate
		}
	}

	p, err := build(values, DefaultSection)
	if err != nil {
		// unreachable: the defaults always build
		panic("policy: built-in defaults are invalid: " + err.Error())
	}
	return p
}
