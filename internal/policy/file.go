package policy

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File is one parsed config file: option values per section name.
// Values of the DEFAULT section live under DefaultSection.
type File struct {
	Path     string
	Sections map[string]map[string]string
}

// Has reports whether the file defines section
func (f *File) Has(section string) bool {
	_, ok := f.Sections[section]
	return ok
}

// Paths locates the config files that are read when no explicit file is
// given. Drop-in directories contribute their *.conf files in lexical order.
type Paths struct {
	SystemFile   string
	SystemDropIn string
	LocalFile    string
	LocalDropIn  string
}

// DefaultPaths returns the stock locations: /etc first, then the working
// directory, so local files override system ones.
func DefaultPaths() Paths {
	return Paths{
		SystemFile:   "/etc/aptcron.conf",
		SystemDropIn: "/etc/aptcron.d",
		LocalFile:    "aptcron.conf",
		LocalDropIn:  "aptcron.d",
	}
}

// DiscoverFiles returns the config files to read in precedence order,
// lowest first. An explicit file replaces discovery entirely. Files are
// not checked for existence.
func DiscoverFiles(explicit string, p Paths) []string {
	if explicit != "" {
		return []string{explicit}
	}

	var files []string
	files = append(files, p.SystemFile)
	files = append(files, dropIns(p.SystemDropIn)...)
	files = append(files, p.LocalFile)
	files = append(files, dropIns(p.LocalDropIn)...)
	return files
}

func dropIns(dir string) []string {
	if dir == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.conf"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// ReadFiles parses every existing file in paths, in order. Missing files
// are skipped.
func ReadFiles(paths []string) ([]*File, error) {
	var files []*File
	for _, path := range paths {
		f, err := ParseFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// ParseFile reads a config file. Files ending in .toml are TOML, files
// ending in .yaml or .yml are YAML and everything else is INI. Top-level
// options and a DEFAULT table form the DEFAULT section; every other table
// is a named section.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, &ConfigError{File: path, Err: err}
	}

	f := &File{
		Path:     path,
		Sections: map[string]map[string]string{},
	}

	var doc map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	default:
		if err := f.parseINI(bytes.NewReader(data)); err != nil {
			return nil, err
		}
		return f, nil
	}
	if err != nil {
		return nil, &ConfigError{File: path, Err: fmt.Errorf("%w: %v", ErrInvalidSyntax, err)}
	}

	if err := f.load(doc); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) section(name string) map[string]string {
	sec, ok := f.Sections[name]
	if !ok {
		sec = map[string]string{}
		f.Sections[name] = sec
	}
	return sec
}

func (f *File) load(doc map[string]interface{}) error {
	for name, value := range doc {
		table, isTable := value.(map[string]interface{})
		if !isTable {
			if err := f.set(DefaultSection, name, value); err != nil {
				return err
			}
			continue
		}

		f.section(name)
		for key, v := range table {
			if err := f.set(name, key, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *File) set(section, key string, value interface{}) error {
	s, ok := scalar(value)
	if !ok {
		return &ConfigError{
			File:    f.Path,
			Section: section,
			Key:     key,
			Err:     fmt.Errorf("%w: unsupported value of type %T", ErrInvalidValue, value),
		}
	}
	f.section(section)[strings.ToLower(key)] = s
	return nil
}

// scalar renders a decoded config value in the yes/no string form the
// resolver stores
func scalar(v interface{}) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case bool:
		if x {
			return "yes", true
		}
		return "no", true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	}
	return "", false
}
