// Package conf reads flat configuration files: key=value properties or a
// flat YAML map.
package conf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Conf holds the non-comment lines of a configuration file.
type Conf struct {
	Values []string
}

func Read(reader io.Reader) (*Conf, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	retval := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 0 && line[0] != '#' && line[0] != '!' {
			retval = append(retval, line)
		}
	}
	return &Conf{retval}, nil
}

// Properties splits every line at its first '=' or ':'. Keys are unique.
func (c *Conf) Properties() (map[string]string, error) {
	props := make(map[string]string, len(c.Values))
	for _, line := range c.Values {
		sep := strings.IndexAny(line, "=:")
		if sep <= 0 {
			return nil, errors.Errorf("malformed property line %q", line)
		}
		key := strings.TrimSpace(line[:sep])
		if _, exists := props[key]; exists {
			return nil, errors.Errorf("duplicate property %q", key)
		}
		props[key] = strings.TrimSpace(line[sep+1:])
	}
	return props, nil
}

func ReadProperties(reader io.Reader) (map[string]string, error) {
	c, err := Read(reader)
	if err != nil {
		return nil, err
	}
	return c.Properties()
}

// ReadYAML decodes a flat YAML map. Scalars are rendered as strings and
// sequences are joined with spaces.
func ReadYAML(reader io.Reader) (map[string]string, error) {
	raw := make(map[string]interface{})
	if err := yaml.NewDecoder(reader).Decode(&raw); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding yaml")
	}
	props := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case map[string]interface{}:
			return nil, errors.Errorf("nested value for key %q", key)
		case []interface{}:
			strs := make([]string, len(v))
			for i, item := range v {
				strs[i] = fmt.Sprint(item)
			}
			props[key] = strings.Join(strs, " ")
		case nil:
			props[key] = ""
		default:
			props[key] = fmt.Sprint(v)
		}
	}
	return props, nil
}

// ReadFile reads a properties file, or a YAML file when the extension is
// .yaml or .yml.
func ReadFile(filename string) (map[string]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var props map[string]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		props, err = ReadYAML(file)
	default:
		props, err = ReadProperties(file)
	}
	return props, errors.Wrapf(err, "reading %s", filename)
}

// Keys returns the keys of props sorted.
func Keys(props map[string]string) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
