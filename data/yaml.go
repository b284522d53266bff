package data

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadYAML returns the top level mapping of file
func LoadYAML(file string) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := DecodeYAML(file, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeYAML unmarshals file into v
func DecodeYAML(file string, v interface{}) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", file)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", file)
	}
	return nil
}
