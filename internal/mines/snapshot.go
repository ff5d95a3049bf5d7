package mines

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

func (s Snapshot) YAML() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("unable to encode snapshot: %w", err)
	}
	return string(out), nil
}
