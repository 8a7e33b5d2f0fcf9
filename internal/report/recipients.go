package report

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingEmail = errors.New("email is required")
	ErrInvalidEmail = errors.New("invalid email format")
)

func ValidEmail(email string) error {
	// A very basic check for email format
	// Basic validation
	if email == "" {
		return ErrMissingEmail
	}

	// Must contain "@" and not be the first or last character
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return ErrInvalidEmail
	}

	return nil
}

// recipientsFile is the on-disk shape of the recipients list:
//
//	recipients:
//	  - facilities@example.com
//	  - security@example.com
type recipientsFile struct {
	Recipients []string `yaml:"recipients"`
}

// LoadRecipients reads the report recipient addresses from a YAML file.
func LoadRecipients(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipients file: %w", err)
	}

	var f recipientsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse recipients file %s: %w", path, err)
	}

	for _, addr := range f.Recipients {
		if err := ValidEmail(addr); err != nil {
			return nil, fmt.Errorf("recipient %q: %w", addr, err)
		}
	}

	return f.Recipients, nil
}
