package config

import "maps"

var defaults = map[string]any{
	"log_level": "info",

	"listen": ":8080",

	"timezone": "UTC",

	"credential_validity_hours": 24,

	"allowed_networks": "",

	"email.host":     "host.docker.internal",
	"email.port":     25,
	"email.username": "",
	"email.password": "",
	"email.from":     "noreply@example.com",

	"report.weekday":         "monday",
	"report.hour":            8,
	"report.minute":          0,
	"report.recipients_file": "./instance/recipients.yaml",

	"storage.local.path": "./data/storage.db",
}

// Defaults returns a copy, callers may mutate the result.
func Defaults() map[string]any {
	return maps.Clone(defaults)
}
