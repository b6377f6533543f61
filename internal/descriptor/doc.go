// Package descriptor handles the plugin descriptors a blueprint attaches to a
// deployment. It parses descriptor files (YAML or JSON) and validates them
// against the embedded JSON schema.
package descriptor
