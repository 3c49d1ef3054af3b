// Package config defines the settings surface for the extraction pipeline
// and their validation.
//
// Configuration is assembled once, from CLI flags plus an optional
// .wikiextract YAML file, validated via Config.Validate, and then passed
// through the application by value-style dependency injection; no package
// reads configuration from globals or the environment at runtime.
package config
