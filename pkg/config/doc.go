// Package config loads tasklines configuration. Layers are applied in
// order, each overriding the previous one: the embedded defaults, the
// user's config file, TASKLINES_ environment variables and finally
// overrides passed by the caller.
package config
