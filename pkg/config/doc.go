// Package config loads isocell configuration files.
//
// A configuration file is TOML (.toml) or YAML (.yaml, .yml):
//
//	[partition]
//	min_cell_nodes = 10
//	max_cell_nodes = 5000
//
//	[storage]
//	backend = "badger"
//	path = "data/isocell"
//
// Fields missing from the file keep their reference defaults, so an empty
// file is equivalent to [Default]. Command-line flags are applied on top of
// the loaded values by the caller.
package config
