// The below code is derived from github.com/spf13/viper,
// which comes with the below copyright notice:
//
// Copyright © 2014 Steve Francia <spf@spf13.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config is a layered application configuration registry.

Each layer takes precedence over the layers below it:

	overrides     (Set)
	flags         (BindPFlag, only flags explicitly given on the command line)
	environment   (BindEnv, EnvPrefix)
	dotenv files  (AddEnvFile)
	config files  (AddConfigFile, AddConfigFrom) - later files win
	defaults      (SetDefault)

Config files can be YAML, TOML or JSON. JSON files may contain // line comments.

Values are hierarchical, but each has a unique key in a flat keyspace using a key
delimiter (default "."). Given the YAML file

	log:
	  level: debug

the key "log.level" is "debug".

The Daemon type holds the command line derived settings of a daemon host program.
*/
package config
