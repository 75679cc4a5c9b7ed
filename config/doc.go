// Package config loads the rulesquery runtime configuration from the environment
// and creates the database connections and the rule store from it.
//
// Values are read from RULESQUERY_* environment variables. Dotenv files passed to Load
// fill in variables that are not set in the environment.
package config
