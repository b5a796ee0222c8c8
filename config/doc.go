// Package config provides configuration loading and validation for stagekit
// applications.
//
// It uses Viper to load a YAML file, a .env file (via godotenv), and
// environment variables into a typed struct. Environment variables override
// file values: PIPELINE_TIMEOUT sets pipeline.timeout.
//
// # Usage
//
//	var cfg MyConfig
//	err := config.LoadConfig("stagekit", &cfg, config.WithConfigFile("config.yml"))
package config
