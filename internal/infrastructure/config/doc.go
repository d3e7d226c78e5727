// Package config loads the panel's YAML configuration.
//
// Defaults run the panel fully in memory with every integration off.
// The YAML file, a .env file in the working directory and EARPANEL_*
// variables override them in that order. Keep the MQTT password and the
// InfluxDB token in the environment, not in the file.
//
//	cfg, err := config.Load("configs/config.yaml")
package config
