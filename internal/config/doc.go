// Package config provides centralized configuration management for the
// collections dashboard. It loads settings from several sources, validates
// them, and resolves the file system paths the service works with.
//
// # Configuration Sources
//
// Configuration is layered in the following order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// A .env file in the working directory is read into the environment before
// variables are processed.
//
// # Environment Variables
//
// All environment variables follow the pattern FUSION_<SECTION>_<FIELD>:
//
//	FUSION_SERVER_PORT=8080
//	FUSION_DATA_FILE=/srv/mis/Fusion_1_30_Allocation.xlsx
//	FUSION_DATA_SHEET=Allocation
//	FUSION_LOGGING_LEVEL=debug
//	FUSION_TELEMETRY_TRACE_EXPORTER=stdout
//
// FUSION_CONFIG names an explicit YAML file. Otherwise config.yaml and
// configs/config.yaml are searched.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := cfg.ResolvePaths()
//
// # Testing
//
// Use Default() for a configuration that needs no environment, or LoadFile
// with a temporary YAML file.
package config
