// Package config loads the riskdash configuration file (config.yaml).
//
// Top-level types:
//   - Config{Server, Registry, Simulation, Alerts}, the full tree parsed from YAML
//   - ServerConfig: http_port, broadcast_interval, auth
//   - AuthConfig: mode (basic|apikey|bearer|none), username, password_env,
//     header, key_env, token_env; secrets resolve from environment variables
//   - RegistryConfig: path or url of the component registry, watch, auth, tls
//   - SimulationConfig: trials per timeline and an optional fixed seed
//   - AlertsConfig: threshold rules and webhook targets
//
// Load(path) reads the YAML file, applies defaults (port 8080, 5s broadcast,
// 10000 trials, 10s registry timeout), then validates enums and ranges.
package config
