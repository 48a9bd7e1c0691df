package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

func loadMetrics(s source) MetricsConfig {
	return MetricsConfig{
		Enabled:      s.boolOrDefault(envMetricsOn, true),
		Port:         s.stringOrDefault(envMetricsPort, defaultMetricsPort),
		OtlpEndpoint: s.stringOrDefault(envOtelEndpoint, ""),
		ServiceName:  s.stringOrDefault(envOtelService, defaultServiceName),
		OtlpInsecure: s.boolOrDefault(envOtelInsecure, true),
	}
}
