package ratelimit

import "strings"

// MatchEndpoint finds the rule for a request, or nil when the default limit applies. A rule
// path ending in "/" covers everything below it, so "/users/" governs "/users/{id}/documents".
// An exact path beats any prefix.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	// GET /health is never limited.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	// Longest prefix wins so a specific rule can narrow a broad one.
	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method || !strings.HasSuffix(config.Path, "/") || !strings.HasPrefix(path, config.Path) {
			continue
		}
		if best == nil || len(config.Path) > len(best.Path) {
			best = config
		}
	}
	return best
}

// bucketKey groups requests of one client to one endpoint rule. Requests that fall back to
// the default limit share a key per client.
func bucketKey(clientID, method string, cfg *EndpointConfig) string {
	if cfg.Path == "" {
		return clientID + ":default"
	}
	return clientID + ":" + method + ":" + cfg.Path
}
