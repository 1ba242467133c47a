// Package api provides the optional HTTP status endpoint of the bridge.
//
// It exposes read-only operational data to local monitoring:
//
//	GET /api/v1/health  database, MQTT and InfluxDB status
//	GET /api/v1/users   the enabled lighting roster
//	GET /api/v1/audit   configuration changes made with voicelight-admin
//
// Configuration changes go through voicelight-admin, never through HTTP.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
