// Package app wires the collections dashboard together and owns its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (.env, YAML file, FUSION_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Create the loader, table cache and WebSocket hub
//	4. Create the dashboard and health services
//	5. Build the chi router and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run serves until SIGINT or SIGTERM, then shuts the server down, closes
// WebSocket clients and flushes telemetry. Errors are returned to the caller;
// the package never calls os.Exit.
package app
