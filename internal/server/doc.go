// Package server exposes the roster's HTTP API on echo.
//
// # Routes
//
//   - POST /api/send-notification relays a push notification through the configured gateway.
//     Any other method gets 405. A missing gateway is a 500, a missing title or body a 400,
//     and a provider rejection is returned with the provider's status and details.
//   - GET /health answers "ok".
//   - GET /api/status reports the reconciliation gate, the last pass and collection counts.
//
// The server runs next to the reconciliation driver in `roster serve` and reads its
// state through [StatusSource]; it never writes to the store itself.
package server
