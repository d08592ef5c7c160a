// Package httpapi serves the recommendation service over JSON HTTP.
//
// Routes:
//
//	GET /api/health
//	GET /api/titles?q=
//	GET /api/recommendations?title=&k=
//	GET /api/posters/{movieID}
//
// Every request gets an X-Request-ID that is attached to log lines. Unknown
// titles answer 404 with suggestions; malformed parameters answer 400.
package httpapi
