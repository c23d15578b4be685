// Package server assembles the HTTP surface: the gin engine, the shared
// middleware chain, and the per-context modules that mount routes on it.
package server

import "github.com/gin-gonic/gin"

// Module is one bounded context's HTTP surface.
type Module interface {
	// Name identifies the module in logs.
	Name() string
	// MountRoutes registers the module's endpoints on the shared groups.
	MountRoutes(rc RouterContext)
}

// RouterContext carries the route groups modules mount onto. Protected
// requires a valid user access token; Ingest requires the shared machine
// token and is meant for trusted automation, not browsers.
type RouterContext struct {
	Protected *gin.RouterGroup
	Ingest    *gin.RouterGroup
}
