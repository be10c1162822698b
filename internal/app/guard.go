package app

import (
	"github.com/gin-gonic/gin"
	shardedcache "github.com/simp-lee/cache"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/rbac"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// accessGuard checks RBAC permissions and caches anonymous reads per
// resource. Either part may be nil.
type accessGuard struct {
	rbac  rbac.Service
	cache shardedcache.CacheInterface
}

func newGuard(perms rbac.Service, cache shardedcache.CacheInterface) pkg.Guard {
	if perms == nil && cache == nil {
		return pkg.Open{}
	}
	return &accessGuard{rbac: perms, cache: cache}
}

func (g *accessGuard) Read(resource string) []gin.HandlerFunc {
	chain := ginx.NewChain().WithErrorFormat(pkg.ErrorBody)
	if g.rbac != nil {
		chain.Use(ginx.RequirePermission(g.rbac, resource, pkg.ActionRead))
	}
	if g.cache != nil {
		chain.Use(ginx.CacheWithGroup(g.cache, resource))
	}
	return []gin.HandlerFunc{chain.Build()}
}

func (g *accessGuard) Write(resource string) []gin.HandlerFunc {
	if g.rbac == nil {
		return nil
	}
	chain := ginx.NewChain().
		WithErrorFormat(pkg.ErrorBody).
		Use(ginx.RequirePermission(g.rbac, resource, pkg.ActionWrite))
	return []gin.HandlerFunc{chain.Build()}
}

// Changed drops every cached response of resource.
func (g *accessGuard) Changed(resource string) {
	if g.cache != nil {
		g.cache.Group(resource).Clear()
	}
}
