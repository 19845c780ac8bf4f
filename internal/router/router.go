// Package router assembles every domain handler onto one httprouter tree.
package router

import (
	"github.com/julienschmidt/httprouter"

	"skillex/pkg/contracts"
)

type Router struct {
	handlers []contracts.Handler
}

func New(handlers ...contracts.Handler) *Router {
	return &Router{handlers: handlers}
}

func (r *Router) RegisterRoutes(router *httprouter.Router) {
	for _, h := range r.handlers {
		h.RegisterRoutes(router)
	}
}
