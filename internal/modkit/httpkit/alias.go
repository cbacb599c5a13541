// Package httpkit provides tiny HTTP helpers modules mount handlers with
package httpkit

import (
	"net/http"

	phttp "reviewguard/internal/platform/net/http"
)

type (
	// Envelope is the standard response body
	Envelope = phttp.Envelope

	// Response is a return-style response
	Response = phttp.Response

	// Handler is the platform handler func
	Handler = phttp.Handler

	// Router is the platform router surface
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error maps err to its status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Handle adapts a Response-returning func
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Param returns a path parameter
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }

// Query returns a trimmed query parameter
func Query(r *http.Request, name string) string { return trim(phttp.Query(r, name)) }
