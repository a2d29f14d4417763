// Package internal holds identifier generation shared by the portal engine
// and its stores. Nothing here is part of the public API.
package internal
