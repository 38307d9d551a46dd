// Package middleware provides decorators for ports.MissionStore, such as encryption at rest.
package middleware
