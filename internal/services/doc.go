// Package services defines the shared error taxonomy used across pipeline
// stages. Stage implementations wrap failures with a sentinel marker so the
// workflow manager can classify them (remote-service, media, resource,
// cancellation) without inspecting error strings.
package services
