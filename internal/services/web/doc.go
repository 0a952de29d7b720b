// Package web serves the CULTFACE browser experience.
//
// It hosts the scene picker page, static clip assets, and mounts the
// face-swap proxy endpoint, so the browser talks to a single origin.
package web
