// Package policy classifies request paths as public or protected.
//
// A RoutePolicy is built once from the configured public patterns and is
// read-only afterwards. Any path that matches no public pattern is protected.
package policy
