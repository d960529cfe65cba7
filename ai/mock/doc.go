// Package mock provides test doubles for the ai interfaces. The defaults
// are deterministic so unit tests run without any external model service;
// func fields allow per-test behavior injection.
package mock
