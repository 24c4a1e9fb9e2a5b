// Package testsupport holds helpers shared by package tests: temp-dir backed
// configs and in-process Plex and Jellyfin stand-ins.
package testsupport
