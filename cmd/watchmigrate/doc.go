// Command watchmigrate copies watched state from a Plex server (or its
// library database) to a Jellyfin user.
//
// Subcommands:
//
//	migrate            run a migration and print the report
//	config init        write a sample configuration
//	config validate    check the configuration and credentials (--check reaches both servers)
//	plex sections      list Plex library sections
//	jellyfin users     list Jellyfin users
//	test-notify        send a test ntfy notification
package main
