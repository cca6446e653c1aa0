// Package cli turns command-line arguments, .env files and PARSEGRID_*
// environment variables into a validated app.Config.
package cli
