// Package app wires the job loaders, module resolver, loader and execution
// engine into one runnable application, decoupled from the CLI entrypoint.
package app
