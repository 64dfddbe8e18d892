// Command amberpipe is the control CLI for the amberpiped daemon. All
// state-changing commands talk to the daemon over its Unix socket; the CLI
// itself never touches the watch directory.
package main
