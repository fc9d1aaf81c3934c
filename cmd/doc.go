// Package cmd contains the command-line tools that run the stages of a tagpipe experiment, one tool
// per stage plus tagpipe, which runs all of them. It also contains the argument parsing and logging
// setup the tools share.
package cmd
