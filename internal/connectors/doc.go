// Package connectors holds the adapters that bring the documentation corpus
// into chatdocs: the filesystem loader and watcher read a local directory,
// and the GitHub fetcher downloads one.
package connectors
