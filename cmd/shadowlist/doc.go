// Command shadowlist maintains a local, human-editable mirror of the user's
// YouTube playlists. Each playlist becomes a shadow file that can be
// annotated and reordered in a text editor; the analyze, ingest, reset, and
// push commands reconcile the shadow files with the remote side.
package main
