// Command scrollreel is the command-line client for the scrollreel daemon.
//
// It creates and lists animations, uploads frame batches, adjusts playback
// settings, prints embed markup, and moves animations between daemons as a
// manifest plus frame files. The daemon itself runs under `scrollreel daemon`
// or the standalone scrollreeld binary; `scrollreel start` launches it in the
// background.
package main
