// Package dedupe provides tool-call deduplication using a time-based cache
// that replays the original response when a call ID repeats within the window.
package dedupe
