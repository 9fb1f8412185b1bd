// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the suspension point used by the engine's I/O
// pump: a single blocking call that waits for readability/writability on a
// set of channel file descriptors, with an optional signal mask applied for
// the duration of the wait.
package reactor
