// Package log provides the logging abstraction used across cartkeeper.
//
// Components accept a [Logger] so that embedding applications can route cart
// events into their own logging stack. A zerolog-backed adapter and a no-op
// logger are provided.
//
// # Usage
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	logger.Info("cart loaded", log.Int("items", 3))
//
// Use [NewNoopLogger] in tests or when logging is not wanted.
package log
