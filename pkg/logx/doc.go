// Package logx configures kanva's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - The zero value usable as a no-op, so library packages can accept a
//     Logger without forcing callers to configure one
package logx
