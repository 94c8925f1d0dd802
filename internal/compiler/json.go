// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package compiler

import (
	"fmt"
	"io"

	"github.com/Melchoirr/Ripple/internal/engine"
	"github.com/Melchoirr/Ripple/internal/diag"
	"github.com/Melchoirr/Ripple/internal/program"
)

// CompileJSON decodes a program document from r and compiles it in one
// step, mirroring the original implementation's RippleCompiler.run(json_path).
// cmd/ripple does not call it: it runs program.Decode and Compile itself.
func CompileJSON(r io.Reader, opts Options) (*engine.Engine, diag.Diagnostics, error) {
	p, err := program.Decode(r)
	if err != nil {
		return nil, nil, fmt.Errorf("compiler: %w", err)
	}
	return Compile(p, opts)
}
