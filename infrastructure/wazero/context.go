package wazero

import (
	"context"
	"strings"

	"github.com/nthnn/ura/hostfuncs"
	"github.com/tetratelabs/wazero/api"
)

// programName identifies the program behind a host call. The name the
// loader put on the context wins; otherwise the instance name is used with
// its "#<seq>" suffix removed.
func programName(ctx context.Context, mod api.Module) string {
	if name, ok := hostfuncs.ProgramFromContext(ctx); ok {
		return name
	}
	if mod == nil {
		return ""
	}
	name := mod.Name()
	if i := strings.LastIndexByte(name, '#'); i > 0 {
		name = name[:i]
	}
	return name
}
