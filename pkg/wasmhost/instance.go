// Package wasmhost embeds wazero to load, verify and run the guest Wasm
// module against the oak_functions host ABI. A CompiledModule is compiled
// once and reused across requests; each Run call instantiates a fresh guest
// module instance — and so a fresh linear memory — bound to that one
// request's PerRequestState via context.
package wasmhost

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/marmos91/oakd/pkg/channel"
	"github.com/marmos91/oakd/pkg/extension"
	"github.com/marmos91/oakd/pkg/ombox"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// requiredExports names the guest exports Load verifies before
// running any request. Missing or mistyped exports fail the module at load
// time rather than mid-request.
const (
	exportMain   = "main"
	exportAlloc  = "alloc"
	exportMemory = "memory"
)

// HostDeps are the per-request collaborators a Run call dispatches into.
// Built fresh for each request by the caller (the request handler).
type HostDeps struct {
	Request     []byte
	Extensions  *extension.Set
	Switchboard *channel.Switchboard
}

// CompiledModule is a parsed, verified guest binary, plus the single
// oak_functions host module instance its requests import from. Compiling
// the guest and registering the host module are both one-time, stateless
// setup; only the per-request guest instance and PerRequestState vary.
type CompiledModule struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	host     api.Closer

	// instanceCounter gives every guest module instance a unique name, since
	// wazero requires distinct names for modules instantiated concurrently
	// against the same runtime.
	instanceCounter uint64
}

// Load compiles wasmBytes under rt, verifies it exports main, alloc and
// memory with the expected signatures, and registers the oak_functions host
// module. The runtime is retained for subsequent Run calls; callers own
// rt's lifecycle (typically one runtime per process, closed at shutdown,
// which also closes the host module registered here).
func Load(ctx context.Context, rt wazero.Runtime, wasmBytes []byte) (*CompiledModule, error) {
	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, ombox.Wrap(ombox.ErrModuleLoad, fmt.Errorf("compile module: %w", err))
	}

	if err := verifyExports(compiled); err != nil {
		return nil, err
	}

	host, err := registerHostModule(ctx, rt)
	if err != nil {
		return nil, ombox.Wrap(ombox.ErrModuleLoad, fmt.Errorf("register host module: %w", err))
	}

	return &CompiledModule{runtime: rt, compiled: compiled, host: host}, nil
}

func verifyExports(compiled wazero.CompiledModule) error {
	exports := compiled.ExportedFunctions()

	mainFn, ok := exports[exportMain]
	if !ok {
		return ombox.New(ombox.ErrModuleLoad, "module does not export %q", exportMain)
	}
	if len(mainFn.ParamTypes()) != 0 || len(mainFn.ResultTypes()) != 0 {
		return ombox.New(ombox.ErrModuleLoad, "%q must have signature () -> ()", exportMain)
	}

	allocFn, ok := exports[exportAlloc]
	if !ok {
		return ombox.New(ombox.ErrModuleLoad, "module does not export %q", exportAlloc)
	}
	if len(allocFn.ParamTypes()) != 1 || allocFn.ParamTypes()[0] != api.ValueTypeI32 ||
		len(allocFn.ResultTypes()) != 1 || allocFn.ResultTypes()[0] != api.ValueTypeI32 {
		return ombox.New(ombox.ErrModuleLoad, "%q must have signature (i32) -> i32", exportAlloc)
	}

	memories := compiled.ExportedMemories()
	if _, ok := memories[exportMemory]; !ok {
		return ombox.New(ombox.ErrModuleLoad, "module does not export a memory named %q", exportMemory)
	}

	return nil
}

// Close releases the compiled module and its host module. It does not close
// the runtime, which the caller owns.
func (c *CompiledModule) Close(ctx context.Context) error {
	hostErr := c.host.Close(ctx)
	compiledErr := c.compiled.Close(ctx)
	if hostErr != nil {
		return hostErr
	}
	return compiledErr
}

// Run instantiates a fresh copy of the guest module bound to deps, calls
// main, and returns whatever the guest wrote via write_response. Each call
// gets its own module instance — and so its own linear memory — so
// concurrent requests against the same CompiledModule never share guest
// state; all of them import from the single shared host module registered
// at Load time, with deps threaded through via context.
func (c *CompiledModule) Run(ctx context.Context, deps HostDeps) (response []byte, err error) {
	state := NewPerRequestState(deps.Request, deps.Extensions, deps.Switchboard)
	ctx = withPerRequestState(ctx, state)

	guestInstanceName := fmt.Sprintf("guest-%d", atomic.AddUint64(&c.instanceCounter, 1))
	instanceConfig := wazero.NewModuleConfig().WithName(guestInstanceName)

	guestModule, err := c.runtime.InstantiateModule(ctx, c.compiled, instanceConfig)
	if err != nil {
		return nil, ombox.Wrap(ombox.ErrGuestTrap, fmt.Errorf("instantiate guest module: %w", err))
	}
	defer guestModule.Close(ctx)

	mainFn := guestModule.ExportedFunction(exportMain)
	if mainFn == nil {
		return nil, ombox.New(ombox.ErrModuleLoad, "guest module missing %q after instantiation", exportMain)
	}

	if _, err := mainFn.Call(ctx); err != nil {
		return nil, ombox.Wrap(ombox.ErrGuestTrap, fmt.Errorf("guest main trapped: %w", err))
	}

	resp, ok := state.Response()
	if !ok {
		return nil, nil
	}
	return resp, nil
}
