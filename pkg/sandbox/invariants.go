package sandbox

import (
	"fmt"
	"sort"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// invariantRegistry collects routes the way the crisis module does and runs
// them in registration order.
type invariantRegistry struct {
	routes []invariantRoute
}

type invariantRoute struct {
	module string
	route  string
	invar  sdk.Invariant
}

var _ sdk.InvariantRegistry = (*invariantRegistry)(nil)

func newInvariantRegistry() *invariantRegistry {
	return &invariantRegistry{}
}

func (r *invariantRegistry) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	r.routes = append(r.routes, invariantRoute{module: moduleName, route: route, invar: invar})
}

// Routes lists the registered routes as module/route.
func (r *invariantRegistry) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for _, ir := range r.routes {
		out = append(out, fmt.Sprintf("%s/%s", ir.module, ir.route))
	}
	sort.Strings(out)
	return out
}

func (r *invariantRegistry) check(ctx sdk.Context) (string, bool) {
	for _, ir := range r.routes {
		if msg, broken := ir.invar(ctx); broken {
			return msg, true
		}
	}
	return "", false
}

// InvariantRoutes lists the invariants checked after every block.
func (c *Chain) InvariantRoutes() []string {
	return c.invariants.Routes()
}
