package controller

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.dedis.ch/matchgame"
	"go.dedis.ch/matchgame/cli/node"
	"go.dedis.ch/matchgame/config"
	"go.dedis.ch/matchgame/proxy"
	"go.dedis.ch/matchgame/proxy/http"
	"golang.org/x/xerrors"
)

var (
	defaultRetry = 50
	retryDelay   = 100 * time.Millisecond

	proxyFac = func(addr string) proxy.Proxy {
		return http.NewHTTP(addr)
	}

	registerer prometheus.Registerer = prometheus.DefaultRegisterer
)

type startAction struct{}

// Execute implements node.ActionTemplate. It starts and injects the proxy http
// server. The address of the configuration is used when the flag is empty.
func (a startAction) Execute(ctx node.Context) error {
	var existing proxy.Proxy

	err := ctx.Injector.Resolve(&existing)
	if err == nil {
		return xerrors.Errorf("proxy already started on %v", existing.GetAddr())
	}

	addr := ctx.Flags.String("clientaddr")
	if addr == "" {
		var cfg config.Config

		err = ctx.Injector.Resolve(&cfg)
		if err != nil {
			cfg = config.Default()
		}

		addr = cfg.Proxy.Addr
	}

	proxyhttp := proxyFac(addr)

	go proxyhttp.Listen()

	for i := 0; i < defaultRetry && proxyhttp.GetAddr() == nil; i++ {
		time.Sleep(retryDelay)
	}

	if proxyhttp.GetAddr() == nil {
		return xerrors.Errorf("failed to start proxy server on '%s'", addr)
	}

	ctx.Injector.Inject(proxyhttp)

	fmt.Fprintf(ctx.Out, "started proxy server on %s", proxyhttp.GetAddr().String())

	return nil
}

type promAction struct{}

// Execute implements node.ActionTemplate. It registers the Prometheus handler.
func (a promAction) Execute(ctx node.Context) error {
	var proxyhttp proxy.Proxy

	err := ctx.Injector.Resolve(&proxyhttp)
	if err != nil {
		return xerrors.Errorf("failed to resolve the proxy: %v", err)
	}

	path := ctx.Flags.String("path")

	for _, c := range matchgame.PromCollectors {
		err = registerer.Register(c)
		if err != nil {
			fmt.Fprintf(ctx.Out, "ERROR: failed to register: %v\n", err)
		}
	}

	proxyhttp.RegisterHandler(path, promhttp.Handler().ServeHTTP)
	fmt.Fprintf(ctx.Out, "registered prometheus service on %q", path)

	return nil
}
