// healthcheck is a tiny standalone probe, meant for a container HEALTHCHECK
// directive: it GETs /v1/health on a running litemqd and exits 0 if the
// broker answered with 200, 1 otherwise. Built on fasthttp like the
// teacher's fasthttp POC server (cmd/health-fasthttp), flipped from a
// server into a client since the check here is "is litemqd alive", not
// "benchmark a bare-bones handler".
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/valyala/fasthttp"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:42090", "base URL of the litemqd instance to probe")
	timeout := flag.Duration("timeout", 2*time.Second, "request timeout")
	flag.Parse()

	client := &fasthttp.Client{}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(*addr + "/v1/health")
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := client.DoTimeout(req, resp, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck: request failed: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		fmt.Fprintf(os.Stderr, "healthcheck: unhealthy status %d\n", resp.StatusCode())
		os.Exit(1)
	}
	os.Exit(0)
}
