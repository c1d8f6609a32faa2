package loopguard_test

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joeycumines/go-loopguard"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

func Example() {
	// Construct on the loop goroutine: its identity becomes the loop
	// identity, and blocking calls made here are denied.
	gw, _ := loopguard.New()

	if err := gw.Sleep(time.Second); err != nil {
		fmt.Println(err)
	}

	//output:
	//loopguard: blocking call to sleep inside the event loop
}

func ExampleNew_httpClient() {
	gw, _ := loopguard.New()

	// The gateway is an http.RoundTripper, so the loop's client denies
	// requests before any connection is dialed.
	client := &http.Client{Transport: gw}

	_, err := client.Get(`http://events.internal/health`)
	fmt.Println(err)

	//output:
	//Get "http://events.internal/health": loopguard: blocking call to round-trip inside the event loop
}

func ExampleGateway_Glob() {
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithTimeField(``), // disable time field (consistent example output)
		),
		stumpy.L.WithWriter(logiface.WriterFunc[*stumpy.Event](func(e *stumpy.Event) error {
			// Bytes omits the closing brace, see its docs.
			fmt.Printf("%s}\n", e.Bytes())
			return nil
		})),
	)

	gw, _ := loopguard.New(
		loopguard.WithLogger(logger.Logger()),
		loopguard.WithGlobFunc(func(pattern string) ([]string, error) {
			return []string{`app.conf`, `db.conf`}, nil
		}),
		loopguard.WithCaller(func(skip int) (loopguard.Frame, error) {
			return loopguard.Frame{File: `eventloop/run.go`, Line: 42}, nil
		}),
	)

	// Glob is lenient: the call is reported, then proceeds.
	matches, _ := gw.Glob(`*.conf`)
	fmt.Println(matches)

	//output:
	//{"lvl":"warning","call":"glob","file":"eventloop/run.go","line":42,"msg":"blocking call inside the event loop"}
	//[app.conf db.conf]
}

func ExampleGateway_Guard() {
	relaxed := false
	gw, _ := loopguard.New(
		loopguard.WithRelaxedMode(func() bool { return relaxed }),
	)

	// Host-defined operations get guards of their own, sharing the
	// gateway's loop identity and configuration.
	g := gw.Guard(`db-query`, loopguard.StrictCore, nil)

	fmt.Println(g.Check(nil))
	relaxed = true
	fmt.Println(g.Check(nil))

	//output:
	//loopguard: blocking call to db-query inside the event loop
	//<nil>
}

func ExampleWrap() {
	gw, _ := loopguard.New()

	query := loopguard.Wrap(
		gw.Guard(`db-query`, loopguard.Strict, nil),
		`query`,
		func(q string) ([]string, error) { return []string{`row`}, nil },
	)

	_, err := query(`select 1`)
	fmt.Println(err)

	//output:
	//loopguard: blocking call to db-query inside the event loop
}
