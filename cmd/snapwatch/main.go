// snapwatch fetches a web page, runs the link discovery pipeline over it,
// and prints the payment cards it would render.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/stellarsnaps/stellarsnaps-go/client"
	"github.com/stellarsnaps/stellarsnaps-go/pipeline"
	"github.com/stellarsnaps/stellarsnaps-go/registry"
	"github.com/stellarsnaps/stellarsnaps-go/resolver"
)

func main() {
	pageURL := flag.String("url", "", "page to scan for payment links")
	baseURL := flag.String("base", "", "base URL of the snaps service hosting the registry")
	selfDomain := flag.String("self", "", "domain to always treat as trusted")
	cachePath := flag.String("cache", "", "path to a bolt file caching the registry between runs")
	proxyURL := flag.String("proxy", "", "resolver proxy for shortened URLs")
	flag.Parse()

	if *pageURL == "" || *baseURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	resp, err := http.Get(*pageURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch page: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	doc, err := pipeline.ParseHTML(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse page: %v\n", err)
		os.Exit(1)
	}

	api := client.New(*baseURL)

	regOpts := []registry.Option{}
	if *selfDomain != "" {
		regOpts = append(regOpts, registry.WithSelfDomain(*selfDomain))
	}
	if *cachePath != "" {
		store, err := registry.OpenBoltStore(*cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open registry cache: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		regOpts = append(regOpts, registry.WithStore(store))
	}
	reg := registry.NewClient(api, regOpts...)

	resOpts := []resolver.Option{}
	if *proxyURL != "" {
		resOpts = append(resOpts, resolver.WithProxy(*proxyURL))
	}
	res := resolver.New(resOpts...)

	p := pipeline.New(res, reg, api, api)
	p.Run(ctx, doc)

	cards := doc.Cards()
	if len(cards) == 0 {
		fmt.Println("no payment links found")
		return
	}

	for _, card := range cards {
		fmt.Printf("%s  [%s]\n", card.SnapID, card.Status)
		fmt.Printf("  title:       %s\n", card.Title)
		fmt.Printf("  destination: %s\n", card.Destination)
		if card.Amount != "" {
			fmt.Printf("  amount:      %s %s\n", card.Amount, card.AssetCode)
		}
		fmt.Printf("  source:      %s (%s)\n", card.SourceURL, card.Domain)
	}
}
